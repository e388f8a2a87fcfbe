package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dynamite/internal/domain/chat"
)

// MockAssistant implements chat.Assistant for testing
type MockAssistant struct {
	CompleteFunc func(ctx context.Context, system string, history []chat.Message) (chat.Message, error)
}

func (m *MockAssistant) Complete(ctx context.Context, system string, history []chat.Message) (chat.Message, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, system, history)
	}
	return chat.Message{Content: "ok"}, nil
}

func TestHandleChat(t *testing.T) {
	var gotHistory []chat.Message
	assistant := &MockAssistant{
		CompleteFunc: func(ctx context.Context, system string, history []chat.Message) (chat.Message, error) {
			gotHistory = history
			return chat.Message{Content: "Diversify."}, nil
		},
	}

	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedLen    int
	}{
		{
			name:           "Message list",
			body:           `{"messages":[{"role":"user","content":"Hi"},{"role":"assistant","content":"Hello"},{"role":"user","content":"Advice?"}]}`,
			expectedStatus: http.StatusOK,
			expectedLen:    3,
		},
		{
			name:           "Single message",
			body:           `{"messages":{"role":"user","content":"Advice?"}}`,
			expectedStatus: http.StatusOK,
			expectedLen:    1,
		},
		{
			name:           "No messages",
			body:           `{"messages":[]}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing messages",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Messages of the wrong type",
			body:           `{"messages":"hello"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotHistory = nil
			h := NewChatHandler(chat.NewService(assistant), nopLogger)

			rr := serve(h.HandleChat, asUser(newRequest(t, http.MethodPost, "/api/chat", tt.body), testUser))

			require.Equal(t, tt.expectedStatus, rr.Code, rr.Body.String())
			if tt.expectedStatus != http.StatusOK {
				return
			}
			var reply chat.Message
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &reply))
			assert.Equal(t, chat.RoleAssistant, reply.Role)
			assert.Equal(t, "Diversify.", reply.Content)
			assert.Len(t, gotHistory, tt.expectedLen)
		})
	}
}

func TestHandleChat_NotConfigured(t *testing.T) {
	h := NewChatHandler(chat.NewService(nil), nopLogger)

	rr := serve(h.HandleChat, asUser(newRequest(t, http.MethodPost, "/api/chat", `{"messages":[{"role":"user","content":"Hi"}]}`), testUser))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "assistant not configured")
}

func TestHandleChat_AssistantFailureIsHidden(t *testing.T) {
	assistant := &MockAssistant{
		CompleteFunc: func(ctx context.Context, system string, history []chat.Message) (chat.Message, error) {
			return chat.Message{}, errors.New("upstream quota exceeded")
		},
	}
	h := NewChatHandler(chat.NewService(assistant), nopLogger)

	rr := serve(h.HandleChat, asUser(newRequest(t, http.MethodPost, "/api/chat", `{"messages":[{"role":"user","content":"Hi"}]}`), testUser))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "quota")
}

func TestHandleChat_Unauthorized(t *testing.T) {
	h := NewChatHandler(chat.NewService(&MockAssistant{}), nopLogger)

	rr := serve(h.HandleChat, newRequest(t, http.MethodPost, "/api/chat", `{"messages":[]}`))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
