package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"dynamite/internal/domain/chat"
)

// ChatHandler forwards a conversation to the assistant
type ChatHandler struct {
	chat   *chat.Service
	logger *zap.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat *chat.Service, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, logger: logger}
}

// ChatRequest carries either a message list or a single message
type ChatRequest struct {
	Messages json.RawMessage `json:"messages"`
}

func (req ChatRequest) messages() ([]chat.Message, error) {
	raw := bytes.TrimSpace(req.Messages)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '[' {
		var list []chat.Message
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("%w: %v", errMalformedBody, err)
		}
		return list, nil
	}

	var single chat.Message
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return []chat.Message{single}, nil
}

// HandleChat returns the assistant's reply to the conversation
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	var req ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, h.logger, err, "invalid chat body")
		return
	}
	messages, err := req.messages()
	if err != nil {
		writeDomainError(w, h.logger, err, "invalid chat body")
		return
	}

	reply, err := h.chat.Reply(r.Context(), messages)
	if err != nil {
		writeDomainError(w, h.logger, err, "chat reply failed")
		return
	}

	writeJSON(w, http.StatusOK, reply)
}
