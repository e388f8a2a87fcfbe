package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Roles accepted in a conversation
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// SystemInstruction frames every conversation
const SystemInstruction = "You are a financial specialist at Dynamite Trade, a stock trading simulator. " +
	"Answer questions about investing, the stock market and using the platform. " +
	"Keep answers short and never give personalised financial advice."

// Domain errors
var (
	ErrMessagesRequired = errors.New("messages are required")
	ErrNotConfigured    = errors.New("assistant not configured")
	ErrInvalidRole      = errors.New("invalid message role")
)

// Message is one turn of a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Assistant generates the next turn of a conversation
type Assistant interface {
	Complete(ctx context.Context, system string, history []Message) (Message, error)
}

// Service answers chat conversations
type Service struct {
	assistant Assistant
}

// NewService creates a chat service. A nil assistant makes every reply fail with ErrNotConfigured.
func NewService(assistant Assistant) *Service {
	return &Service{assistant: assistant}
}

// Reply validates the conversation and returns the assistant's next message
func (s *Service) Reply(ctx context.Context, messages []Message) (Message, error) {
	if len(messages) == 0 {
		return Message{}, ErrMessagesRequired
	}
	history := make([]Message, 0, len(messages))
	for _, m := range messages {
		m.Role = strings.ToLower(strings.TrimSpace(m.Role))
		if m.Role == "" {
			m.Role = RoleUser
		}
		if m.Role != RoleUser && m.Role != RoleAssistant {
			return Message{}, fmt.Errorf("%w: %q", ErrInvalidRole, m.Role)
		}
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		history = append(history, m)
	}
	if len(history) == 0 {
		return Message{}, ErrMessagesRequired
	}
	if s.assistant == nil {
		return Message{}, ErrNotConfigured
	}

	reply, err := s.assistant.Complete(ctx, SystemInstruction, history)
	if err != nil {
		return Message{}, fmt.Errorf("failed to generate reply: %w", err)
	}
	reply.Role = RoleAssistant
	return reply, nil
}
