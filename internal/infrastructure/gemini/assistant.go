// Package gemini answers chat conversations with Google's Gemini models.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"dynamite/internal/domain/chat"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gemini-2.5-flash"

// Assistant implements chat.Assistant
type Assistant struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

// New creates an assistant backed by the Gemini API
func New(ctx context.Context, apiKey, model string, maxTokens int) (*Assistant, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Assistant{client: client, model: model, maxTokens: int32(maxTokens)}, nil
}

// Complete sends the conversation and returns the model's answer
func (a *Assistant) Complete(ctx context.Context, system string, history []chat.Message) (chat.Message, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
	}
	if a.maxTokens > 0 {
		config.MaxOutputTokens = a.maxTokens
	}

	resp, err := a.client.Models.GenerateContent(ctx, a.model, toContents(history), config)
	if err != nil {
		return chat.Message{}, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return chat.Message{}, fmt.Errorf("no response from model %s", a.model)
	}
	return chat.Message{Role: chat.RoleAssistant, Content: joinText(resp.Candidates[0].Content)}, nil
}

// toContents maps chat roles onto Gemini roles
func toContents(history []chat.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		role := "user"
		if m.Role == chat.RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return contents
}

func joinText(c *genai.Content) string {
	var b strings.Builder
	for _, p := range c.Parts {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return strings.TrimSpace(b.String())
}
