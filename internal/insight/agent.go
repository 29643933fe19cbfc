package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

const systemInstruction = "You are a warm, supportive journaling companion. " +
	"You are not a therapist and never diagnose. Reply in concise Markdown. " +
	"If the writer may be at risk, include the 988 Suicide & Crisis Lifeline."

// Agent produces the next assistant reply for a conversation.
type Agent interface {
	Respond(ctx context.Context, history []Message) (string, error)
}

// GenAIAgent answers through Google's Gemini API.
type GenAIAgent struct {
	client *genai.Client
	model  string
}

// NewGenAIAgent creates an agent. An empty apiKey yields ErrAgentUnavailable.
func NewGenAIAgent(ctx context.Context, apiKey, model string) (*GenAIAgent, error) {
	if apiKey == "" {
		return nil, ErrAgentUnavailable
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIAgent{client: client, model: model}, nil
}

func (a *GenAIAgent) Model() string {
	return a.model
}

func (a *GenAIAgent) Respond(ctx context.Context, history []Message) (string, error) {
	if len(history) == 0 {
		return "", errors.New("no messages to respond to")
	}

	resp, err := a.client.Models.GenerateContent(ctx, a.model, toContents(history), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("agent returned an empty reply")
	}
	return text, nil
}

func toContents(history []Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		var role genai.Role = genai.RoleUser
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	return contents
}
