package services

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// AIService wraps the OpenAI chat completion API. Every consumer treats a nil
// *AIService as "not configured" and falls back to its deterministic path.
type AIService struct {
	client *openai.Client
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

// Complete sends a single-turn prompt and returns the raw response content.
// Used by scoring, document generation, and scraping extraction, which all
// ask for JSON or plain text and parse it themselves.
func (s *AIService) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if s == nil || s.client == nil {
		return "", fmt.Errorf("OpenAI client not initialized")
	}

	messages := []openai.ChatCompletionMessage{}
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userPrompt,
	})

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       openai.GPT4o,
			Messages:    messages,
			Temperature: 0.3,
		},
	)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}

// ChatMessage is one turn of the dashboard assistant conversation.
type ChatMessage struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content" binding:"required"`
}

const assistantSystemPrompt = `You are a real-estate investing assistant embedded in a lead management dashboard. ` +
	`Help the user evaluate property leads (tax-delinquent, probate, FSBO and similar motivated-seller sources), ` +
	`draft outreach, and explain motivation scores. Keep answers short and practical.`

// Chat runs a multi-turn conversation for the dashboard assistant.
func (s *AIService) Chat(ctx context.Context, history []ChatMessage) (string, error) {
	if s == nil || s.client == nil {
		return "", fmt.Errorf("OpenAI client not initialized")
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: assistantSystemPrompt},
	}
	for _, m := range history {
		role := m.Role
		if role != openai.ChatMessageRoleAssistant {
			role = openai.ChatMessageRoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:    openai.GPT4o,
			Messages: messages,
		},
	)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}
