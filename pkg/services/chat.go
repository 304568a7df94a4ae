package services

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ChatCompleter is the slice of the OpenAI client the chat assistant needs.
// *openai.Client satisfies it; tests substitute a fake.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ChatService answers free-form sustainability questions via an LLM.
type ChatService interface {
	Reply(ctx context.Context, message string) (string, error)
}

type chatService struct {
	client ChatCompleter
	model  string
	logger *zap.Logger
}

// NewChatService creates a chat service over the given completion client.
func NewChatService(client ChatCompleter, model string, logger *zap.Logger) ChatService {
	return &chatService{
		client: client,
		model:  model,
		logger: logger,
	}
}

// Reply sends the user's message to the configured model and returns the
// first completion choice.
func (s *chatService) Reply(ctx context.Context, message string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
	})
	if err != nil {
		s.logger.Error("Chat completion failed", zap.Error(err))
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
