package openai

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sashabaranov/go-openai"
)

var ErrNoResponse = errors.New("no response from ChatGPT")

const systemPrompt = `You are a study helper for school students. Answer the question about their subjects in two or three short, simple sentences that can be read aloud.`

// IChatGPT answers a student question with free text.
type IChatGPT interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type chatGPTService struct {
	client *openai.Client
	model  string
}

// NewChatGPT reads OPENAI_API_KEY and OPENAI_CHAT_MODEL. OPENAI_BASE_URL
// points it at a compatible gateway.
func NewChatGPT() IChatGPT {
	return NewChatGPTWithClient(NewClient(), os.Getenv("OPENAI_CHAT_MODEL"))
}

func NewChatGPTWithClient(client *openai.Client, model string) IChatGPT {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &chatGPTService{
		client: client,
		model:  model,
	}
}

// NewClient builds the API client shared by chat and transcription.
func NewClient() *openai.Client {
	cfg := openai.DefaultConfig(os.Getenv("OPENAI_API_KEY"))
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

func (c *chatGPTService) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   300,
	})
	if err != nil {
		return "", fmt.Errorf("ChatGPT API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoResponse
	}

	return resp.Choices[0].Message.Content, nil
}
