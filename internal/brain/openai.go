package brain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = `You are a friendly and helpful personal assistant. Use clear, simple language, answer in complete sentences, keep replies brief (2-3 sentences), and address the user's question directly.`

// OpenAIBrain calls the OpenAI chat-completion API.
type OpenAIBrain struct {
	client *openai.Client
	model  string
}

func NewOpenAIBrain(apiKey, model string) (*OpenAIBrain, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	if strings.TrimSpace(model) == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIBrain{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

func (b *OpenAIBrain) Complete(ctx context.Context, req Request) (Response, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: req.Temperature,
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	}

	resp, err := b.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return Response{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, errors.New("chat completion returned no choices")
	}
	return Response{Text: strings.TrimSpace(resp.Choices[0].Message.Content)}, nil
}
