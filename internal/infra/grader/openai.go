package grader

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIGrader talks to any OpenAI-compatible chat completion endpoint.
type OpenAIGrader struct {
	client *openai.Client
	model  string
}

func NewOpenAIGrader(baseURL, apiKey, model string) *OpenAIGrader {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(Timeout),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIGrader{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (g *OpenAIGrader) Name() string {
	return "openai"
}

func (g *OpenAIGrader) Grade(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		}),
		Model: openai.F(openai.ChatModel(g.model)),
	}
	completion, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
