package grader

import (
	"context"
	"errors"
	"fmt"

	"github.com/yankeguo/zhipu"
)

// ZhipuGrader grades through the GLM chat completion API. The SDK signs every
// request with a JWT built from the "<id>.<secret>" API key.
type ZhipuGrader struct {
	client *zhipu.Client
	model  string
}

// NewZhipuGrader fails on a key without the id/secret separator. An empty baseURL keeps the SDK default.
func NewZhipuGrader(apiKey, baseURL, model string) (*ZhipuGrader, error) {
	opts := []zhipu.ClientOption{zhipu.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, zhipu.WithBaseURL(baseURL))
	}
	client, err := zhipu.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create zhipu client: %w", err)
	}
	return &ZhipuGrader{client: client, model: model}, nil
}

func (g *ZhipuGrader) Name() string {
	return "zhipu"
}

func (g *ZhipuGrader) Grade(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	completion, err := g.client.ChatCompletion(g.model).
		AddMessage(zhipu.ChatCompletionMessage{
			Role:    zhipu.RoleUser,
			Content: prompt,
		}).
		Do(ctx)
	if err != nil {
		return "", fmt.Errorf("zhipu completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("zhipu returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
