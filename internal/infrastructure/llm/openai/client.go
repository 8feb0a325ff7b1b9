// Package openai implements the text generation port on top of the
// OpenAI chat completion API. It is selected instead of the Ollama
// backend when LLM_PROVIDER=openai.
package openai

import (
	"context"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
)

// Completer generates text through OpenAI chat completions.
type Completer struct {
	client *goopenai.Client
	model  string
}

// NewCompleter builds a Completer. baseURL is optional and allows
// pointing the client at an OpenAI-compatible gateway.
func NewCompleter(apiKey, baseURL, model string) (*Completer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Completer{
		client: goopenai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

func (c *Completer) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, prompt, nil)
}

func (c *Completer) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	format := &goopenai.ChatCompletionResponseFormat{
		Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
	}
	return c.complete(ctx, prompt, format)
}

func (c *Completer) complete(ctx context.Context, prompt string, format *goopenai.ChatCompletionResponseFormat) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: format,
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion: no choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
