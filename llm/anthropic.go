package llm

import (
	"context"
	"fmt"
	"os"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/docquery/docquery/helper"
)

const defaultMaxTokens = 4096

// AnthropicClient calls the Anthropic messages API
type AnthropicClient struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewAnthropicClient creates a client for the given model.
// The API key is read from ANTHROPIC_API_KEY.
func NewAnthropicClient(model anthropic.Model) (*AnthropicClient, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, helper.NewError("anthropic client", fmt.Errorf("ANTHROPIC_API_KEY is not set"))
	}
	return &AnthropicClient{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

// Complete sends one prompt and returns the concatenated text blocks
func (c *AnthropicClient) Complete(ctx context.Context, request Request) (string, error) {
	maxTokens := request.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(request.Prompt)),
		},
	}
	if request.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: request.System}}
	}

	response, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to get response: %w", err)
	}

	text := ""
	for _, block := range response.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text, nil
}
