package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/docquery/docquery/helper"
)

// OpenAIClient calls the OpenAI chat completions API
type OpenAIClient struct {
	client openai.Client
	model  openai.ChatModel
}

// NewOpenAIClient creates a client for the given model.
// The API key is read from OPENAI_API_KEY.
func NewOpenAIClient(model openai.ChatModel) (*OpenAIClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, helper.NewError("openai client", fmt.Errorf("OPENAI_API_KEY is not set"))
	}
	return &OpenAIClient{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

// Complete sends one prompt and returns the first choice
func (c *OpenAIClient) Complete(ctx context.Context, request Request) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{}
	if request.System != "" {
		messages = append(messages, openai.SystemMessage(request.System))
	}
	messages = append(messages, openai.UserMessage(request.Prompt))

	response, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get response: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}
	return response.Choices[0].Message.Content, nil
}
