// Package llm abstracts the language model providers behind one client interface.
package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cenkalti/backoff/v4"

	"github.com/docquery/docquery/helper"
	"github.com/docquery/docquery/model"
)

// Request is one completion call
type Request struct {
	System    string
	Prompt    string
	MaxTokens int64
}

// Client completes prompts against a language model
type Client interface {
	Complete(ctx context.Context, request Request) (string, error)
}

// CompleteFunc adapts a plain function to the Client interface
type CompleteFunc func(ctx context.Context, request Request) (string, error)

// Complete calls the wrapped function
func (f CompleteFunc) Complete(ctx context.Context, request Request) (string, error) {
	return f(ctx, request)
}

// RetryingClient wraps a client with exponential backoff on transient failures.
// Context cancellation stops the retry loop immediately.
type RetryingClient struct {
	inner   Client
	retries uint64
	logger  *slog.Logger
}

// NewRetryingClient wraps a client with the given retry budget
func NewRetryingClient(inner Client, retries uint64, logger *slog.Logger) *RetryingClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetryingClient{inner: inner, retries: retries, logger: logger}
}

// Complete calls the inner client, retrying on error with exponential backoff
func (c *RetryingClient) Complete(ctx context.Context, request Request) (string, error) {
	var text string

	operation := func() error {
		var err error
		text, err = c.inner.Complete(ctx, request)
		if err != nil {
			c.logger.Warn("llm call failed, retrying", "error", err)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.retries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", helper.NewError("llm completion", fmt.Errorf("%w: %v", model.ErrLLMCallFailed, err))
	}
	return text, nil
}
