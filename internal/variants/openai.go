package variants

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"

	"github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is the chat model used when none is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// openAIBackend sends chat completion requests with go-openai.
type openAIBackend struct {
	client *openai.Client
	cfg    Config
}

func newOpenAIBackend(cfg Config) *openAIBackend {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}

	return &openAIBackend{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
	}
}

// Complete implements Backend.
func (b *openAIBackend) Complete(ctx context.Context, system, user string) (string, error) {
	const op = "openAIBackend.Complete"

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       b.cfg.Model,
		Temperature: b.cfg.Temperature,
		TopP:        b.cfg.TopP,
		MaxTokens:   b.cfg.MaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: system,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: user,
			},
		},
	})
	if err != nil {
		return "", openAIError(ctx, op, err)
	}

	if len(resp.Choices) == 0 {
		return "", NewGenerationError(op, ErrInvalidResponse, "no response choices")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", NewGenerationError(op, ErrInvalidResponse, "empty message content")
	}
	return content, nil
}

// openAIError maps a go-openai failure onto the generation error taxonomy.
func openAIError(ctx context.Context, op string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusError(op, apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return statusError(op, reqErr.HTTPStatusCode, reqErr.Error())
	}

	return transportError(ctx, op, err)
}

// transportError maps failures that carry no HTTP status.
func transportError(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return NewGenerationError(op, ErrCanceled, err.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return NewGenerationError(op, ErrTimeout, err.Error())
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewGenerationError(op, ErrTimeout, err.Error())
	}

	// Any other transport failure is reported as a timeout.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return NewGenerationError(op, ErrTimeout, err.Error())
	}

	return NewGenerationError(op, ErrInvalidResponse, err.Error())
}
