package variants

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/genai"
)

// DefaultGeminiModel is the Gemini model used when none is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// geminiBackend sends generate-content requests with the Google Gen AI SDK.
type geminiBackend struct {
	client *genai.Client
	cfg    Config
}

func newGeminiBackend(ctx context.Context, cfg Config) (*geminiBackend, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, err
	}

	if cfg.Model == "" || cfg.Model == DefaultOpenAIModel {
		cfg.Model = DefaultGeminiModel
	}

	return &geminiBackend{client: client, cfg: cfg}, nil
}

// Complete implements Backend.
func (b *geminiBackend) Complete(ctx context.Context, system, user string) (string, error) {
	const op = "geminiBackend.Complete"

	temperature := b.cfg.Temperature
	topP := b.cfg.TopP
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, ""),
		Temperature:       &temperature,
		TopP:              &topP,
		MaxOutputTokens:   int32(b.cfg.MaxTokens),
		ResponseMIMEType:  "application/json",
	}

	resp, err := b.client.Models.GenerateContent(ctx, b.cfg.Model, []*genai.Content{
		genai.NewContentFromText(user, genai.RoleUser),
	}, config)
	if err != nil {
		return "", geminiError(ctx, op, err)
	}

	content := resp.Text()
	if content == "" {
		return "", NewGenerationError(op, ErrInvalidResponse, "empty response text")
	}
	return content, nil
}

// geminiError maps a Gen AI SDK failure onto the generation error taxonomy.
func geminiError(ctx context.Context, op string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return statusError(op, apiErr.Code, apiErr.Message)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return statusError(op, apiErrPtr.Code, apiErrPtr.Message)
	}
	return transportError(ctx, op, err)
}
