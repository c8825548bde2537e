// Package variants turns a cleaned excerpt into tone-labeled social posts.
//
// A Generator runs in one of two modes fixed at construction. Remote mode
// sends a chat completion request to OpenAI or Gemini and validates the JSON
// reply. Mock mode builds deterministic posts from templates after a short
// artificial delay. Both modes return between one and five variants, each at
// most models.MaxVariantLength characters, or one of the package errors.
package variants

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"snappost/internal/logger"
	"snappost/pkg/models"
)

// Mode selects how variants are produced.
type Mode int

const (
	// ModeMock produces deterministic template posts without network access.
	ModeMock Mode = iota
	// ModeRemote calls the configured generation provider.
	ModeRemote
)

// String returns the mode name used in configuration.
func (m Mode) String() string {
	if m == ModeRemote {
		return "remote"
	}
	return "mock"
}

// ParseMode parses "mock" or "remote".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mock":
		return ModeMock, nil
	case "remote":
		return ModeRemote, nil
	default:
		return ModeMock, fmt.Errorf("unknown generation mode %q (expected mock or remote)", s)
	}
}

// Provider names a remote generation service.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// PlaceholderAPIKey is the sample key shipped in example configuration. It is
// treated as no key at all.
const PlaceholderAPIKey = "your-openai-api-key-here"

// Config fixes a Generator's behavior for its lifetime.
type Config struct {
	Mode     Mode
	Provider Provider

	APIKey  string
	BaseURL string
	Model   string

	Temperature float32
	TopP        float32
	MaxTokens   int

	// Timeout bounds a single remote request.
	Timeout time.Duration
	// MockDelay simulates remote latency in mock mode.
	MockDelay time.Duration
}

// DefaultConfig returns mock mode with the remote request parameters used for posts.
func DefaultConfig() Config {
	return Config{
		Mode:        ModeMock,
		Provider:    ProviderOpenAI,
		Model:       DefaultOpenAIModel,
		Temperature: 0.8,
		TopP:        0.9,
		MaxTokens:   1600,
		Timeout:     8 * time.Second,
		MockDelay:   1500 * time.Millisecond,
	}
}

// IsConfigured reports whether a usable API key is set.
func (c Config) IsConfigured() bool {
	key := strings.TrimSpace(c.APIKey)
	return key != "" && key != PlaceholderAPIKey
}

// Backend sends one system and user instruction pair to a remote model and
// returns the raw completion text. Errors must match a package sentinel.
type Backend interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Generator produces post variants for excerpts.
type Generator struct {
	cfg     Config
	backend Backend
	log     zerolog.Logger
}

// New creates a Generator. In remote mode with a usable key the provider
// client is created here; without one, Generate reports ErrNotConfigured.
func New(ctx context.Context, cfg Config) (*Generator, error) {
	const op = "variants.New"

	if cfg.Mode != ModeRemote || !cfg.IsConfigured() {
		return NewWithBackend(cfg, nil), nil
	}

	var backend Backend
	switch cfg.Provider {
	case ProviderOpenAI, "":
		backend = newOpenAIBackend(cfg)
	case ProviderGemini:
		gb, err := newGeminiBackend(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to create Gemini client: %w", op, err)
		}
		backend = gb
	default:
		return nil, fmt.Errorf("%s: unknown provider %q", op, cfg.Provider)
	}

	return NewWithBackend(cfg, backend), nil
}

// NewWithBackend creates a Generator with an explicit remote backend.
func NewWithBackend(cfg Config, backend Backend) *Generator {
	return &Generator{
		cfg:     cfg,
		backend: backend,
		log:     logger.WithComponent("variants"),
	}
}

// Mode returns the generator's mode.
func (g *Generator) Mode() Mode {
	return g.cfg.Mode
}

// IsConfigured reports whether remote generation can be attempted.
func (g *Generator) IsConfigured() bool {
	return g.cfg.IsConfigured() && g.backend != nil
}

// Generate returns post variants for the excerpt. bookTitle and author are optional.
func (g *Generator) Generate(ctx context.Context, excerpt, bookTitle, author string) ([]models.Variant, error) {
	const op = "Generator.Generate"

	excerpt = strings.TrimSpace(excerpt)
	if excerpt == "" {
		return nil, NewGenerationError(op, ErrEmptyExcerpt, "")
	}

	if g.cfg.Mode == ModeMock {
		return g.generateMock(ctx, excerpt)
	}
	return g.generateRemote(ctx, excerpt, bookTitle, author)
}

func (g *Generator) generateMock(ctx context.Context, excerpt string) ([]models.Variant, error) {
	const op = "Generator.generateMock"

	if g.cfg.MockDelay > 0 {
		timer := time.NewTimer(g.cfg.MockDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, contextError(op, ctx.Err())
		}
	}

	variants := mockVariants(excerpt)
	g.log.Info().
		Int("variants", len(variants)).
		Msg("Generated mock variants")
	return variants, nil
}

func (g *Generator) generateRemote(ctx context.Context, excerpt, bookTitle, author string) ([]models.Variant, error) {
	const op = "Generator.generateRemote"

	if !g.IsConfigured() {
		return nil, NewGenerationError(op, ErrNotConfigured, fmt.Sprintf("provider %s", g.cfg.Provider))
	}

	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	startTime := time.Now()
	g.log.Debug().
		Str("provider", string(g.cfg.Provider)).
		Str("model", g.cfg.Model).
		Int("excerpt_length", len(excerpt)).
		Msg("Sending generation request")

	content, err := g.backend.Complete(ctx, SystemPrompt, UserPrompt(excerpt, bookTitle, author))
	if err != nil {
		g.log.Error().
			Err(err).
			Dur("duration", time.Since(startTime)).
			Msg("Generation request failed")
		if !inTaxonomy(err) {
			return nil, NewGenerationError(op, ErrInvalidResponse, err.Error())
		}
		return nil, WrapGenerationError(op, err, "")
	}

	variants, err := ParseVariants(content)
	if err != nil {
		g.log.Warn().
			Err(err).
			Int("content_length", len(content)).
			Msg("Generation response rejected")
		return nil, err
	}

	g.log.Info().
		Int("variants", len(variants)).
		Dur("duration", time.Since(startTime)).
		Msg("Generated variants")
	return variants, nil
}

// contextError maps a context failure to ErrTimeout or ErrCanceled.
func contextError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewGenerationError(op, ErrTimeout, err.Error())
	}
	return NewGenerationError(op, ErrCanceled, err.Error())
}

// inTaxonomy reports whether err matches one of the package sentinels.
func inTaxonomy(err error) bool {
	for _, sentinel := range []error{
		ErrEmptyExcerpt, ErrNotConfigured, ErrInvalidAPIKey, ErrTimeout,
		ErrRateLimit, ErrContentPolicy, ErrInvalidResponse, ErrCanceled,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
