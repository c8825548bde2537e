package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snappost/internal/variants"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"GENERATION_MODE", "GENERATION_PROVIDER", "OPENAI_API_KEY", "OCR_ENGINE", "QUAD_DETECTOR", "MOCK_DELAY", "GENERATION_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	gen := cfg.GetGenerationConfig()
	assert.Equal(t, variants.ModeMock, gen.Mode)
	assert.Equal(t, variants.ProviderOpenAI, gen.Provider)
	assert.Equal(t, "gpt-4o-mini", gen.Model)
	assert.Equal(t, 8*time.Second, gen.Timeout)
	assert.Equal(t, 1500*time.Millisecond, gen.MockDelay)
	assert.Equal(t, 1600, gen.MaxTokens)
	assert.False(t, gen.IsConfigured())

	assert.Equal(t, 1500, cfg.MaxImageWidth)
	assert.Equal(t, 18.0, cfg.RowTolerance)
	assert.Equal(t, []string{"en-US"}, cfg.GetRecognitionOptions().Languages)

	opts := cfg.GetDetectOptions()
	assert.Equal(t, 0.5, opts.MinAspectRatio)
	assert.Equal(t, 0.2, opts.MinSize)
	assert.Equal(t, 20.0, opts.QuadratureTolerance)
	assert.Equal(t, float32(0.5), opts.MinConfidence)
}

func TestLoadRemoteGemini(t *testing.T) {
	t.Setenv("GENERATION_MODE", "remote")
	t.Setenv("GENERATION_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("OPENAI_API_KEY", "sk-other")
	t.Setenv("MOCK_DELAY", "0.25")
	t.Setenv("OCR_LANGUAGES", "de-DE, en-US")

	cfg, err := Load()
	require.NoError(t, err)

	gen := cfg.GetGenerationConfig()
	assert.Equal(t, variants.ModeRemote, gen.Mode)
	assert.Equal(t, "g-key", gen.APIKey)
	assert.Equal(t, variants.DefaultGeminiModel, gen.Model)
	assert.Equal(t, 250*time.Millisecond, gen.MockDelay)
	assert.Equal(t, []string{"de-DE", "en-US"}, cfg.OCRLanguages)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"GENERATION_MODE", "debug"},
		{"GENERATION_PROVIDER", "acme"},
		{"OCR_ENGINE", "magic"},
		{"QUAD_DETECTOR", "always"},
		{"MAX_IMAGE_WIDTH", "-1"},
		{"GENERATION_TOP_P", "1.5"},
		{"OCR_ENGINE", "documentai"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetLoggerConfig(t *testing.T) {
	cfg := &Config{LogLevel: "debug", LogFormat: "json", LogOutput: "stdout"}

	lc := cfg.GetLoggerConfig()

	assert.Equal(t, "debug", lc.Level)
	assert.Equal(t, "json", lc.Format)
	assert.Equal(t, "stdout", lc.Output)
}

func TestDocumentAIConfig(t *testing.T) {
	t.Setenv("OCR_ENGINE", "documentai")
	t.Setenv("DOCUMENTAI_PROJECT_ID", "books")
	t.Setenv("DOCUMENTAI_LOCATION", "eu")
	t.Setenv("DOCUMENTAI_PROCESSOR_ID", "abc123")

	cfg, err := Load()
	require.NoError(t, err)

	dai := cfg.GetDocumentAIConfig()
	assert.Equal(t, "projects/books/locations/eu/processors/abc123", dai.ProcessorName())
	assert.Equal(t, "Drafts", cfg.DraftsSheetName)
}
