package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"snappost/internal/detect"
	"snappost/internal/geometry"
	"snappost/internal/layout"
	"snappost/internal/logger"
	"snappost/internal/ocr"
	"snappost/internal/variants"
)

// Recognition engines
const (
	OCREngineVision     = "vision"
	OCREngineDocumentAI = "documentai"
	OCREngineTesseract  = "tesseract"
)

// Quadrilateral detectors
const (
	QuadDetectorVision  = "vision"
	QuadDetectorContour = "contour"
	QuadDetectorNone    = "none"
)

type Config struct {
	// Generation Configuration
	GenerationMode        string
	GenerationProvider    string
	OpenAIAPIKey          string
	OpenAIBaseURL         string
	OpenAIModel           string
	GeminiAPIKey          string
	GeminiModel           string
	GenerationTimeout     time.Duration
	GenerationTemperature float32
	GenerationTopP        float32
	GenerationMaxTokens   int
	MockDelay             time.Duration

	// Capture Configuration
	OCREngine               string
	OCRLanguages            []string
	OCRAccurate             bool
	OCRLanguageCorrection   bool
	QuadDetector            string
	MaxImageWidth           int
	RowTolerance            float64
	RectMinAspectRatio      float64
	RectMinSize             float64
	RectQuadratureTolerance float64
	RectMinConfidence       float32

	// Document AI Configuration
	DocumentAIProjectID   string
	DocumentAILocation    string
	DocumentAIProcessorID string

	// Drafts Sheet Configuration
	DraftsSheetURL  string
	DraftsSheetName string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// Load reads the configuration from the environment. The API key is not
// required here; a missing key is reported when remote generation is attempted.
func Load() (*Config, error) {
	gen := variants.DefaultConfig()
	rect := detect.DefaultOptions()
	rec := ocr.DefaultOptions()

	config := &Config{
		GenerationMode:        getEnv("GENERATION_MODE", gen.Mode.String()),
		GenerationProvider:    getEnv("GENERATION_PROVIDER", string(variants.ProviderOpenAI)),
		OpenAIAPIKey:          getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:         getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:           getEnv("OPENAI_MODEL", variants.DefaultOpenAIModel),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiModel:           getEnv("GEMINI_MODEL", variants.DefaultGeminiModel),
		GenerationTimeout:     parseDurationEnv("GENERATION_TIMEOUT", gen.Timeout),
		GenerationTemperature: parseFloatEnv("GENERATION_TEMPERATURE", gen.Temperature),
		GenerationTopP:        parseFloatEnv("GENERATION_TOP_P", gen.TopP),
		GenerationMaxTokens:   parseIntEnv("GENERATION_MAX_TOKENS", gen.MaxTokens),
		MockDelay:             parseDurationEnv("MOCK_DELAY", gen.MockDelay),

		OCREngine:               getEnv("OCR_ENGINE", OCREngineVision),
		OCRLanguages:            parseListEnv("OCR_LANGUAGES", rec.Languages),
		OCRAccurate:             parseBoolEnv("OCR_ACCURATE", rec.Accurate),
		OCRLanguageCorrection:   parseBoolEnv("OCR_LANGUAGE_CORRECTION", rec.LanguageCorrection),
		QuadDetector:            getEnv("QUAD_DETECTOR", QuadDetectorVision),
		MaxImageWidth:           parseIntEnv("MAX_IMAGE_WIDTH", geometry.DefaultMaxWidth),
		RowTolerance:            parseFloat64Env("ROW_TOLERANCE", layout.DefaultTolerance),
		RectMinAspectRatio:      parseFloat64Env("RECT_MIN_ASPECT_RATIO", rect.MinAspectRatio),
		RectMinSize:             parseFloat64Env("RECT_MIN_SIZE", rect.MinSize),
		RectQuadratureTolerance: parseFloat64Env("RECT_QUADRATURE_TOLERANCE", rect.QuadratureTolerance),
		RectMinConfidence:       parseFloatEnv("RECT_MIN_CONFIDENCE", rect.MinConfidence),

		DocumentAIProjectID:   getEnv("DOCUMENTAI_PROJECT_ID", getEnv("GOOGLE_CLOUD_PROJECT", "")),
		DocumentAILocation:    getEnv("DOCUMENTAI_LOCATION", "us"),
		DocumentAIProcessorID: getEnv("DOCUMENTAI_PROCESSOR_ID", ""),

		DraftsSheetURL:  getEnv("DRAFTS_SHEET_URL", ""),
		DraftsSheetName: getEnv("DRAFTS_SHEET_NAME", "Drafts"),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogTimeFormat: getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:     getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate checks enumerated values and numeric ranges.
func (c *Config) Validate() error {
	if _, err := variants.ParseMode(c.GenerationMode); err != nil {
		return fmt.Errorf("GENERATION_MODE: %w", err)
	}
	switch variants.Provider(c.GenerationProvider) {
	case variants.ProviderOpenAI, variants.ProviderGemini:
	default:
		return fmt.Errorf("GENERATION_PROVIDER must be openai or gemini, got %q", c.GenerationProvider)
	}
	if c.GenerationTimeout <= 0 {
		return fmt.Errorf("GENERATION_TIMEOUT must be positive")
	}
	if c.MockDelay < 0 {
		return fmt.Errorf("MOCK_DELAY must not be negative")
	}
	if c.GenerationTemperature < 0 || c.GenerationTemperature > 2 {
		return fmt.Errorf("GENERATION_TEMPERATURE must be between 0 and 2")
	}
	if c.GenerationTopP <= 0 || c.GenerationTopP > 1 {
		return fmt.Errorf("GENERATION_TOP_P must be in (0, 1]")
	}
	if c.GenerationMaxTokens <= 0 {
		return fmt.Errorf("GENERATION_MAX_TOKENS must be positive")
	}

	switch c.OCREngine {
	case OCREngineVision, OCREngineTesseract:
	case OCREngineDocumentAI:
		if c.DocumentAIProjectID == "" || c.DocumentAIProcessorID == "" {
			return fmt.Errorf("OCR_ENGINE=documentai requires DOCUMENTAI_PROJECT_ID and DOCUMENTAI_PROCESSOR_ID")
		}
	default:
		return fmt.Errorf("OCR_ENGINE must be vision, documentai or tesseract, got %q", c.OCREngine)
	}
	switch c.QuadDetector {
	case QuadDetectorVision, QuadDetectorContour, QuadDetectorNone:
	default:
		return fmt.Errorf("QUAD_DETECTOR must be vision, contour or none, got %q", c.QuadDetector)
	}
	if c.MaxImageWidth <= 0 {
		return fmt.Errorf("MAX_IMAGE_WIDTH must be positive")
	}
	if c.RowTolerance <= 0 {
		return fmt.Errorf("ROW_TOLERANCE must be positive")
	}
	if c.RectMinConfidence < 0 || c.RectMinConfidence > 1 {
		return fmt.Errorf("RECT_MIN_CONFIDENCE must be between 0 and 1")
	}
	if c.RectMinSize < 0 || c.RectMinSize > 1 {
		return fmt.Errorf("RECT_MIN_SIZE must be between 0 and 1")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// GetGenerationConfig returns the variant generator configuration, with the
// API key and model of the selected provider.
func (c *Config) GetGenerationConfig() variants.Config {
	mode, _ := variants.ParseMode(c.GenerationMode)
	cfg := variants.Config{
		Mode:        mode,
		Provider:    variants.Provider(c.GenerationProvider),
		APIKey:      c.OpenAIAPIKey,
		BaseURL:     c.OpenAIBaseURL,
		Model:       c.OpenAIModel,
		Temperature: c.GenerationTemperature,
		TopP:        c.GenerationTopP,
		MaxTokens:   c.GenerationMaxTokens,
		Timeout:     c.GenerationTimeout,
		MockDelay:   c.MockDelay,
	}
	if cfg.Provider == variants.ProviderGemini {
		cfg.APIKey = c.GeminiAPIKey
		cfg.BaseURL = ""
		cfg.Model = c.GeminiModel
	}
	return cfg
}

// GetDetectOptions returns the page quadrilateral constraints.
func (c *Config) GetDetectOptions() detect.Options {
	return detect.Options{
		MinAspectRatio:      c.RectMinAspectRatio,
		MinSize:             c.RectMinSize,
		QuadratureTolerance: c.RectQuadratureTolerance,
		MinConfidence:       c.RectMinConfidence,
	}
}

// GetRecognitionOptions returns the text recognition options.
func (c *Config) GetRecognitionOptions() ocr.Options {
	return ocr.Options{
		Languages:          append([]string(nil), c.OCRLanguages...),
		Accurate:           c.OCRAccurate,
		LanguageCorrection: c.OCRLanguageCorrection,
	}
}

// GetDocumentAIConfig returns the Document AI processor selection.
func (c *Config) GetDocumentAIConfig() ocr.DocumentAIConfig {
	return ocr.DocumentAIConfig{
		ProjectID:   c.DocumentAIProjectID,
		Location:    c.DocumentAILocation,
		ProcessorID: c.DocumentAIProcessorID,
		Timeout:     60 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func parseFloatEnv(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(parsed)
		}
	}
	return defaultValue
}

func parseFloat64Env(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// parseDurationEnv accepts Go durations ("8s") or plain seconds ("1.5").
func parseDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return defaultValue
}

func parseListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
