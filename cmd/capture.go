package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"snappost/internal/capture"
	"snappost/internal/detect"
	"snappost/internal/logger"
	"snappost/internal/ocr"
	"snappost/pkg/models"
	"snappost/pkg/services"
)

var captureCmd = &cobra.Command{
	Use:   "capture [image-file]",
	Short: "Extract a clean excerpt from a photographed page",
	Long: `Run a photographed book page through the capture pipeline: orientation and
size normalization, page detection with perspective correction, contrast
enhancement, text recognition, line reconstruction and noise removal.

Page numbers, short headers and all-caps running titles are dropped and
hyphenated line breaks are joined.

Environment variables:
  OCR_ENGINE     - vision (default) or tesseract
  QUAD_DETECTOR  - vision (default), contour or none
  GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS - Cloud Vision credentials`,
	Example: `  # Print the excerpt text
  snappost capture page.jpg

  # Output the excerpt as JSON
  snappost capture page.jpg --json`,
	Args: cobra.ExactArgs(1),
	RunE: runCapture,
}

// CaptureOutput is the JSON output of the capture command.
type CaptureOutput struct {
	Excerpt            *models.Excerpt `json:"excerpt"`
	FileName           string          `json:"file_name"`
	FileSize           int64           `json:"file_size"`
	ProcessingDuration string          `json:"processing_duration"`
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().Bool("json", false, "Output as JSON")
	captureCmd.Flags().String("source", "", "Source hint recorded on the excerpt (default: file name)")
	captureCmd.Flags().Duration("timeout", 2*time.Minute, "Processing timeout")
}

func runCapture(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("capture")

	jsonOutput, _ := cmd.Flags().GetBool("json")
	source, _ := cmd.Flags().GetString("source")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	imagePath := args[0]
	if source == "" {
		source = filepath.Base(imagePath)
	}

	fileInfo, err := validateImageFile(imagePath, log)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}

	ctx, cancel := createContextWithTimeout(timeout, log)
	defer cancel()

	svc, err := services.NewCaptureService(ctx, cfg)
	if err != nil {
		return handleSetupError(err, log)
	}
	defer svc.Close()

	startTime := time.Now()
	excerpt, err := captureFile(ctx, svc, imagePath, source)
	if err != nil {
		return handleCaptureError(err, log)
	}

	duration := time.Since(startTime)
	log.Info().
		Str("file", imagePath).
		Int("text_length", len(excerpt.Text)).
		Dur("duration", duration).
		Msg("Capture completed")

	if jsonOutput {
		return writeJSON(os.Stdout, CaptureOutput{
			Excerpt:            excerpt,
			FileName:           fileInfo.Name(),
			FileSize:           fileInfo.Size(),
			ProcessingDuration: duration.String(),
		})
	}

	_, err = fmt.Fprintln(os.Stdout, excerpt.Text)
	return err
}

func captureFile(ctx context.Context, svc services.PostService, path, source string) (*models.Excerpt, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	return svc.ProcessCapture(ctx, file, source)
}

// handleSetupError provides user-friendly messages for client setup failures
func handleSetupError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Failed to create capture pipeline")

	switch {
	case errors.Is(err, ocr.ErrMissingCredentials):
		return fmt.Errorf("Google Cloud credentials not configured. Please set one of:\n\n" +
			"1. Export GOOGLE_APPLICATION_CREDENTIALS with path to service account JSON:\n" +
			"   export GOOGLE_APPLICATION_CREDENTIALS=/path/to/service-account-key.json\n\n" +
			"2. Export GOOGLE_CREDENTIALS with inline JSON\n\n" +
			"3. Or set OCR_ENGINE=tesseract and QUAD_DETECTOR=contour to run locally")
	case errors.Is(err, ocr.ErrEngineUnavailable):
		return fmt.Errorf("the tesseract engine is not available in this build. Rebuild with -tags tesseract or set OCR_ENGINE=vision")
	case errors.Is(err, detect.ErrCapabilityUnavailable):
		return fmt.Errorf("contour detection is not available in this build. Rebuild with -tags gocv or set QUAD_DETECTOR=vision or none")
	default:
		return fmt.Errorf("failed to create capture pipeline: %w", err)
	}
}

// handleCaptureError maps pipeline failures to the messages shown to users
func handleCaptureError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Capture failed")
	return fmt.Errorf("%s: %w", capture.UserMessage(err), err)
}
