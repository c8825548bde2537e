// Package capture turns a photographed book page into a cleaned text excerpt.
//
// A Pipeline runs the stages in a fixed order: normalize the image size,
// detect the page quadrilateral, correct perspective, enhance contrast,
// recognize text lines, rebuild reading order and strip scanning noise.
// An unreadable image, a failed detection request or a recognition failure
// aborts a run; finding no page and contrast problems fall back to the
// uncorrected image.
package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"snappost/internal/detect"
	"snappost/internal/geometry"
	"snappost/internal/layout"
	"snappost/internal/logger"
	"snappost/internal/ocr"
	"snappost/internal/textclean"
	"snappost/pkg/models"
)

var (
	// ErrInvalidImage is returned when the capture has no readable pixel data.
	ErrInvalidImage = geometry.ErrInvalidImage

	// ErrRecognitionFailed is returned when page detection or text recognition
	// fails, or the run is canceled.
	ErrRecognitionFailed = ocr.ErrRecognitionFailed
)

// UserMessage returns a message suitable for display for a capture error.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidImage):
		return "The image cannot be processed. Please try with a different image."
	case errors.Is(err, ErrRecognitionFailed):
		return "Failed to process the image. Please try again with a clearer photo."
	default:
		return "Failed to process the image. Please try again."
	}
}

// Pipeline runs captures through normalization, detection, recognition and
// cleaning. It holds no per-capture state and is safe for concurrent use if its
// engine is.
type Pipeline struct {
	normalizer    *geometry.Normalizer
	detector      *detect.Detector
	engine        ocr.Engine
	reconstructor *layout.Reconstructor
	recognition   ocr.Options
}

// NewPipeline assembles a pipeline from its stages.
func NewPipeline(
	normalizer *geometry.Normalizer,
	detector *detect.Detector,
	engine ocr.Engine,
	reconstructor *layout.Reconstructor,
	recognition ocr.Options,
) *Pipeline {
	return &Pipeline{
		normalizer:    normalizer,
		detector:      detector,
		engine:        engine,
		reconstructor: reconstructor,
		recognition:   recognition,
	}
}

// ProcessReader decodes an encoded image and runs it through the pipeline.
func (p *Pipeline) ProcessReader(ctx context.Context, r io.Reader, sourceHint string) (*models.Excerpt, error) {
	capture, err := ReadImage(r)
	if err != nil {
		return nil, err
	}
	return p.Process(ctx, capture, sourceHint)
}

// Process extracts a cleaned excerpt from a captured image.
func (p *Pipeline) Process(ctx context.Context, capture *CapturedImage, sourceHint string) (*models.Excerpt, error) {
	const op = "Pipeline.Process"
	startTime := time.Now()
	log := logger.WithCapture("capture", sourceHint)

	if capture == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidImage)
	}

	img, err := p.normalizer.Normalize(capture.Image)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	quad, err := p.detector.Detect(ctx, img)
	if err != nil {
		log.Error().Err(err).Msg("Page detection failed")
		return nil, fmt.Errorf("%s: %w: %w", op, ErrRecognitionFailed, err)
	}
	img = p.normalizer.CorrectPerspective(img, quad)
	img = p.normalizer.EnhanceContrast(img)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrRecognitionFailed, err)
	}

	observations, err := p.engine.Recognize(ctx, img, p.recognition)
	if err != nil {
		log.Error().Err(err).Msg("Text recognition failed")
		if errors.Is(err, ErrRecognitionFailed) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return nil, fmt.Errorf("%s: %w: %w", op, ErrRecognitionFailed, err)
	}

	bounds := img.Bounds()
	fragments := ocr.ToFragments(observations, bounds.Dx(), bounds.Dy())
	lines := p.reconstructor.Lines(fragments)
	kept := textclean.RemoveNoise(lines)
	text := textclean.Join(kept)

	excerpt := &models.Excerpt{
		ID:        uuid.NewString(),
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if sourceHint != "" {
		excerpt.SourceHint = &sourceHint
	}
	if quad != nil {
		confidence := quad.Confidence
		excerpt.Confidence = &confidence
	}

	log.Info().
		Int("width", capture.Width).
		Int("height", capture.Height).
		Bool("quadrilateral", quad != nil).
		Int("fragments", len(fragments)).
		Int("lines", len(lines)).
		Int("kept_lines", len(kept)).
		Int("text_length", len(text)).
		Dur("duration", time.Since(startTime)).
		Msg("Capture processed")

	return excerpt, nil
}
