// Package ocr recognizes text lines in page images.
//
// Engines report each recognized line with a bounding box in normalized
// image space (0 to 1, origin bottom-left). ToFragments converts those
// observations into top-down pixel fragments for layout reconstruction.
//
// Engines:
//   - GoogleVisionEngine: Google Cloud Vision document text detection.
//     Credentials come from GOOGLE_APPLICATION_CREDENTIALS (file path) or
//     GOOGLE_CREDENTIALS (inline JSON), falling back to default credentials.
//   - DocumentAIEngine: a Google Document AI OCR processor.
//   - TesseractEngine: local Tesseract via gosseract, built with -tags tesseract.
package ocr

import (
	"context"
	"image"

	"snappost/pkg/models"
)

// Engine recognizes text lines in an image.
type Engine interface {
	// Recognize returns one observation per recognized text line.
	// An image without text yields an empty slice and no error.
	Recognize(ctx context.Context, img image.Image, opts Options) ([]Observation, error)

	// Close releases engine resources.
	Close() error
}

// Options configures recognition.
type Options struct {
	// Languages are BCP-47 language tags, most preferred first.
	Languages []string `json:"languages"`

	// Accurate selects the slower, more accurate recognition mode.
	Accurate bool `json:"accurate"`

	// LanguageCorrection enables dictionary-based correction where the engine supports it.
	LanguageCorrection bool `json:"language_correction"`
}

// DefaultOptions returns accurate English recognition with language correction.
func DefaultOptions() Options {
	return Options{
		Languages:          []string{"en-US"},
		Accurate:           true,
		LanguageCorrection: true,
	}
}

// NormalizedRect is a bounding box in unit image space with the origin at the
// bottom-left corner (Y up).
type NormalizedRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MaxY is the top edge of the box.
func (r NormalizedRect) MaxY() float64 {
	return r.Y + r.Height
}

// Observation is one recognized text line.
type Observation struct {
	Text string         `json:"text"`
	Box  NormalizedRect `json:"box"`
}

// ToFragments converts observations to pixel-space fragments for an image of
// the given size, flipping Y so that the origin is the top-left corner.
func ToFragments(observations []Observation, width, height int) []models.TextFragment {
	w, h := float64(width), float64(height)
	fragments := make([]models.TextFragment, 0, len(observations))
	for _, o := range observations {
		fragments = append(fragments, models.TextFragment{
			Text: o.Text,
			BoundingBox: models.Rect{
				X:      o.Box.X * w,
				Y:      (1 - o.Box.MaxY()) * h,
				Width:  o.Box.Width * w,
				Height: o.Box.Height * h,
			},
		})
	}
	return fragments
}

// normalizeBox converts a top-down pixel box to a normalized, Y-up rect.
func normalizeBox(r image.Rectangle, width, height int) NormalizedRect {
	w, h := float64(width), float64(height)
	return NormalizedRect{
		X:      float64(r.Min.X) / w,
		Y:      1 - float64(r.Max.Y)/h,
		Width:  float64(r.Dx()) / w,
		Height: float64(r.Dy()) / h,
	}
}
