//go:build !tesseract

package ocr

import (
	"context"
	"image"
)

// TesseractEngine is unavailable without the "tesseract" build tag.
type TesseractEngine struct{}

// NewTesseractEngine returns ErrEngineUnavailable without the "tesseract" build tag.
func NewTesseractEngine() (*TesseractEngine, error) {
	return nil, NewOCRError("NewTesseractEngine", ErrEngineUnavailable, "rebuild with -tags tesseract")
}

// Recognize implements Engine.
func (*TesseractEngine) Recognize(context.Context, image.Image, Options) ([]Observation, error) {
	return nil, NewOCRError("TesseractEngine.Recognize", ErrEngineUnavailable, "rebuild with -tags tesseract")
}

// Close implements Engine.
func (*TesseractEngine) Close() error {
	return nil
}
