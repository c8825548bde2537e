//go:build tesseract

package ocr

import (
	"bytes"
	"context"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog"

	"snappost/internal/logger"
)

// TesseractEngine implements Engine with a local Tesseract installation.
//
// Requires Tesseract and the "tesseract" build tag:
//
//	go build -tags tesseract
type TesseractEngine struct {
	log zerolog.Logger
}

// NewTesseractEngine creates a Tesseract engine.
func NewTesseractEngine() (*TesseractEngine, error) {
	return &TesseractEngine{log: logger.WithComponent("ocr")}, nil
}

// Recognize implements Engine. A gosseract client is not safe for concurrent
// use, so each call gets its own.
func (t *TesseractEngine) Recognize(ctx context.Context, img image.Image, opts Options) ([]Observation, error) {
	const op = "TesseractEngine.Recognize"

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, recognitionFailure(op, err, "failed to encode image")
	}

	client := gosseract.NewClient()
	defer func() {
		if err := client.Close(); err != nil {
			t.log.Warn().Err(err).Msg("Failed to close Tesseract client")
		}
	}()

	if err := client.SetLanguage(tesseractLanguages(opts.Languages)...); err != nil {
		return nil, recognitionFailure(op, err, "failed to set languages")
	}
	if opts.LanguageCorrection {
		if err := client.SetVariable("tessedit_enable_dict_correction", "1"); err != nil {
			return nil, recognitionFailure(op, err, "failed to enable dictionary correction")
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, recognitionFailure(op, err, "failed to set image")
	}

	if err := ctx.Err(); err != nil {
		return nil, recognitionFailure(op, err, "recognition canceled")
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, recognitionFailure(op, err, "Tesseract recognition failed")
	}
	if err := ctx.Err(); err != nil {
		return nil, recognitionFailure(op, err, "recognition canceled")
	}

	bounds := img.Bounds()
	observations := make([]Observation, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		observations = append(observations, Observation{
			Text: text,
			Box:  normalizeBox(box.Box, bounds.Dx(), bounds.Dy()),
		})
	}

	return observations, nil
}

// Close implements Engine.
func (t *TesseractEngine) Close() error {
	return nil
}
