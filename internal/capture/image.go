package capture

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// CapturedImage is a decoded capture, upright according to its EXIF orientation.
type CapturedImage struct {
	Image  image.Image
	Width  int
	Height int
	// Format is the encoded format name, e.g. "jpeg" or "png".
	Format string
}

// DecodeImage decodes an encoded capture. Empty or undecodable data yields ErrInvalidImage.
func DecodeImage(data []byte) (*CapturedImage, error) {
	const op = "DecodeImage"

	if len(data) == 0 {
		return nil, fmt.Errorf("%s: empty image data: %w", op, ErrInvalidImage)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: unsupported image format: %w: %w", op, ErrInvalidImage, err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to decode image: %w: %w", op, ErrInvalidImage, err)
	}

	return NewCapturedImage(img, format)
}

// ReadImage reads and decodes an encoded capture.
func ReadImage(r io.Reader) (*CapturedImage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ReadImage: failed to read image data: %w", err)
	}
	return DecodeImage(data)
}

// NewCapturedImage wraps already decoded pixels.
func NewCapturedImage(img image.Image, format string) (*CapturedImage, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("NewCapturedImage: %w", ErrInvalidImage)
	}
	return &CapturedImage{
		Image:  img,
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
		Format: format,
	}, nil
}
