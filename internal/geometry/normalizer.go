// Package geometry normalizes captured page images before text recognition.
//
// The Normalizer downsizes oversized captures, straightens a detected page
// quadrilateral with a perspective transform and applies a small contrast
// boost. Only Normalize can fail; perspective correction and contrast
// enhancement fall back to their input image.
package geometry

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"snappost/internal/logger"
)

const (
	// DefaultMaxWidth is the widest image passed on to detection and recognition.
	DefaultMaxWidth = 1500

	// ContrastBoost is the contrast increase, in percent, applied before recognition.
	ContrastBoost = 10.0
)

// ErrInvalidImage is returned when an image has no usable pixel data.
var ErrInvalidImage = errors.New("image has no decodable pixel data")

// Normalizer prepares page images for recognition.
type Normalizer struct {
	MaxWidth int
	log      zerolog.Logger
}

// NewNormalizer creates a Normalizer; a non-positive maxWidth uses DefaultMaxWidth.
func NewNormalizer(maxWidth int) *Normalizer {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	return &Normalizer{
		MaxWidth: maxWidth,
		log:      logger.WithComponent("geometry"),
	}
}

// Normalize downsizes images wider than MaxWidth, preserving aspect ratio.
// Narrower images are returned unchanged.
func (n *Normalizer) Normalize(img image.Image) (image.Image, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrInvalidImage
	}

	width := img.Bounds().Dx()
	if width <= n.MaxWidth {
		return img, nil
	}

	resized := imaging.Resize(img, n.MaxWidth, 0, imaging.Lanczos)
	if resized.Bounds().Empty() {
		return nil, fmt.Errorf("resize %dx%d to width %d: %w", width, img.Bounds().Dy(), n.MaxWidth, ErrInvalidImage)
	}

	n.log.Debug().
		Int("original_width", width).
		Int("original_height", img.Bounds().Dy()).
		Int("width", resized.Bounds().Dx()).
		Int("height", resized.Bounds().Dy()).
		Msg("Downscaled capture")

	return resized, nil
}

// CorrectPerspective maps the quad's corners onto the full image rectangle.
// A nil quad, or one that cannot be inverted, leaves the image unchanged.
func (n *Normalizer) CorrectPerspective(img image.Image, quad *Quad) image.Image {
	if quad == nil || img == nil {
		return img
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	corners := quad.ToPixels(w, h)
	if polygonArea(corners) < 1 {
		n.log.Warn().
			Float32("confidence", quad.Confidence).
			Msg("Skipping perspective correction for collapsed quadrilateral")
		return img
	}

	target := [4]Point{
		{X: 0, Y: 0},
		{X: float64(w), Y: 0},
		{X: float64(w), Y: float64(h)},
		{X: 0, Y: float64(h)},
	}

	// Maps output pixels back to source pixels.
	inverse, err := solveHomography(target, corners)
	if err != nil {
		n.log.Warn().
			Err(err).
			Float32("confidence", quad.Confidence).
			Msg("Skipping perspective correction")
		return img
	}

	corrected := warp(imaging.Clone(img), inverse, w, h)

	n.log.Debug().
		Float32("confidence", quad.Confidence).
		Msg("Applied perspective correction")

	return corrected
}

// EnhanceContrast applies ContrastBoost. It never fails: if the adjustment
// cannot produce an image the input is returned.
func (n *Normalizer) EnhanceContrast(img image.Image) (out image.Image) {
	if img == nil {
		return img
	}

	defer func() {
		if r := recover(); r != nil {
			n.log.Warn().
				Interface("panic", r).
				Msg("Contrast enhancement failed, using original image")
			out = img
		}
	}()

	enhanced := imaging.AdjustContrast(img, ContrastBoost)
	if enhanced == nil || enhanced.Bounds().Empty() {
		return img
	}
	return enhanced
}

// polygonArea is the shoelace area of the corners in pixels.
func polygonArea(pts [4]Point) float64 {
	var sum float64
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return math.Abs(sum) / 2
}

// warp renders a w x h image by sampling src through h (output -> source) with bilinear interpolation.
func warp(src *image.NRGBA, h homography, w, ht int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, ht))
	for y := 0; y < ht; y++ {
		for x := 0; x < w; x++ {
			p, ok := h.apply(Point{X: float64(x) + 0.5, Y: float64(y) + 0.5})
			if !ok {
				continue
			}
			dst.SetNRGBA(x, y, bilinear(src, p.X-0.5, p.Y-0.5))
		}
	}
	return dst
}

func bilinear(img *image.NRGBA, fx, fy float64) color.NRGBA {
	b := img.Bounds()
	maxX, maxY := b.Dx()-1, b.Dy()-1

	fx = math.Max(0, math.Min(float64(maxX), fx))
	fy = math.Max(0, math.Min(float64(maxY), fy))

	x0, y0 := int(fx), int(fy)
	x1, y1 := min(x0+1, maxX), min(y0+1, maxY)
	dx, dy := fx-float64(x0), fy-float64(y0)

	c00 := img.NRGBAAt(b.Min.X+x0, b.Min.Y+y0)
	c10 := img.NRGBAAt(b.Min.X+x1, b.Min.Y+y0)
	c01 := img.NRGBAAt(b.Min.X+x0, b.Min.Y+y1)
	c11 := img.NRGBAAt(b.Min.X+x1, b.Min.Y+y1)

	mix := func(a, b, c, d uint8) uint8 {
		top := float64(a)*(1-dx) + float64(b)*dx
		bottom := float64(c)*(1-dx) + float64(d)*dx
		return uint8(math.Round(top*(1-dy) + bottom*dy))
	}

	return color.NRGBA{
		R: mix(c00.R, c10.R, c01.R, c11.R),
		G: mix(c00.G, c10.G, c01.G, c11.G),
		B: mix(c00.B, c10.B, c01.B, c11.B),
		A: mix(c00.A, c10.A, c01.A, c11.A),
	}
}
