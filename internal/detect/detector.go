// Package detect finds the page quadrilateral in a captured image.
//
// Detection is delegated to a Capability (Google Cloud Vision crop hints,
// OpenCV contours or none). The Detector filters the candidates a capability
// reports and picks the most confident one. No acceptable candidate is a
// normal nil result; a capability error is returned to the caller.
package detect

import (
	"context"
	"errors"
	"image"

	"github.com/rs/zerolog"

	"snappost/internal/geometry"
	"snappost/internal/logger"
)

// ErrCapabilityUnavailable is returned by capabilities that were not compiled in.
var ErrCapabilityUnavailable = errors.New("quadrilateral detection capability unavailable")

// Options constrains which candidate quadrilaterals are accepted.
type Options struct {
	// MinAspectRatio is the minimum bounding box width over height.
	MinAspectRatio float64
	// MinSize is the minimum normalized width and height.
	MinSize float64
	// QuadratureTolerance is the allowed corner deviation from 90 degrees.
	QuadratureTolerance float64
	// MinConfidence is the minimum confidence reported by the capability.
	MinConfidence float32
}

// DefaultOptions returns the detection constraints used for book pages.
func DefaultOptions() Options {
	return Options{
		MinAspectRatio:      0.5,
		MinSize:             0.2,
		QuadratureTolerance: 20,
		MinConfidence:       0.5,
	}
}

// Capability reports candidate quadrilaterals in normalized, Y-up coordinates.
type Capability interface {
	Candidates(ctx context.Context, img image.Image, opts Options) ([]geometry.Quad, error)
}

// Detector selects the best page quadrilateral reported by a Capability.
type Detector struct {
	capability Capability
	opts       Options
	log        zerolog.Logger
}

// NewDetector creates a Detector; a nil capability detects nothing.
func NewDetector(capability Capability, opts Options) *Detector {
	if capability == nil {
		capability = None{}
	}
	return &Detector{
		capability: capability,
		opts:       opts,
		log:        logger.WithComponent("detect"),
	}
}

// Options returns the constraints the detector filters with.
func (d *Detector) Options() Options {
	return d.opts
}

// Detect returns the most confident acceptable quadrilateral, or nil when
// none qualifies. Ties keep the candidate reported first.
func (d *Detector) Detect(ctx context.Context, img image.Image) (*geometry.Quad, error) {
	candidates, err := d.capability.Candidates(ctx, img, d.opts)
	if err != nil {
		d.log.Warn().
			Err(err).
			Msg("Quadrilateral detection failed")
		return nil, err
	}

	var best *geometry.Quad
	for i := range candidates {
		c := candidates[i]
		if !d.accepts(c) {
			continue
		}
		if best == nil || c.Confidence > best.Confidence {
			best = &c
		}
	}

	if best != nil {
		d.log.Debug().
			Int("candidates", len(candidates)).
			Float32("confidence", best.Confidence).
			Msg("Page quadrilateral detected")
	}
	return best, nil
}

func (d *Detector) accepts(q geometry.Quad) bool {
	return q.Confidence >= d.opts.MinConfidence &&
		q.AspectRatio() >= d.opts.MinAspectRatio &&
		q.Width() >= d.opts.MinSize &&
		q.Height() >= d.opts.MinSize
}

// None is a Capability that never finds a quadrilateral.
type None struct{}

// Candidates implements Capability.
func (None) Candidates(context.Context, image.Image, Options) ([]geometry.Quad, error) {
	return nil, nil
}
