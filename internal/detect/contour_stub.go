//go:build !gocv

package detect

import (
	"context"
	"image"

	"snappost/internal/geometry"
)

// ContourCapability is unavailable without the "gocv" build tag.
type ContourCapability struct{}

// NewContourCapability returns ErrCapabilityUnavailable without the "gocv" build tag.
func NewContourCapability() (*ContourCapability, error) {
	return nil, ErrCapabilityUnavailable
}

// Candidates implements Capability.
func (*ContourCapability) Candidates(context.Context, image.Image, Options) ([]geometry.Quad, error) {
	return nil, ErrCapabilityUnavailable
}
