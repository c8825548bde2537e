//go:build gocv

package detect

import (
	"context"
	"fmt"
	"image"
	"sort"

	"gocv.io/x/gocv"

	"snappost/internal/geometry"
)

// ContourCapability finds page outlines with OpenCV edge and contour analysis.
//
// Requires OpenCV and the "gocv" build tag:
//
//	go build -tags gocv
type ContourCapability struct {
	// MaxCandidates bounds how many of the largest contours are examined.
	MaxCandidates int
}

// NewContourCapability creates an OpenCV contour capability.
func NewContourCapability() (*ContourCapability, error) {
	return &ContourCapability{MaxCandidates: 5}, nil
}

// Candidates implements Capability.
func (c *ContourCapability) Candidates(ctx context.Context, img image.Image, opts Options) ([]geometry.Quad, error) {
	const op = "ContourCapability.Candidates"

	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to convert image: %w", op, err)
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorRGBToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, 75, 200)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	type contour struct {
		index int
		area  float64
	}
	var ranked []contour
	for i := 0; i < contours.Size(); i++ {
		ranked = append(ranked, contour{index: i, area: gocv.ContourArea(contours.At(i))})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].area > ranked[j].area })
	if len(ranked) > c.MaxCandidates {
		ranked = ranked[:c.MaxCandidates]
	}

	bounds := img.Bounds()
	var quads []geometry.Quad
	for _, rc := range ranked {
		pv := contours.At(rc.index)
		approx := gocv.ApproxPolyDP(pv, 0.02*gocv.ArcLength(pv, true), true)
		if approx.Size() != 4 {
			approx.Close()
			continue
		}

		var pts [4]geometry.Point
		for i := 0; i < 4; i++ {
			p := approx.At(i)
			pts[i] = geometry.Point{X: float64(p.X), Y: float64(p.Y)}
		}
		approx.Close()

		corners := geometry.OrderCorners(pts)
		if !withinQuadrature(corners, opts.QuadratureTolerance) {
			continue
		}

		quads = append(quads, geometry.QuadFromPixels(corners, bounds.Dx(), bounds.Dy(), rectangularity(corners, rc.area)))
	}

	return quads, nil
}

// rectangularity is the contour area over its bounding box area.
func rectangularity(corners [4]geometry.Point, area float64) float32 {
	minX, maxX := corners[0].X, corners[0].X
	minY, maxY := corners[0].Y, corners[0].Y
	for _, p := range corners[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	box := (maxX - minX) * (maxY - minY)
	if box <= 0 {
		return 0
	}
	return float32(min(1, area/box))
}
