package geometry

import "math"

// Point is a 2D coordinate.
type Point struct {
	X float64
	Y float64
}

// Quad is a detected page quadrilateral. Corners are normalized to [0, 1]
// with the origin at the bottom-left (Y up), as reported by detection capabilities.
type Quad struct {
	TopLeft     Point
	TopRight    Point
	BottomRight Point
	BottomLeft  Point
	Confidence  float32
}

// ToPixels converts the corners to top-down pixel coordinates for an image of
// the given size, in TopLeft, TopRight, BottomRight, BottomLeft order.
func (q Quad) ToPixels(width, height int) [4]Point {
	w, h := float64(width), float64(height)
	convert := func(p Point) Point {
		return Point{X: p.X * w, Y: (1 - p.Y) * h}
	}
	return [4]Point{convert(q.TopLeft), convert(q.TopRight), convert(q.BottomRight), convert(q.BottomLeft)}
}

// Width is the normalized width of the quad's axis-aligned bounding box.
func (q Quad) Width() float64 {
	minX, maxX := extent(q.TopLeft.X, q.TopRight.X, q.BottomRight.X, q.BottomLeft.X)
	return maxX - minX
}

// Height is the normalized height of the quad's axis-aligned bounding box.
func (q Quad) Height() float64 {
	minY, maxY := extent(q.TopLeft.Y, q.TopRight.Y, q.BottomRight.Y, q.BottomLeft.Y)
	return maxY - minY
}

// AspectRatio is bounding box width over height; zero height yields +Inf.
func (q Quad) AspectRatio() float64 {
	h := q.Height()
	if h == 0 {
		return math.Inf(1)
	}
	return q.Width() / h
}

// QuadFromPixels builds a normalized, Y-up quad from top-down pixel corners.
func QuadFromPixels(corners [4]Point, width, height int, confidence float32) Quad {
	w, h := float64(width), float64(height)
	convert := func(p Point) Point {
		return Point{X: clampUnit(p.X / w), Y: clampUnit(1 - p.Y/h)}
	}
	return Quad{
		TopLeft:     convert(corners[0]),
		TopRight:    convert(corners[1]),
		BottomRight: convert(corners[2]),
		BottomLeft:  convert(corners[3]),
		Confidence:  confidence,
	}
}

// OrderCorners sorts four arbitrary pixel corners into TopLeft, TopRight,
// BottomRight, BottomLeft order (top-down coordinates).
func OrderCorners(pts [4]Point) [4]Point {
	var out [4]Point
	minSum, maxSum := math.Inf(1), math.Inf(-1)
	minDiff, maxDiff := math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		sum, diff := p.X+p.Y, p.Y-p.X
		if sum < minSum {
			minSum, out[0] = sum, p
		}
		if sum > maxSum {
			maxSum, out[2] = sum, p
		}
		if diff < minDiff {
			minDiff, out[1] = diff, p
		}
		if diff > maxDiff {
			maxDiff, out[3] = diff, p
		}
	}
	return out
}

func extent(vals ...float64) (float64, float64) {
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
