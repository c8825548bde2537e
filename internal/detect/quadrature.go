package detect

import (
	"math"

	"snappost/internal/geometry"
)

// withinQuadrature reports whether every interior angle of the polygon is
// within tolerance degrees of a right angle.
func withinQuadrature(corners [4]geometry.Point, tolerance float64) bool {
	for i := range corners {
		prev := corners[(i+3)%4]
		cur := corners[i]
		next := corners[(i+1)%4]

		ax, ay := prev.X-cur.X, prev.Y-cur.Y
		bx, by := next.X-cur.X, next.Y-cur.Y
		la, lb := math.Hypot(ax, ay), math.Hypot(bx, by)
		if la == 0 || lb == 0 {
			return false
		}

		cos := (ax*bx + ay*by) / (la * lb)
		angle := math.Acos(math.Max(-1, math.Min(1, cos))) * 180 / math.Pi
		if math.Abs(angle-90) > tolerance {
			return false
		}
	}
	return true
}
