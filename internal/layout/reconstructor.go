// Package layout rebuilds reading order from unordered recognized fragments.
//
// Recognition engines return fragments in no particular order. Fragments on
// one printed line jitter vertically by a few pixels, so rows are formed by
// clustering vertical centers within a fixed tolerance rather than by exact Y.
package layout

import (
	"math"
	"sort"
	"strings"

	"snappost/pkg/models"
)

// DefaultTolerance is the maximum vertical center distance, in pixels, for two fragments to share a row.
const DefaultTolerance = 18.0

// Row is a reconstructed horizontal line of fragments.
type Row struct {
	// Center is the vertical center of the fragment that opened the row.
	Center    float64
	Fragments []models.TextFragment
}

// Text joins the row's fragments with single spaces.
func (r Row) Text() string {
	parts := make([]string, len(r.Fragments))
	for i, f := range r.Fragments {
		parts[i] = f.Text
	}
	return strings.Join(parts, " ")
}

// Reconstructor groups fragments into rows and orders them top-to-bottom, left-to-right.
type Reconstructor struct {
	Tolerance float64
}

// NewReconstructor returns a Reconstructor; a non-positive tolerance falls back to DefaultTolerance.
func NewReconstructor(tolerance float64) *Reconstructor {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Reconstructor{Tolerance: tolerance}
}

// Rows clusters fragments into sorted rows.
//
// A fragment joins the first row, in creation order, whose reference center is
// within tolerance, even when a later row is closer. Keep it that way: changing
// to nearest-row assignment changes output for identical input.
func (r *Reconstructor) Rows(fragments []models.TextFragment) []Row {
	var rows []Row

	for _, fragment := range fragments {
		center := fragment.BoundingBox.MidY()

		placed := false
		for i := range rows {
			if math.Abs(center-rows[i].Center) <= r.Tolerance {
				rows[i].Fragments = append(rows[i].Fragments, fragment)
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, Row{Center: center, Fragments: []models.TextFragment{fragment}})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Center < rows[j].Center
	})

	for i := range rows {
		sortByLeftEdge(rows[i].Fragments)
	}

	return rows
}

func sortByLeftEdge(fragments []models.TextFragment) {
	sort.SliceStable(fragments, func(i, j int) bool {
		return fragments[i].BoundingBox.MinX() < fragments[j].BoundingBox.MinX()
	})
}

// Lines returns the non-empty text of each row in reading order.
func (r *Reconstructor) Lines(fragments []models.TextFragment) []string {
	rows := r.Rows(fragments)

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		text := row.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		lines = append(lines, text)
	}
	return lines
}
