package ocr_test

import (
	"fmt"

	"snappost/internal/ocr"
)

// ExampleToFragments shows how engine observations map to pixel fragments.
func ExampleToFragments() {
	observations := []ocr.Observation{
		{Text: "Chapter One", Box: ocr.NormalizedRect{X: 0.1, Y: 0.9, Width: 0.5, Height: 0.05}},
	}

	for _, f := range ocr.ToFragments(observations, 1000, 2000) {
		fmt.Printf("%s at x=%.0f y=%.0f\n", f.Text, f.BoundingBox.X, f.BoundingBox.Y)
	}
	// Output: Chapter One at x=100 y=100
}
