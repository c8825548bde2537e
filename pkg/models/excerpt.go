package models

import "time"

// Excerpt is the cleaned, ordered text extracted from one capture.
type Excerpt struct {
	ID         string    `json:"id"`                    // Unique excerpt identifier (UUID)
	Text       string    `json:"text"`                  // Cleaned excerpt text
	CreatedAt  time.Time `json:"created_at"`            // When the capture pipeline produced it
	SourceHint *string   `json:"source_hint,omitempty"` // Optional caller-provided origin (file name, book)
	Confidence *float32  `json:"confidence,omitempty"`  // Optional page detection confidence (0.0 to 1.0)
}

// Rect is an axis-aligned rectangle in image pixel coordinates with the Y axis pointing down.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MinX returns the left edge.
func (r Rect) MinX() float64 { return r.X }

// MidY returns the vertical center.
func (r Rect) MidY() float64 { return r.Y + r.Height/2 }

// TextFragment is one recognized span of text with its bounding box.
type TextFragment struct {
	Text        string `json:"text"`
	BoundingBox Rect   `json:"bounding_box"`
}
