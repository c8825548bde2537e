package services

import (
	"context"
	"io"

	"snappost/pkg/models"
)

// PostService turns photographed book pages into ready-to-post variants.
type PostService interface {
	// ProcessCapture extracts a cleaned excerpt from an encoded page image.
	ProcessCapture(ctx context.Context, image io.Reader, sourceHint string) (*models.Excerpt, error)

	// GeneratePosts creates tone-labeled post variants for an excerpt.
	// bookTitle and author are optional.
	GeneratePosts(ctx context.Context, excerpt, bookTitle, author string) ([]models.Variant, error)
}
