package crawler

import (
	"context"

	"rozhodnutia/pkg/models"
)

// PageFetcher retrieves one listing page as text
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// PageExtractor turns one listing page into records
type PageExtractor interface {
	Extract(html string) ([]models.Record, error)
}
