package relay

import (
	"context"

	"github.com/denisAlshanov/reelgrab/internal/models"
)

// Extractor downloads every media entry behind a link.
type Extractor interface {
	Extract(ctx context.Context, link string, opts models.DownloadOptions) (*models.ExtractionResult, error)
}

// Archiver keeps a copy of a delivered video.
type Archiver interface {
	Archive(ctx context.Context, platform models.Platform, path string, metadata map[string]string) (string, error)
}
