package survivor

import (
	"context"
	"io"
	"time"
)

// Fetcher retrieves a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Page, error)
}

// BlobStore writes raw artifacts and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error)
}

// Publisher pushes completion events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Repository persists and reloads the scraped tables.
type Repository interface {
	SaveSeason(ctx context.Context, result SeasonResult) error
	SaveDataset(ctx context.Context, dataset Dataset) error
	SaveCast(ctx context.Context, cast []CastMember) error
	Seasons(ctx context.Context) ([]SeasonStats, error)
	Contestants(ctx context.Context, filter ContestantFilter) ([]Contestant, error)
	Episodes(ctx context.Context, season *int) ([]Episode, error)
	Close() error
}

// Hasher computes digests for snapshot keys.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
