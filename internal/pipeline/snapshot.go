package pipeline

import (
	"bytes"
	"context"
	"net/url"
	"path"

	"go.uber.org/zap"

	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

// SnapshotFetcher archives every page it fetches before handing it back.
// Archive failures are logged and do not fail the fetch.
type SnapshotFetcher struct {
	next   survivor.Fetcher
	blobs  survivor.BlobStore
	hasher survivor.Hasher
	prefix string
	logger *zap.Logger
}

// NewSnapshotFetcher wraps next. Pages land under
// <prefix>/<run id>/<host>/<sha256[:16]>.html.
func NewSnapshotFetcher(next survivor.Fetcher, blobs survivor.BlobStore, hasher survivor.Hasher, prefix string, logger *zap.Logger) *SnapshotFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotFetcher{
		next:   next,
		blobs:  blobs,
		hasher: hasher,
		prefix: prefix,
		logger: logger.Named("snapshot"),
	}
}

// Fetch delegates to the wrapped fetcher and stores the body.
func (f *SnapshotFetcher) Fetch(ctx context.Context, rawURL string) (survivor.Page, error) {
	page, err := f.next.Fetch(ctx, rawURL)
	if err != nil {
		return page, err
	}
	key, err := f.key(ctx, page)
	if err != nil {
		f.logger.Warn("snapshot key", zap.String("url", rawURL), zap.Error(err))
		return page, nil
	}
	uri, err := f.blobs.PutObject(ctx, key, "text/html; charset=utf-8", bytes.NewReader(page.Body))
	if err != nil {
		f.logger.Warn("snapshot upload failed", zap.String("url", rawURL), zap.Error(err))
		return page, nil
	}
	f.logger.Debug("snapshot stored", zap.String("url", rawURL), zap.String("uri", uri))
	return page, nil
}

func (f *SnapshotFetcher) key(ctx context.Context, page survivor.Page) (string, error) {
	sum, err := f.hasher.Hash(page.Body)
	if err != nil {
		return "", err
	}
	if len(sum) > 16 {
		sum = sum[:16]
	}
	host := "unknown"
	if u, err := url.Parse(page.URL); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	return path.Join(f.prefix, RunID(ctx), host, sum+".html"), nil
}
