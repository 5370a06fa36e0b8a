// Package app builds and holds the long-lived services shared by the CLI
// commands.
package app

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub"
	gcs "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/JakeFAU/survivor-stats/internal/catalog"
	"github.com/JakeFAU/survivor-stats/internal/clock/system"
	"github.com/JakeFAU/survivor-stats/internal/config"
	collyfetcher "github.com/JakeFAU/survivor-stats/internal/fetcher/colly"
	headlessfetcher "github.com/JakeFAU/survivor-stats/internal/fetcher/headless"
	"github.com/JakeFAU/survivor-stats/internal/hash/sha256"
	"github.com/JakeFAU/survivor-stats/internal/id/uuid"
	"github.com/JakeFAU/survivor-stats/internal/pipeline"
	"github.com/JakeFAU/survivor-stats/internal/policy/ratelimit"
	pubsubpublisher "github.com/JakeFAU/survivor-stats/internal/publisher/pubsub"
	gcsstore "github.com/JakeFAU/survivor-stats/internal/storage/gcs"
	localstore "github.com/JakeFAU/survivor-stats/internal/storage/local"
	memorystore "github.com/JakeFAU/survivor-stats/internal/storage/memory"
	memoryrepo "github.com/JakeFAU/survivor-stats/internal/store/memory"
	"github.com/JakeFAU/survivor-stats/internal/store/postgres"
	"github.com/JakeFAU/survivor-stats/internal/store/sqlite"
	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

// App holds the services built from one Config. It is created once per
// command and closed when the command finishes.
type App struct {
	cfg         config.Config
	logger      *zap.Logger
	catalog     catalog.Catalog
	repo        survivor.Repository
	blobs       survivor.BlobStore
	publisher   survivor.Publisher
	pageFetcher survivor.Fetcher
	castFetcher survivor.Fetcher
	ids         survivor.IDGenerator
	clock       survivor.Clock
	closers     []func() error
}

// GetConfig returns the configuration the App was built from.
func (a *App) GetConfig() config.Config { return a.cfg }

// GetLogger returns the shared logger.
func (a *App) GetLogger() *zap.Logger { return a.logger }

// GetCatalog returns the season catalog.
func (a *App) GetCatalog() catalog.Catalog { return a.catalog }

// GetRepository returns the table store selected by db.driver.
func (a *App) GetRepository() survivor.Repository { return a.repo }

// GetBlobStore returns the artifact store selected by storage.provider.
func (a *App) GetBlobStore() survivor.BlobStore { return a.blobs }

// GetPublisher returns the event publisher, or nil when no topic is set.
func (a *App) GetPublisher() survivor.Publisher { return a.publisher }

// GetIDs returns the run id generator.
func (a *App) GetIDs() survivor.IDGenerator { return a.ids }

// GetClock returns the wall clock.
func (a *App) GetClock() survivor.Clock { return a.clock }

// GetPageFetcher returns the snapshotting fetcher for Wikipedia pages.
func (a *App) GetPageFetcher() survivor.Fetcher { return a.pageFetcher }

// GetCastFetcher returns the snapshotting fetcher for CBS pages.
func (a *App) GetCastFetcher() survivor.Fetcher { return a.castFetcher }

// New builds every service named by cfg. It fails fast: anything built
// before the failing service is closed again.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		cfg:    cfg,
		logger: logger,
		ids:    uuid.New(),
		clock:  system.New(),
	}
	if err := a.init(ctx); err != nil {
		a.Close()
		return nil, err
	}
	logger.Info("application services initialized",
		zap.String("db_driver", cfg.DB.Driver),
		zap.String("storage", cfg.Storage.Provider),
		zap.Int("seasons", len(a.catalog.Seasons)),
		zap.Bool("publisher", a.publisher != nil))
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	var err error
	if a.catalog, err = loadCatalog(a.cfg.Scrape); err != nil {
		return err
	}
	if a.blobs, err = a.newBlobStore(ctx); err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	if a.repo, err = a.newRepository(ctx); err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	if a.publisher, err = a.newPublisher(ctx); err != nil {
		return fmt.Errorf("init pubsub: %w", err)
	}
	return a.initFetchers()
}

func loadCatalog(cfg config.ScrapeConfig) (catalog.Catalog, error) {
	var (
		c   catalog.Catalog
		err error
	)
	if cfg.CatalogPath != "" {
		c, err = catalog.Load(cfg.CatalogPath)
	} else {
		c, err = catalog.Default()
	}
	if err != nil {
		return catalog.Catalog{}, fmt.Errorf("load catalog: %w", err)
	}
	if c, err = c.Rebase(cfg.WikiBaseURL); err != nil {
		return catalog.Catalog{}, fmt.Errorf("rebase catalog: %w", err)
	}
	return c, nil
}

func (a *App) newBlobStore(ctx context.Context) (survivor.BlobStore, error) {
	sc := a.cfg.Storage
	switch sc.Provider {
	case config.ProviderLocal:
		return localstore.New(localstore.Config{BaseDir: sc.BaseDir})
	case config.ProviderMemory:
		return memorystore.NewBlobStore(), nil
	case config.ProviderGCS:
		client, err := gcs.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("gcs client: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		return gcsstore.New(client, gcsstore.Config{Bucket: sc.GCSBucket, Prefix: sc.Prefix})
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", sc.Provider)
	}
}

func (a *App) newRepository(ctx context.Context) (survivor.Repository, error) {
	dc := a.cfg.DB
	var (
		repo survivor.Repository
		err  error
	)
	switch dc.Driver {
	case config.DriverPostgres:
		repo, err = postgres.New(ctx, postgres.Config{DSN: dc.DSN, MaxConns: dc.MaxConns}, a.logger)
	case config.DriverSQLite:
		repo, err = sqlite.Open(ctx, dc.DSN, a.logger)
	case config.DriverNone:
		repo = memoryrepo.New()
	default:
		return nil, fmt.Errorf("unknown database driver: %s", dc.Driver)
	}
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, repo.Close)
	return repo, nil
}

func (a *App) newPublisher(ctx context.Context) (survivor.Publisher, error) {
	pc := a.cfg.PubSub
	if pc.TopicName == "" {
		return nil, nil
	}
	if pc.ProjectID == "" {
		return nil, errors.New("pubsub.project_id is not set")
	}
	client, err := pubsub.NewClient(ctx, pc.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("pubsub client: %w", err)
	}
	pub := pubsubpublisher.New(client.Topic(pc.TopicName))
	a.closers = append(a.closers, func() error {
		pub.Stop()
		return client.Close()
	})
	return pub, nil
}

func (a *App) initFetchers() error {
	limiter := ratelimit.New(ratelimit.Config{
		DefaultRPS:   a.cfg.HTTP.RequestsPerSecond,
		DefaultBurst: a.cfg.HTTP.Burst,
	})
	var static survivor.Fetcher = collyfetcher.New(collyfetcher.Config{
		UserAgent: a.cfg.HTTP.UserAgent,
		Timeout:   a.cfg.FetchTimeout(),
	}, limiter)

	var rendered survivor.Fetcher
	if a.cfg.Headless.Enabled || a.cfg.Cast.Headless {
		hf, err := headlessfetcher.NewChromedp(headlessfetcher.Config{
			UserAgent:         a.cfg.HTTP.UserAgent,
			NavigationTimeout: a.cfg.NavTimeout(),
		}, limiter)
		if err != nil {
			return fmt.Errorf("init headless fetcher: %w", err)
		}
		a.closers = append(a.closers, func() error {
			hf.Close()
			return nil
		})
		rendered = hf
	}

	page, cast := static, static
	if a.cfg.Headless.Enabled {
		page = rendered
	}
	if a.cfg.Cast.Headless {
		cast = rendered
	}
	hasher := sha256.New()
	prefix := a.cfg.Scrape.SnapshotPrefix
	a.pageFetcher = pipeline.NewSnapshotFetcher(page, a.blobs, hasher, prefix, a.logger)
	a.castFetcher = pipeline.NewSnapshotFetcher(cast, a.blobs, hasher, prefix, a.logger)
	return nil
}

// Close shuts services down in reverse order of creation and flushes the
// logger. Errors are logged.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("error closing service", zap.Error(err))
		}
	}
	a.closers = nil
	// Sync fails on terminals; there is nothing useful to do with it.
	_ = a.logger.Sync()
}
