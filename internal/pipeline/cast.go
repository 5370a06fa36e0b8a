package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/survivor-stats/internal/cbs"
	"github.com/JakeFAU/survivor-stats/internal/logging"
	"github.com/JakeFAU/survivor-stats/internal/metrics"
	"github.com/JakeFAU/survivor-stats/internal/store"
	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

// EventCastScraped is published after a cast scrape.
const EventCastScraped = "cast.scraped"

// CastScraper lists every season's cast.
type CastScraper interface {
	Scrape(ctx context.Context) ([]survivor.CastMember, error)
}

// CastOptions tune a CastPipeline.
type CastOptions struct {
	// MatchThreshold is the minimum Jaro-Winkler similarity for linking a
	// cast member to a contestant.
	MatchThreshold float64
	// OutputName is the CSV artifact name.
	OutputName string
	BestEffort bool
}

// CastReport is the outcome of CastPipeline.Run.
type CastReport struct {
	RunID       string                `json:"run_id"`
	Members     int                   `json:"members"`
	Linked      int                   `json:"linked"`
	Artifact    string                `json:"artifact,omitempty"`
	CompletedAt time.Time             `json:"completed_at"`
	Cast        []survivor.CastMember `json:"-"`
}

// CastPipeline scrapes the CBS cast listing, links it to the stored
// contestants and saves it.
type CastPipeline struct {
	scraper CastScraper
	deps    Deps
	opts    CastOptions
}

// NewCastPipeline returns a CastPipeline. deps.Scraper is unused.
func NewCastPipeline(scraper CastScraper, deps Deps, opts CastOptions) (*CastPipeline, error) {
	switch {
	case scraper == nil:
		return nil, errors.New("pipeline: cast scraper is required")
	case deps.Repo == nil:
		return nil, errors.New("pipeline: repository is required")
	case deps.IDs == nil || deps.Clock == nil:
		return nil, errors.New("pipeline: id generator and clock are required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if opts.OutputName == "" {
		opts.OutputName = cbs.CSVName
	}
	return &CastPipeline{scraper: scraper, deps: deps, opts: opts}, nil
}

// Run scrapes, links, saves and exports the cast. Linking is skipped when no
// contestants have been stored yet.
func (p *CastPipeline) Run(ctx context.Context) (CastReport, error) {
	runID, err := p.deps.IDs.NewID()
	if err != nil {
		return CastReport{}, fmt.Errorf("new run id: %w", err)
	}
	ctx = WithRunID(ctx, runID)
	log := logging.ForRun(p.deps.Logger, "cast", runID)

	cast, err := p.scraper.Scrape(ctx)
	if err != nil {
		return CastReport{}, fmt.Errorf("scrape cast: %w", err)
	}
	contestants, err := p.deps.Repo.Contestants(ctx, survivor.ContestantFilter{})
	switch {
	case errors.Is(err, store.ErrNotFound):
		log.Warn("no contestants stored; cast is saved unlinked")
	case err != nil:
		return CastReport{}, fmt.Errorf("load contestants: %w", err)
	default:
		cast = cbs.Link(cast, contestants, p.opts.MatchThreshold)
	}

	report := CastReport{RunID: runID, Members: len(cast), Cast: cast}
	for _, m := range cast {
		if m.MatchedName != "" {
			report.Linked++
		}
	}

	if err := p.deps.Repo.SaveCast(ctx, cast); err != nil {
		if !p.opts.BestEffort {
			return report, fmt.Errorf("save cast: %w", err)
		}
		log.Error("table write failed", zap.Error(err))
	}
	if p.deps.Blobs != nil {
		var buf bytes.Buffer
		if err := cbs.WriteCSV(&buf, cast); err != nil {
			return report, err
		}
		uri, err := p.deps.Blobs.PutObject(ctx, p.opts.OutputName, "text/csv", &buf)
		if err != nil {
			log.Warn("cast export failed", zap.Error(err))
		} else {
			report.Artifact = uri
		}
	}
	report.CompletedAt = p.deps.Clock.Now()
	metrics.ObserveAnalysis("cast")
	if p.deps.Publisher != nil {
		if _, err := p.deps.Publisher.Publish(ctx, EventCastScraped, report); err != nil {
			log.Warn("publish cast event failed", zap.Error(err))
		}
	}
	log.Info("cast saved", zap.Int("members", report.Members), zap.Int("linked", report.Linked))
	return report, nil
}
