// Package wiki scrapes a Survivor season's Wikipedia page into contestant,
// episode and season summary records.
package wiki

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/survivor-stats/internal/catalog"
	"github.com/JakeFAU/survivor-stats/internal/metrics"
	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

// ErrTableMissing is returned when the catalog points at a table the page
// does not have.
var ErrTableMissing = errors.New("wiki: table missing")

// Scraper turns season pages into survivor records.
type Scraper struct {
	fetcher survivor.Fetcher
	logger  *zap.Logger
}

// NewScraper builds a Scraper that fetches pages through fetcher.
func NewScraper(fetcher survivor.Fetcher, logger *zap.Logger) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{fetcher: fetcher, logger: logger.Named("wiki")}
}

// Scrape fetches and parses one season.
func (s *Scraper) Scrape(ctx context.Context, season catalog.Season) (survivor.SeasonResult, error) {
	if s.fetcher == nil {
		return survivor.SeasonResult{}, errors.New("wiki: no fetcher configured")
	}
	page, err := s.fetcher.Fetch(ctx, season.URL)
	if err != nil {
		return survivor.SeasonResult{}, fmt.Errorf("fetch season %d: %w", season.Number, err)
	}
	return s.Parse(season, page.Body)
}

// Parse extracts the season's tables from a page body.
func (s *Scraper) Parse(season catalog.Season, body []byte) (survivor.SeasonResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return survivor.SeasonResult{}, fmt.Errorf("parse season %d page: %w", season.Number, err)
	}
	p := &seasonParser{
		season: season,
		tables: doc.Find("table"),
		logger: s.logger.With(zap.Int("season", season.Number)),
		stats: survivor.SeasonStats{
			Name:   season.Name,
			Number: season.Number,
		},
	}
	return p.run()
}

type seasonParser struct {
	season catalog.Season
	tables *goquery.Selection
	logger *zap.Logger
	stats  survivor.SeasonStats
}

// step runs one table parser and records its outcome.
func (p *seasonParser) step(table string, fn func() error) error {
	if err := fn(); err != nil {
		metrics.ObserveTable(table, "error")
		return fmt.Errorf("season %d %s table: %w", p.season.Number, table, err)
	}
	metrics.ObserveTable(table, "ok")
	return nil
}

func (p *seasonParser) table(idx int) (*goquery.Selection, error) {
	if idx < 0 || idx >= p.tables.Length() {
		return nil, fmt.Errorf("%w: index %d of %d", ErrTableMissing, idx, p.tables.Length())
	}
	return p.tables.Eq(idx), nil
}

func (p *seasonParser) run() (survivor.SeasonResult, error) {
	var (
		infos       []survivor.EpisodeInfo
		summary     []survivor.SummaryRow
		votes       voting
		contestants []survivor.Contestant
	)
	// The summary sets the twist flags that shape the contestant table, so
	// the order of these steps matters.
	steps := []struct {
		table string
		fn    func() error
	}{
		{"episodes", func() (err error) { infos, err = p.episodes(); return err }},
		{"summary", func() (err error) { summary, err = p.summary(); return err }},
		{"votes", func() (err error) { votes, err = p.votes(); return err }},
		{"contestants", func() (err error) { contestants, err = p.contestants(votes); return err }},
		{"jury", func() error { return p.jury(contestants) }},
	}
	for _, st := range steps {
		if err := p.step(st.table, st.fn); err != nil {
			return survivor.SeasonResult{}, err
		}
	}
	if err := p.summarize(contestants); err != nil {
		return survivor.SeasonResult{}, err
	}
	episodes := joinEpisodes(p.season.Number, infos, votes.tribals, summary)
	p.logger.Debug("season parsed",
		zap.Int("contestants", len(contestants)),
		zap.Int("episodes", len(episodes)),
		zap.String("winner", p.stats.Winner),
	)
	return survivor.SeasonResult{
		Stats:       p.stats,
		Contestants: contestants,
		Episodes:    episodes,
	}, nil
}
