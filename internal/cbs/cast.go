// Package cbs scrapes the cast listing of the CBS Survivor site and links
// cast members to scraped contestants.
package cbs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/JakeFAU/survivor-stats/internal/normalize"
	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

// host is the cast listing's own host; it is never a cast member.
const host = "Jeff Probst"

// ErrNoCastGrid is returned when a season page has no cast grid.
var ErrNoCastGrid = errors.New("cbs: cast grid not found")

// Scraper walks the per-season cast pages.
type Scraper struct {
	fetcher survivor.Fetcher
	castURL string
	baseURL string
	logger  *zap.Logger
}

// NewScraper builds a Scraper. castURL is the listing page
// (https://www.cbs.com/shows/survivor/cast/) and baseURL prefixes bio links.
func NewScraper(fetcher survivor.Fetcher, castURL, baseURL string, logger *zap.Logger) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !strings.HasSuffix(castURL, "/") {
		castURL += "/"
	}
	return &Scraper{
		fetcher: fetcher,
		castURL: castURL,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger.Named("cbs"),
	}
}

// SeasonCount reads the number of seasons from the season drop-down.
func (s *Scraper) SeasonCount(ctx context.Context) (int, error) {
	page, err := s.fetcher.Fetch(ctx, s.castURL)
	if err != nil {
		return 0, fmt.Errorf("fetch cast listing: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return 0, fmt.Errorf("parse cast listing: %w", err)
	}
	n := doc.Find("li.pv-h").First().Find("ul").First().Find("li").Length()
	if n == 0 {
		return 0, errors.New("cbs: season drop-down not found")
	}
	return n, nil
}

// Scrape returns the cast of every season. A season page that cannot be
// fetched or parsed is logged and skipped.
func (s *Scraper) Scrape(ctx context.Context) ([]survivor.CastMember, error) {
	n, err := s.SeasonCount(ctx)
	if err != nil {
		return nil, err
	}
	var out []survivor.CastMember
	for season := 1; season <= n; season++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		members, err := s.Season(ctx, season)
		if err != nil {
			s.logger.Warn("skipping cast season", zap.Int("season", season), zap.Error(err))
			continue
		}
		out = append(out, members...)
	}
	s.logger.Info("cast scraped", zap.Int("seasons", n), zap.Int("members", len(out)))
	return out, nil
}

// Season fetches and parses one season's cast page.
func (s *Scraper) Season(ctx context.Context, season int) ([]survivor.CastMember, error) {
	url := s.castURL + "season/" + strconv.Itoa(season) + "/"
	page, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch season %d cast: %w", season, err)
	}
	return ParseSeason(season, page.Body, s.baseURL)
}

// ParseSeason extracts cast members from a season cast page. Tiles naming
// two people ("Ciera & Laura", "Jon and Jaclyn") yield one member each.
func ParseSeason(season int, body []byte, baseURL string) ([]survivor.CastMember, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse season %d cast: %w", season, err)
	}
	grid := doc.Find("div.grid-view-container").First()
	if grid.Length() == 0 {
		return nil, fmt.Errorf("season %d: %w", season, ErrNoCastGrid)
	}

	var out []survivor.CastMember
	grid.Find("a").Each(func(_ int, a *goquery.Selection) {
		name := firstText(a.Find("div.title").First())
		if name == "" || strings.Contains(name, host) {
			return
		}
		href, _ := a.Attr("href")
		for _, n := range splitNames(name) {
			out = append(out, survivor.CastMember{
				Name:         n,
				SeasonNumber: season,
				BioURL:       baseURL + href,
			})
		}
	})
	return out, nil
}

func splitNames(name string) []string {
	var parts []string
	switch {
	case strings.Contains(name, " & "):
		parts = strings.Split(name, " & ")
	case strings.Contains(name, " and "):
		parts = strings.Split(name, " and ")
	default:
		return []string{name}
	}
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// firstText returns the normalized text of the first child node of s; the
// title div carries the name first, followed by decorations.
func firstText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	child := s.Nodes[0].FirstChild
	if child == nil {
		return ""
	}
	if child.Type == html.TextNode {
		return normalize.Text(child.Data)
	}
	return normalize.Text(goquery.NewDocumentFromNode(child).Text())
}
