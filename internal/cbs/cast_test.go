package cbs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

const listingPage = `<html><body><nav><ul>
<li class="pv-h"><a>Season</a><ul><li>1</li><li>2</li><li>3</li></ul></li>
</ul></nav></body></html>`

func seasonPage(tiles string) string {
	return `<html><body><div class="grid-view-container">` + tiles + `</div></body></html>`
}

func tile(href, title string) string {
	return fmt.Sprintf(`<a href="%s"><img src="p.jpg"/><div class="title">%s<span class="role">Contestant</span></div></a>`, href, title)
}

type mapFetcher struct {
	pages map[string]string
	calls []string
}

func (f *mapFetcher) Fetch(_ context.Context, url string) (survivor.Page, error) {
	f.calls = append(f.calls, url)
	body, ok := f.pages[url]
	if !ok {
		return survivor.Page{}, errors.New("not found: " + url)
	}
	return survivor.Page{URL: url, StatusCode: 200, Body: []byte(body)}, nil
}

func TestParseSeason(t *testing.T) {
	t.Parallel()

	body := seasonPage(
		tile("/shows/survivor/cast/1/", "Jeff Probst") +
			tile("/shows/survivor/cast/2/", " Ciera Eastin &amp; Laura Morett ") +
			tile("/shows/survivor/cast/3/", "Jon Misch and Jaclyn Schultz") +
			tile("/shows/survivor/cast/4/", "Tyson Apostol"))

	cast, err := ParseSeason(27, []byte(body), "https://www.cbs.com")
	require.NoError(t, err)
	assert.Equal(t, []survivor.CastMember{
		{Name: "Ciera Eastin", SeasonNumber: 27, BioURL: "https://www.cbs.com/shows/survivor/cast/2/"},
		{Name: "Laura Morett", SeasonNumber: 27, BioURL: "https://www.cbs.com/shows/survivor/cast/2/"},
		{Name: "Jon Misch", SeasonNumber: 27, BioURL: "https://www.cbs.com/shows/survivor/cast/3/"},
		{Name: "Jaclyn Schultz", SeasonNumber: 27, BioURL: "https://www.cbs.com/shows/survivor/cast/3/"},
		{Name: "Tyson Apostol", SeasonNumber: 27, BioURL: "https://www.cbs.com/shows/survivor/cast/4/"},
	}, cast)
}

func TestParseSeasonWithoutGrid(t *testing.T) {
	t.Parallel()

	_, err := ParseSeason(3, []byte("<html><body><p>maintenance</p></body></html>"), "")
	assert.ErrorIs(t, err, ErrNoCastGrid)
}

func TestScrape(t *testing.T) {
	t.Parallel()

	const castURL = "https://www.cbs.com/shows/survivor/cast"
	fetcher := &mapFetcher{pages: map[string]string{
		castURL + "/":            listingPage,
		castURL + "/season/1/":   seasonPage(tile("/a/", "Richard")),
		castURL + "/season/3/":   seasonPage(tile("/c/", "Ethan")),
		"https://unused.example": "",
	}}
	s := NewScraper(fetcher, castURL, "https://www.cbs.com/", nil)

	n, err := s.SeasonCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	cast, err := s.Scrape(context.Background())
	require.NoError(t, err)
	require.Len(t, cast, 2, "season 2 fails to fetch and is skipped")
	assert.Equal(t, "Richard", cast[0].Name)
	assert.Equal(t, "https://www.cbs.com/a/", cast[0].BioURL)
	assert.Equal(t, 3, cast[1].SeasonNumber)
	assert.Contains(t, fetcher.calls, castURL+"/season/2/")
}

func TestScrapeListingErrors(t *testing.T) {
	t.Parallel()

	s := NewScraper(&mapFetcher{}, "https://www.cbs.com/shows/survivor/cast/", "", nil)
	_, err := s.Scrape(context.Background())
	assert.ErrorContains(t, err, "fetch cast listing")

	s = NewScraper(&mapFetcher{pages: map[string]string{"https://x/": "<html></html>"}}, "https://x/", "", nil)
	_, err = s.SeasonCount(context.Background())
	assert.ErrorContains(t, err, "drop-down")
}

func TestScrapeCanceled(t *testing.T) {
	t.Parallel()

	fetcher := &mapFetcher{pages: map[string]string{"https://x/": listingPage}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewScraper(fetcher, "https://x/", "", nil).Scrape(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := WriteCSV(&buf, []survivor.CastMember{
		{Name: "Rob Mariano", SeasonNumber: 8, BioURL: "https://www.cbs.com/b/"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Name,Season Number,Link to Bio\nRob Mariano,8,https://www.cbs.com/b/\n", buf.String())
}
