package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeSite(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"standard http", "http://example.com/path", "example.com"},
		{"standard https", "https://En.Wikipedia.org/wiki/Survivor_41", "en.wikipedia.org"},
		{"no scheme", "example.com/path", "example.com"},
		{"just host", "example.com", "example.com"},
		{"host with port", "example.com:8080", "example.com"},
		{"ip address", "192.168.1.1", "192.168.1.1"},
		{"invalid url", "http://%", "unknown"},
		{"empty string", "", "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeSite(tc.input); got != tc.expected {
				t.Errorf("SanitizeSite(%q) = %q; want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestInitIsIdempotent(t *testing.T) {
	Init()
	first := pagesFetchedTotal
	Init()
	require.NotNil(t, first)
	assert.Same(t, first, pagesFetchedTotal)
}

func TestObservers(t *testing.T) {
	ObserveFetch("https://www.cbs.com/shows/survivor/cast/", 200, 512)
	assert.Equal(t, 1.0, testutil.ToFloat64(pagesFetchedTotal.WithLabelValues("www.cbs.com", "200")))
	assert.Equal(t, 512.0, testutil.ToFloat64(pageBytesTotal.WithLabelValues("www.cbs.com")))

	ObserveTable("jury", "error")
	ObserveTable("jury", "error")
	assert.Equal(t, 2.0, testutil.ToFloat64(tablesParsedTotal.WithLabelValues("jury", "error")))

	ObserveSeason("skipped")
	assert.Equal(t, 1.0, testutil.ToFloat64(seasonsTotal.WithLabelValues("skipped")))

	ObserveRows("overall.all_contestants", 18)
	ObserveRows("overall.all_contestants", 20)
	assert.Equal(t, 38.0, testutil.ToFloat64(rowsWrittenTotal.WithLabelValues("overall.all_contestants")))

	ObserveAnalysis("ages")
	assert.Equal(t, 1.0, testutil.ToFloat64(analysisRunsTotal.WithLabelValues("ages")))
}

func TestPush(t *testing.T) {
	Init()
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, Push(context.Background(), srv.URL, "survivor_scrape"))
	assert.True(t, strings.HasPrefix(gotPath, "/metrics/job/survivor_scrape"), gotPath)

	assert.NoError(t, Push(context.Background(), "", "ignored"))
}

func TestPushFailure(t *testing.T) {
	Init()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := Push(context.Background(), srv.URL, "survivor_scrape")
	assert.ErrorContains(t, err, "push metrics")
}

// Fuzz test for SanitizeSite.
func FuzzSanitizeSite(f *testing.F) {
	testcases := []string{"http://example.com", "https://en.wikipedia.org", "ftp://example.com"}
	for _, tc := range testcases {
		f.Add(tc)
	}
	f.Fuzz(func(t *testing.T, orig string) {
		sanitized := SanitizeSite(orig)
		if sanitized == "" {
			t.Errorf("SanitizeSite(%q) returned an empty string", orig)
		}
	})
}
