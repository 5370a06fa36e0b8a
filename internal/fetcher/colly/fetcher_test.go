package collyfetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

type countingWaiter struct {
	calls []string
	err   error
}

func (w *countingWaiter) Wait(_ context.Context, url string) error {
	w.calls = append(w.calls, url)
	return w.err
}

func TestFetchPage(t *testing.T) {
	t.Parallel()

	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><table></table></body></html>"))
	}))
	defer srv.Close()

	waiter := &countingWaiter{}
	f := New(Config{UserAgent: "survivor-stats-test", Timeout: 5 * time.Second}, waiter)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return fixed }

	page, err := f.Fetch(context.Background(), srv.URL+"/wiki/Survivor:_Borneo")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Contains(t, string(page.Body), "<table>")
	assert.Equal(t, fixed, page.FetchedAt)
	assert.Equal(t, "survivor-stats-test", gotUA)
	assert.Len(t, waiter.calls, 1)

	_, err = f.Fetch(context.Background(), srv.URL+"/missing")
	assert.ErrorContains(t, err, "status 404")
}

func TestFetchWaiterError(t *testing.T) {
	t.Parallel()

	boom := errors.New("slow down")
	f := New(Config{}, &countingWaiter{err: boom})
	_, err := f.Fetch(context.Background(), "http://127.0.0.1:1/")
	assert.ErrorIs(t, err, boom)
}

func TestBuildCollector(t *testing.T) {
	t.Parallel()

	f := New(Config{UserAgent: "coverage-agent", RespectRobots: true, Timeout: time.Second}, nil)
	collector := f.buildCollector(&survivor.Page{}, new(error))
	assert.Equal(t, "coverage-agent", collector.UserAgent)
	assert.False(t, collector.IgnoreRobotsTxt)

	collector = New(Config{}, nil).buildCollector(&survivor.Page{}, new(error))
	assert.True(t, collector.IgnoreRobotsTxt)
}

func TestConfigureCollectorHooks(t *testing.T) {
	t.Parallel()

	f := New(Config{}, nil)
	var page survivor.Page
	var fetchErr error

	hooks := &stubHooks{}
	f.configureCollectorHooks(hooks, &page, &fetchErr)
	require.NotNil(t, hooks.onResponse)
	require.NotNil(t, hooks.onError)

	hooks.onResponse(&colly.Response{
		StatusCode: http.StatusOK,
		Body:       []byte("body"),
		Request:    &colly.Request{URL: mustParseURL(t, "https://en.wikipedia.org/wiki/Survivor_41")},
	})
	assert.Equal(t, "https://en.wikipedia.org/wiki/Survivor_41", page.URL)
	assert.Equal(t, "body", string(page.Body))

	hooks.onError(&colly.Response{StatusCode: http.StatusServiceUnavailable}, errors.New("boom"))
	assert.ErrorContains(t, fetchErr, "status 503")
	assert.Equal(t, http.StatusServiceUnavailable, page.StatusCode)

	hooks.onError(nil, errors.New("dial"))
	assert.EqualError(t, fetchErr, "dial")
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

type stubHooks struct {
	onResponse colly.ResponseCallback
	onError    colly.ErrorCallback
}

func (s *stubHooks) OnResponse(cb colly.ResponseCallback) {
	s.onResponse = cb
}

func (s *stubHooks) OnError(cb colly.ErrorCallback) {
	s.onError = cb
}
