package headless

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingWaiter struct{ err error }

func (w failingWaiter) Wait(context.Context, string) error { return w.err }

func TestNewChromedpValidation(t *testing.T) {
	t.Parallel()

	_, err := NewChromedp(Config{NavigationTimeout: -time.Second}, nil)
	require.Error(t, err)

	fetcher, err := NewChromedp(Config{}, nil)
	require.NoError(t, err)
	fetcher.Close()
}

func TestFetcherDefaults(t *testing.T) {
	t.Parallel()

	fetcher := &Fetcher{}
	assert.Equal(t, 45*time.Second, fetcher.navTimeout())
	assert.Equal(t, "body", fetcher.waitSelector())

	fetcher.cfg = Config{NavigationTimeout: time.Second, WaitSelector: "div.grid-view-container"}
	assert.Equal(t, time.Second, fetcher.navTimeout())
	assert.Equal(t, "div.grid-view-container", fetcher.waitSelector())
}

func TestFetchRespectsLimiter(t *testing.T) {
	t.Parallel()

	boom := errors.New("limited")
	fetcher, err := NewChromedp(Config{}, failingWaiter{err: boom})
	require.NoError(t, err)
	defer fetcher.Close()

	_, err = fetcher.Fetch(context.Background(), "https://www.cbs.com/shows/survivor/cast/")
	assert.ErrorIs(t, err, boom)
}

func TestResponseMetaCaptureAndFallbacks(t *testing.T) {
	t.Parallel()

	meta := newResponseMeta()
	meta.captureEvent(&network.EventResponseReceived{
		Type: network.ResourceTypeImage,
		Response: &network.Response{
			Status: 500,
			URL:    "https://www.cbs.com/img.png",
		},
	})
	meta.captureEvent(&network.EventResponseReceived{
		Type: network.ResourceTypeDocument,
		Response: &network.Response{
			Status: 203,
			URL:    "https://www.cbs.com/shows/survivor/cast/season/3/",
		},
	})
	status, url := meta.snapshotWithFallbacks("https://req", "")
	assert.Equal(t, 203, status)
	assert.Equal(t, "https://www.cbs.com/shows/survivor/cast/season/3/", url)

	meta = newResponseMeta()
	status, url = meta.snapshotWithFallbacks("https://req", "https://final")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "https://final", url)

	status, url = newResponseMeta().snapshotWithFallbacks("https://req", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "https://req", url)
}
