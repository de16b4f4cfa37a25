package fredapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrenlab/sectorscope/internal/contracts"
	"github.com/wrenlab/sectorscope/pkg/cache"
	"github.com/wrenlab/sectorscope/pkg/config"
	"github.com/wrenlab/sectorscope/pkg/logger"
)

func newTestClient(t *testing.T, baseURL, apiKey string) *Client {
	t.Helper()
	cfg := config.FREDConfig{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		RateSeries: "DGS10",
		Timeout:    5 * time.Second,
	}
	c := New(cfg, cache.NewMemoryStore(), time.Hour, logger.Nop())
	c.http.DisableRetry()
	return c
}

func TestRateSeriesParsesObservations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/series/observations", r.URL.Path)
		assert.Equal(t, "DGS10", r.URL.Query().Get("series_id"))
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
		fmt.Fprint(w, `{"observations":[
			{"date":"2025-01-02","value":"4.57"},
			{"date":"2025-01-03","value":"."},
			{"date":"2025-01-06","value":"4.61"}
		]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "secret")

	series, status := c.RateSeries(context.Background(), false)
	require.Equal(t, contracts.StatusOK, status.Status)
	require.Len(t, series, 2, "missing-value markers must be skipped")
	assert.Equal(t, 4.57, series[0].Value)
	assert.Equal(t, 4.61, series[1].Value)
	assert.Equal(t, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), series[1].Date)
}

func TestRateSeriesWithoutKeyFails(t *testing.T) {
	c := newTestClient(t, "http://unused.invalid", "")

	series, status := c.RateSeries(context.Background(), false)
	assert.Equal(t, contracts.StatusError, status.Status)
	assert.Contains(t, status.Message, "FRED_API_KEY")
	assert.Nil(t, series)
}

func TestRateSeriesServesStaleOnFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls > 1 {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"observations":[{"date":"2025-01-02","value":"4.5"}]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "secret")
	ctx := context.Background()

	_, status := c.RateSeries(ctx, false)
	require.Equal(t, contracts.StatusOK, status.Status)

	series, status := c.RateSeries(ctx, true)
	assert.Equal(t, contracts.StatusWarning, status.Status)
	assert.Contains(t, status.Message, "stale")
	require.Len(t, series, 1)
	assert.Equal(t, 4.5, series[0].Value)
}

func TestProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		fmt.Fprint(w, `{"observations":[{"date":"2025-01-02","value":"4.5"}]}`)
	}))
	defer srv.Close()

	assert.Equal(t, contracts.StatusOK, newTestClient(t, srv.URL, "secret").Probe(context.Background()).Status)
	assert.Equal(t, contracts.StatusError, newTestClient(t, srv.URL, "").Probe(context.Background()).Status)
}
