package blsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrenlab/sectorscope/internal/contracts"
	"github.com/wrenlab/sectorscope/internal/sectors"
	"github.com/wrenlab/sectorscope/pkg/cache"
	"github.com/wrenlab/sectorscope/pkg/config"
	"github.com/wrenlab/sectorscope/pkg/logger"
)

func newTestClient(t *testing.T, baseURL, apiKey string) *Client {
	t.Helper()
	cfg := config.BLSConfig{
		APIKey:    apiKey,
		BaseURL:   baseURL,
		YearsBack: 5,
		Timeout:   5 * time.Second,
	}
	c := New(cfg, cache.NewMemoryStore(), time.Hour, logger.Nop())
	c.http.DisableRetry()
	return c
}

func seriesBody(seriesID string, points []map[string]string) string {
	body := map[string]interface{}{
		"status":  "REQUEST_SUCCEEDED",
		"message": []string{},
		"Results": map[string]interface{}{
			"series": []map[string]interface{}{
				{"seriesID": seriesID, "data": points},
			},
		},
	}
	b, _ := json.Marshal(body)
	return string(b)
}

func TestEmploymentParsesAndSortsSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/timeseries/data/", r.URL.Path)

		var req timeseriesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.SeriesID, sectors.Count())
		assert.Equal(t, "key123", req.RegistrationKey)

		// Newest-first with an annual-average row mixed in.
		fmt.Fprint(w, seriesBody(sectors.BLSSeries(sectors.Industrials), []map[string]string{
			{"year": "2025", "period": "M06", "value": "12900.0"},
			{"year": "2025", "period": "M13", "value": "12850.0"},
			{"year": "2025", "period": "M05", "value": "12870.5"},
		}))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "key123")

	emp, status := c.Employment(context.Background(), false)
	require.Equal(t, contracts.StatusOK, status.Status)
	require.Len(t, emp, 1)

	series := emp[sectors.Industrials]
	require.Len(t, series, 2, "annual-average rows must be dropped")
	assert.True(t, series[0].Date.Before(series[1].Date), "series must be ascending")
	assert.Equal(t, 12870.5, series[0].Value)
	assert.Equal(t, time.Month(5), series[0].Date.Month())
}

func TestEmploymentWithoutKeyWarns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req timeseriesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Empty(t, req.RegistrationKey)
		fmt.Fprint(w, seriesBody(sectors.BLSSeries(sectors.Financials), []map[string]string{
			{"year": "2025", "period": "M01", "value": "9000"},
		}))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "")

	emp, status := c.Employment(context.Background(), false)
	assert.Equal(t, contracts.StatusWarning, status.Status)
	assert.Contains(t, status.Message, "BLS_API_KEY")
	assert.Len(t, emp, 1)
}

func TestEmploymentRequestFailedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"REQUEST_NOT_PROCESSED","message":["daily threshold exceeded"],"Results":{}}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "key")

	emp, status := c.Employment(context.Background(), false)
	assert.Equal(t, contracts.StatusError, status.Status)
	assert.Contains(t, status.Message, "daily threshold exceeded")
	assert.Nil(t, emp)
}

func TestEmploymentServesStaleOnFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls > 1 {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, seriesBody(sectors.BLSSeries(sectors.Energy), []map[string]string{
			{"year": "2025", "period": "M02", "value": "600"},
		}))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "key")
	ctx := context.Background()

	_, status := c.Employment(ctx, false)
	require.Equal(t, contracts.StatusOK, status.Status)

	emp, status := c.Employment(ctx, true)
	assert.Equal(t, contracts.StatusWarning, status.Status)
	assert.Contains(t, status.Message, "stale")
	assert.Len(t, emp, 1)
}

func TestMonthStart(t *testing.T) {
	d, ok := monthStart("2024", "M11")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC), d)

	_, ok = monthStart("2024", "M13")
	assert.False(t, ok)
	_, ok = monthStart("2024", "Q01")
	assert.False(t, ok)
	_, ok = monthStart("bad", "M01")
	assert.False(t, ok)
}
