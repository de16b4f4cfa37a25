// Package fredapi fetches interest-rate series from the FRED API. An API
// key is required; without one the source degrades to cached data only.
package fredapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/wrenlab/sectorscope/internal/contracts"
	"github.com/wrenlab/sectorscope/internal/sources"
	"github.com/wrenlab/sectorscope/pkg/cache"
	"github.com/wrenlab/sectorscope/pkg/config"
	"github.com/wrenlab/sectorscope/pkg/httputil"
	"github.com/wrenlab/sectorscope/pkg/logger"
)

// Source names the interest-rate source in statuses and cache keys.
const Source = "interest_rates"

// yearsBack bounds the observation window. Five years covers the two years
// of monthly changes the macro signal needs with room for gaps.
const yearsBack = 5

// Client supplies the benchmark long-term rate series.
type Client struct {
	http    *httputil.Client
	fetcher *sources.Fetcher
	apiKey  string
	baseURL string
	series  string
}

// New creates the FRED client.
func New(cfg config.FREDConfig, store cache.Store, ttl time.Duration, log *logger.Logger) *Client {
	return &Client{
		http:    httputil.New(log, cfg.Timeout).WithRateLimit(cfg.RequestsPerSec),
		fetcher: sources.NewFetcher(Source, store, ttl, log),
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		series:  cfg.RateSeries,
	}
}

// Name implements contracts.StatusProber.
func (c *Client) Name() string {
	return Source
}

// observationsResponse mirrors the FRED series/observations payload.
// Missing values are encoded as ".".
type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// RateSeries implements contracts.RateSource.
func (c *Client) RateSeries(ctx context.Context, refresh bool) (contracts.Series, contracts.SourceStatus) {
	key := cache.Key(Source, map[string]string{"series": c.series})

	series, status := sources.Fetch(ctx, c.fetcher, key, refresh, c.fetch)
	if status.Status == contracts.StatusError {
		return nil, status
	}
	return series, status
}

func (c *Client) fetch(ctx context.Context) (contracts.Series, error) {
	if c.apiKey == "" {
		return nil, errors.New("FRED_API_KEY not configured")
	}

	start := time.Now().UTC().AddDate(-yearsBack, 0, 0).Format("2006-01-02")

	q := url.Values{}
	q.Set("series_id", c.series)
	q.Set("api_key", c.apiKey)
	q.Set("file_type", "json")
	q.Set("observation_start", start)
	u := fmt.Sprintf("%s/series/observations?%s", c.baseURL, q.Encode())

	var resp observationsResponse
	if err := c.http.GetJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("observations %s: %w", c.series, err)
	}

	series := make(contracts.Series, 0, len(resp.Observations))
	for _, obs := range resp.Observations {
		if obs.Value == "." || obs.Value == "" {
			continue
		}
		var v float64
		if _, err := fmt.Sscanf(obs.Value, "%f", &v); err != nil {
			continue
		}
		d, err := time.Parse("2006-01-02", obs.Date)
		if err != nil {
			continue
		}
		series = append(series, contracts.Observation{Date: d, Value: v})
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("observations %s: no usable values", c.series)
	}
	return series, nil
}

// Probe implements contracts.StatusProber with a one-observation request.
func (c *Client) Probe(ctx context.Context) contracts.SourceStatus {
	if c.apiKey == "" {
		return sources.Error(Source, "FRED_API_KEY not configured")
	}

	q := url.Values{}
	q.Set("series_id", c.series)
	q.Set("api_key", c.apiKey)
	q.Set("file_type", "json")
	q.Set("limit", "1")
	q.Set("sort_order", "desc")
	u := fmt.Sprintf("%s/series/observations?%s", c.baseURL, q.Encode())

	var resp observationsResponse
	if err := c.http.GetJSON(ctx, u, &resp); err != nil {
		return sources.Error(Source, err.Error())
	}
	if len(resp.Observations) == 0 {
		return sources.Error(Source, fmt.Sprintf("series %s returned no observations", c.series))
	}
	return sources.OK(Source)
}

var _ contracts.RateSource = (*Client)(nil)
