// Package blsapi fetches monthly sector employment series from the BLS
// public timeseries API. The registration key is optional; unauthenticated
// requests work under stricter rate and volume limits.
package blsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wrenlab/sectorscope/internal/contracts"
	"github.com/wrenlab/sectorscope/internal/sectors"
	"github.com/wrenlab/sectorscope/internal/sources"
	"github.com/wrenlab/sectorscope/pkg/cache"
	"github.com/wrenlab/sectorscope/pkg/config"
	"github.com/wrenlab/sectorscope/pkg/httputil"
	"github.com/wrenlab/sectorscope/pkg/logger"
)

// Source names the employment source in statuses and cache keys.
const Source = "employment"

// Client supplies monthly employment series per sector.
type Client struct {
	http      *httputil.Client
	fetcher   *sources.Fetcher
	apiKey    string
	baseURL   string
	yearsBack int
	log       *logger.Logger
}

// New creates the BLS client.
func New(cfg config.BLSConfig, store cache.Store, ttl time.Duration, log *logger.Logger) *Client {
	return &Client{
		http:      httputil.New(log, cfg.Timeout).WithRateLimit(cfg.RequestsPerSec),
		fetcher:   sources.NewFetcher(Source, store, ttl, log),
		apiKey:    cfg.APIKey,
		baseURL:   cfg.BaseURL,
		yearsBack: cfg.YearsBack,
		log:       log.WithField("source", Source),
	}
}

// Name implements contracts.StatusProber.
func (c *Client) Name() string {
	return Source
}

// timeseriesRequest is the POST body of the v2 timeseries endpoint.
type timeseriesRequest struct {
	SeriesID        []string `json:"seriesid"`
	StartYear       string   `json:"startyear"`
	EndYear         string   `json:"endyear"`
	RegistrationKey string   `json:"registrationkey,omitempty"`
}

// timeseriesResponse mirrors the v2 timeseries payload. Data points arrive
// newest-first; period M13 is the annual average and is skipped.
type timeseriesResponse struct {
	Status  string   `json:"status"`
	Message []string `json:"message"`
	Results struct {
		Series []struct {
			SeriesID string `json:"seriesID"`
			Data     []struct {
				Year   string `json:"year"`
				Period string `json:"period"`
				Value  string `json:"value"`
			} `json:"data"`
		} `json:"series"`
	} `json:"Results"`
}

// Employment implements contracts.EmploymentSource.
func (c *Client) Employment(ctx context.Context, refresh bool) (map[contracts.Sector]contracts.Series, contracts.SourceStatus) {
	endYear := time.Now().UTC().Year()
	startYear := endYear - c.yearsBack

	key := cache.Key(Source, map[string]string{
		"start": strconv.Itoa(startYear),
		"end":   strconv.Itoa(endYear),
	})

	payload, status := sources.Fetch(ctx, c.fetcher, key, refresh, func(ctx context.Context) (map[contracts.Sector]contracts.Series, error) {
		return c.fetch(ctx, startYear, endYear)
	})
	if status.Status == contracts.StatusError {
		return nil, status
	}

	// Fresh unauthenticated fetches are flagged: the public tier enforces
	// strict daily quotas and may start rejecting requests.
	if status.Status == contracts.StatusOK && c.apiKey == "" {
		status = sources.Warning(Source, "no BLS_API_KEY configured, using public rate limits")
	}

	return payload, status
}

func (c *Client) fetch(ctx context.Context, startYear, endYear int) (map[contracts.Sector]contracts.Series, error) {
	seriesIDs := make([]string, 0, sectors.Count())
	for _, s := range sectors.All() {
		seriesIDs = append(seriesIDs, sectors.BLSSeries(s))
	}

	resp, err := c.postTimeseries(ctx, timeseriesRequest{
		SeriesID:        seriesIDs,
		StartYear:       strconv.Itoa(startYear),
		EndYear:         strconv.Itoa(endYear),
		RegistrationKey: c.apiKey,
	})
	if err != nil {
		return nil, err
	}

	out := make(map[contracts.Sector]contracts.Series, sectors.Count())
	for _, series := range resp.Results.Series {
		sector, ok := sectors.SectorForBLSSeries(series.SeriesID)
		if !ok {
			continue
		}

		obs := make(contracts.Series, 0, len(series.Data))
		for _, d := range series.Data {
			date, ok := monthStart(d.Year, d.Period)
			if !ok {
				continue
			}
			v, err := strconv.ParseFloat(d.Value, 64)
			if err != nil {
				continue
			}
			obs = append(obs, contracts.Observation{Date: date, Value: v})
		}
		if len(obs) == 0 {
			c.log.WithField("series", series.SeriesID).Warn("employment series had no usable data")
			continue
		}

		// API order is newest-first.
		sort.Slice(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })
		out[sector] = obs
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no employment series returned")
	}
	return out, nil
}

func (c *Client) postTimeseries(ctx context.Context, req timeseriesRequest) (*timeseriesResponse, error) {
	resp, err := c.http.PostJSON(ctx, c.baseURL+"/timeseries/data/", req)
	if err != nil {
		return nil, fmt.Errorf("timeseries: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("timeseries: unexpected status code: %d", resp.StatusCode)
	}

	var parsed timeseriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("timeseries: decode: %w", err)
	}
	if parsed.Status != "REQUEST_SUCCEEDED" {
		return nil, fmt.Errorf("timeseries: %s: %s", parsed.Status, strings.Join(parsed.Message, "; "))
	}
	return &parsed, nil
}

// monthStart converts a BLS year + period pair into the first day of the
// month. Non-monthly periods (M13 annual average, quarters) are rejected.
func monthStart(year, period string) (time.Time, bool) {
	if len(period) != 3 || period[0] != 'M' {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(period[1:])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, false
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(month), 1, 0, 0, 0, 0, time.UTC), true
}

// Probe implements contracts.StatusProber with a single-series request for
// the current year.
func (c *Client) Probe(ctx context.Context) contracts.SourceStatus {
	year := strconv.Itoa(time.Now().UTC().Year())
	resp, err := c.postTimeseries(ctx, timeseriesRequest{
		SeriesID:        []string{sectors.BLSSeries(sectors.Industrials)},
		StartYear:       year,
		EndYear:         year,
		RegistrationKey: c.apiKey,
	})
	if err != nil {
		return sources.Error(Source, err.Error())
	}
	if len(resp.Results.Series) == 0 {
		return sources.Error(Source, "probe returned no series")
	}
	if c.apiKey == "" {
		return sources.Warning(Source, "no BLS_API_KEY configured, using public rate limits")
	}
	return sources.OK(Source)
}

var _ contracts.EmploymentSource = (*Client)(nil)
