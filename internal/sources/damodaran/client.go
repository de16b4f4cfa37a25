// Package damodaran scrapes R&D-to-sales ratios per industry from the
// published Damodaran dataset page and aggregates them into GICS sectors.
package damodaran

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wrenlab/sectorscope/internal/contracts"
	"github.com/wrenlab/sectorscope/internal/sectors"
	"github.com/wrenlab/sectorscope/internal/sources"
	"github.com/wrenlab/sectorscope/pkg/cache"
	"github.com/wrenlab/sectorscope/pkg/config"
	"github.com/wrenlab/sectorscope/pkg/httputil"
	"github.com/wrenlab/sectorscope/pkg/logger"
)

// Source names the R&D-intensity source in statuses and cache keys.
const Source = "innovation"

// rdPath is the dataset page relative to the configured base URL.
const rdPath = "/New_Home_Page/datafile/R&D.html"

// Client supplies R&D/revenue values grouped by sector.
type Client struct {
	http    *httputil.Client
	fetcher *sources.Fetcher
	baseURL string
	log     *logger.Logger
}

// New creates the Damodaran client.
func New(cfg config.DamodaranConfig, store cache.Store, ttl time.Duration, log *logger.Logger) *Client {
	return &Client{
		http:    httputil.New(log, cfg.Timeout).WithRateLimit(cfg.RequestsPerSec),
		fetcher: sources.NewFetcher(Source, store, ttl, log),
		baseURL: cfg.BaseURL,
		log:     log.WithField("source", Source),
	}
}

// Name implements contracts.StatusProber.
func (c *Client) Name() string {
	return Source
}

// RDIntensity implements contracts.InnovationSource. Values are fractions
// of revenue (0.12 means 12% of sales spent on R&D); each sector carries
// the values of all industries mapped to it.
func (c *Client) RDIntensity(ctx context.Context, refresh bool) (map[contracts.Sector][]float64, contracts.SourceStatus) {
	key := cache.Key(Source, map[string]string{"dataset": "rd_sales"})

	payload, status := sources.Fetch(ctx, c.fetcher, key, refresh, c.fetch)
	if status.Status == contracts.StatusError {
		return nil, status
	}
	return payload, status
}

func (c *Client) fetch(ctx context.Context) (map[contracts.Sector][]float64, error) {
	resp, err := c.http.Get(ctx, c.baseURL+rdPath)
	if err != nil {
		return nil, fmt.Errorf("dataset page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("dataset page: unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("dataset page: parse: %w", err)
	}

	out := make(map[contracts.Sector][]float64)
	skipped := 0

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		industry := strings.TrimSpace(cells.First().Text())
		if industry == "" || strings.EqualFold(industry, "Industry Name") {
			return
		}

		sector, ok := sectors.RDSector(industry)
		if !ok {
			skipped++
			return
		}

		value, ok := parseRDColumn(cells)
		if !ok {
			return
		}
		out[sector] = append(out[sector], value)
	})

	if len(out) == 0 {
		return nil, fmt.Errorf("dataset page: no mappable industry rows")
	}
	c.log.WithFields(map[string]interface{}{
		"sectors": len(out),
		"skipped": skipped,
	}).Debug("R&D dataset parsed")
	return out, nil
}

// parseRDColumn scans a row right-to-left for the first parseable
// percentage. The R&D/Sales ratio is the trailing numeric column; earlier
// columns hold firm counts and aggregates that are not percentages.
func parseRDColumn(cells *goquery.Selection) (float64, bool) {
	for i := cells.Length() - 1; i >= 1; i-- {
		text := strings.TrimSpace(cells.Eq(i).Text())
		if !strings.HasSuffix(text, "%") {
			continue
		}
		if v, ok := parsePercent(text); ok {
			return v, true
		}
	}
	return 0, false
}

// parsePercent converts "12.34%" into the fraction 0.1234.
func parsePercent(text string) (float64, bool) {
	text = strings.TrimSuffix(strings.TrimSpace(text), "%")
	text = strings.ReplaceAll(text, ",", "")
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return v / 100, true
}

// Probe implements contracts.StatusProber by checking the page is served.
func (c *Client) Probe(ctx context.Context) contracts.SourceStatus {
	resp, err := c.http.Get(ctx, c.baseURL+rdPath)
	if err != nil {
		return sources.Error(Source, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return sources.Error(Source, fmt.Sprintf("unexpected status code: %d", resp.StatusCode))
	}
	return sources.OK(Source)
}

var _ contracts.InnovationSource = (*Client)(nil)
