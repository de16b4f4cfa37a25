package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wrenlab/sectorscope/internal/contracts"
	"github.com/wrenlab/sectorscope/internal/sectors"
	"github.com/wrenlab/sectorscope/internal/sources"
	"github.com/wrenlab/sectorscope/pkg/cache"
	"github.com/wrenlab/sectorscope/pkg/logger"
)

// SourcePrices names the sector price source in statuses and cache keys.
const SourcePrices = "market_data"

// Prices supplies the daily close/volume series per sector ETF plus the
// benchmark series.
type Prices struct {
	client  *Client
	fetcher *sources.Fetcher
	log     *logger.Logger
}

// pricePayload is the cached unit: all sector series plus the benchmark
// fetched in one cycle. One entry, so partial refetches cannot mix cycles.
type pricePayload struct {
	Sectors   map[contracts.Sector]contracts.PriceSeries `json:"sectors"`
	Benchmark contracts.PriceSeries                      `json:"benchmark"`
}

// NewPrices creates the price source on top of the shared transport.
func NewPrices(client *Client, store cache.Store, ttl time.Duration, log *logger.Logger) *Prices {
	return &Prices{
		client:  client,
		fetcher: sources.NewFetcher(SourcePrices, store, ttl, log),
		log:     log.WithField("source", SourcePrices),
	}
}

// Name implements contracts.StatusProber.
func (p *Prices) Name() string {
	return SourcePrices
}

// SectorPrices implements contracts.PriceSource.
func (p *Prices) SectorPrices(ctx context.Context, refresh bool) (map[contracts.Sector]contracts.PriceSeries, contracts.PriceSeries, contracts.SourceStatus) {
	key := cache.Key(SourcePrices, map[string]string{
		"range":     chartRange,
		"benchmark": p.client.benchmark,
	})

	payload, status := sources.Fetch(ctx, p.fetcher, key, refresh, p.fetchAll)
	if status.Status == contracts.StatusError {
		return nil, nil, status
	}

	// Partial sector coverage is usable but worth surfacing.
	if status.Status == contracts.StatusOK && len(payload.Sectors) < sectors.Count() {
		status = sources.Warning(SourcePrices,
			fmt.Sprintf("price data for %d of %d sectors", len(payload.Sectors), sectors.Count()))
	}

	return payload.Sectors, payload.Benchmark, status
}

// fetchAll pulls the benchmark plus every sector ETF. A missing benchmark
// fails the whole fetch; individual sector failures are skipped.
func (p *Prices) fetchAll(ctx context.Context) (pricePayload, error) {
	out := pricePayload{Sectors: make(map[contracts.Sector]contracts.PriceSeries, sectors.Count())}

	bench, err := p.client.fetchChart(ctx, p.client.benchmark, chartRange)
	if err != nil {
		return out, fmt.Errorf("benchmark: %w", err)
	}
	out.Benchmark = bench

	for _, s := range sectors.All() {
		ticker := sectors.ETF(s)
		series, err := p.client.fetchChart(ctx, ticker, chartRange)
		if err != nil {
			p.log.WithError(err).WithField("ticker", ticker).Warn("sector price fetch failed")
			continue
		}
		out.Sectors[s] = series
	}

	if len(out.Sectors) == 0 {
		return out, errors.New("no sector price series fetched")
	}
	return out, nil
}

// Probe implements contracts.StatusProber with a minimal benchmark request.
func (p *Prices) Probe(ctx context.Context) contracts.SourceStatus {
	if _, err := p.client.fetchChart(ctx, p.client.benchmark, "5d"); err != nil {
		return sources.Error(SourcePrices, err.Error())
	}
	return sources.OK(SourcePrices)
}

var _ contracts.PriceSource = (*Prices)(nil)
