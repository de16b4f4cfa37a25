package marketdata

import (
	"context"
	"time"

	"github.com/wrenlab/sectorscope/internal/contracts"
	"github.com/wrenlab/sectorscope/internal/sectors"
	"github.com/wrenlab/sectorscope/internal/sources"
	"github.com/wrenlab/sectorscope/pkg/cache"
	"github.com/wrenlab/sectorscope/pkg/logger"
)

// SourceValuation names the forward P/E source in statuses and cache keys.
const SourceValuation = "valuation"

// Valuations supplies forward P/E ratios per sector, proxied by the sector
// ETFs. Shares the transport and rate limiter with Prices.
type Valuations struct {
	client  *Client
	fetcher *sources.Fetcher
}

// NewValuations creates the valuation source on top of the shared transport.
func NewValuations(client *Client, store cache.Store, ttl time.Duration, log *logger.Logger) *Valuations {
	return &Valuations{
		client:  client,
		fetcher: sources.NewFetcher(SourceValuation, store, ttl, log),
	}
}

// Name implements contracts.StatusProber.
func (v *Valuations) Name() string {
	return SourceValuation
}

// ForwardPE implements contracts.ValuationSource.
func (v *Valuations) ForwardPE(ctx context.Context, refresh bool) (map[contracts.Sector]float64, contracts.SourceStatus) {
	tickers := sectorTickers()
	key := cache.Key(SourceValuation, map[string]string{"symbols": joinTickers(tickers)})

	payload, status := sources.Fetch(ctx, v.fetcher, key, refresh, func(ctx context.Context) (map[contracts.Sector]float64, error) {
		byTicker, err := v.client.fetchForwardPE(ctx, tickers)
		if err != nil {
			return nil, err
		}
		out := make(map[contracts.Sector]float64, len(byTicker))
		for ticker, pe := range byTicker {
			if s, ok := sectors.SectorForETF(ticker); ok {
				out[s] = pe
			}
		}
		return out, nil
	})
	if status.Status == contracts.StatusError {
		return nil, status
	}
	return payload, status
}

// Probe implements contracts.StatusProber with a single-ticker quote.
func (v *Valuations) Probe(ctx context.Context) contracts.SourceStatus {
	if _, err := v.client.fetchForwardPE(ctx, []string{sectors.ETF(sectors.InformationTechnology)}); err != nil {
		return sources.Error(SourceValuation, err.Error())
	}
	return sources.OK(SourceValuation)
}

func sectorTickers() []string {
	out := make([]string, 0, sectors.Count())
	for _, s := range sectors.All() {
		out = append(out, sectors.ETF(s))
	}
	return out
}

var _ contracts.ValuationSource = (*Valuations)(nil)
