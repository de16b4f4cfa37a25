// Package marketdata fetches daily sector ETF prices and forward P/E ratios
// from a Yahoo-compatible chart/quote API.
package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/wrenlab/sectorscope/internal/contracts"
	"github.com/wrenlab/sectorscope/pkg/config"
	"github.com/wrenlab/sectorscope/pkg/httputil"
	"github.com/wrenlab/sectorscope/pkg/logger"
)

const (
	chartRange    = "5y"
	chartInterval = "1d"
)

// Client is the shared transport for the price and valuation sources. Both
// hit the same provider and share one rate limiter.
type Client struct {
	http      *httputil.Client
	baseURL   string
	benchmark string
	log       *logger.Logger
}

// NewClient creates the market data transport.
func NewClient(cfg config.MarketDataConfig, log *logger.Logger) *Client {
	return &Client{
		http:      httputil.New(log, cfg.Timeout).WithRateLimit(cfg.RequestsPerSec),
		baseURL:   cfg.BaseURL,
		benchmark: cfg.Benchmark,
		log:       log.WithField("provider", "marketdata"),
	}
}

// Benchmark returns the benchmark ticker used for relative strength.
func (c *Client) Benchmark() string {
	return c.benchmark
}

// chartResponse mirrors the provider's v8 chart payload. Close and volume
// arrays may contain nulls on non-trading entries.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// fetchChart retrieves the daily price series for one ticker.
func (c *Client) fetchChart(ctx context.Context, ticker, rng string) (contracts.PriceSeries, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=%s",
		c.baseURL, url.PathEscape(ticker), rng, chartInterval)

	var resp chartResponse
	if err := c.http.GetJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("chart %s: %w", ticker, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("chart %s: %s: %s", ticker, resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("chart %s: empty result", ticker)
	}

	result := resp.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	series := make(contracts.PriceSeries, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		p := contracts.PricePoint{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *quote.Close[i],
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			p.Volume = *quote.Volume[i]
		}
		series = append(series, p)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("chart %s: no usable bars", ticker)
	}
	return series, nil
}

// quoteResponse mirrors the provider's v7 quote payload.
type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol    string   `json:"symbol"`
			ForwardPE *float64 `json:"forwardPE"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

// fetchForwardPE retrieves forward P/E ratios for a batch of tickers.
// Tickers without a forward P/E are omitted from the result.
func (c *Client) fetchForwardPE(ctx context.Context, tickers []string) (map[string]float64, error) {
	q := url.Values{}
	q.Set("symbols", joinTickers(tickers))
	u := fmt.Sprintf("%s/v7/finance/quote?%s", c.baseURL, q.Encode())

	var resp quoteResponse
	if err := c.http.GetJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("quote: %w", err)
	}
	if resp.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("quote: %s: %s", resp.QuoteResponse.Error.Code, resp.QuoteResponse.Error.Description)
	}

	out := make(map[string]float64, len(resp.QuoteResponse.Result))
	for _, r := range resp.QuoteResponse.Result {
		if r.ForwardPE != nil && *r.ForwardPE > 0 {
			out[r.Symbol] = *r.ForwardPE
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("quote: no forward P/E values in response")
	}
	return out, nil
}

func joinTickers(tickers []string) string {
	s := ""
	for i, t := range tickers {
		if i > 0 {
			s += ","
		}
		s += t
	}
	return s
}
