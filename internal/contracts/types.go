package contracts

import (
	"context"
	"time"
)

// Sector identifies one of the eleven GICS sectors by display name.
// The enumeration lives in the sectors package.
type Sector string

// StatusLevel classifies the health of a data source.
type StatusLevel string

const (
	StatusOK      StatusLevel = "ok"
	StatusWarning StatusLevel = "warning"
	StatusError   StatusLevel = "error"
)

// severity orders status levels for worst-of aggregation.
func (s StatusLevel) severity() int {
	switch s {
	case StatusError:
		return 2
	case StatusWarning:
		return 1
	default:
		return 0
	}
}

// SourceStatus reports the health of one external data source. It is
// produced fresh on every fetch or quality probe and never cached long-term.
type SourceStatus struct {
	Source  string      `json:"name"`
	Status  StatusLevel `json:"status"`
	Message string      `json:"message,omitempty"`
}

// WorstStatus folds statuses into one overall level with precedence
// error > warning > ok. An empty list is ok.
func WorstStatus(statuses []SourceStatus) StatusLevel {
	worst := StatusOK
	for _, s := range statuses {
		if s.Status.severity() > worst.severity() {
			worst = s.Status
		}
	}
	return worst
}

// PricePoint is one daily bar of a sector ETF or the benchmark.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries is a daily price series in ascending date order.
type PriceSeries []PricePoint

// Observation is one dated value of an economic series.
type Observation struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series is an economic time series in ascending date order.
type Series []Observation

// Dataset bundles the raw data of one collection cycle. Values fetched from
// different sources carry independent timestamps; within one source the
// payload is atomic (one cache entry).
type Dataset struct {
	// Prices holds the daily close/volume series per sector ETF.
	Prices map[Sector]PriceSeries
	// Benchmark is the broad-market series used for relative strength.
	Benchmark PriceSeries
	// ForwardPE holds the forward price/earnings ratio per sector.
	ForwardPE map[Sector]float64
	// Employment holds the monthly sector employment series.
	Employment map[Sector]Series
	// RDIntensity holds R&D/revenue values of the industries mapped to
	// each sector.
	RDIntensity map[Sector][]float64
	// Rates is the benchmark long-term interest rate series (daily).
	Rates Series
	// Statuses carries one entry per source, in fetch order.
	Statuses []SourceStatus
	// FetchedAt marks the start of the collection cycle.
	FetchedAt time.Time
}

// Empty reports whether the cycle produced no usable data at all, i.e.
// every source failed with nothing cached. Scoring refuses to run on an
// empty dataset.
func (d *Dataset) Empty() bool {
	return len(d.Prices) == 0 &&
		len(d.ForwardPE) == 0 &&
		len(d.Employment) == 0 &&
		len(d.RDIntensity) == 0 &&
		len(d.Rates) == 0
}

// SectorScore is the complete scoring breakdown for one sector. It is value
// data: recomputed per scoring call, never mutated afterwards.
type SectorScore struct {
	Sector           Sector  `json:"sector"`
	OpportunityScore float64 `json:"opportunity_score"`
	Rank             int     `json:"rank"`

	// Component scores, 0-100.
	MomentumScore   float64 `json:"momentum_score"`
	ValuationScore  float64 `json:"valuation_score"`
	GrowthScore     float64 `json:"growth_score"`
	InnovationScore float64 `json:"innovation_score"`
	MacroScore      float64 `json:"macro_score"`

	// Raw underlying metrics for display. Nil means the source could not
	// supply the value.
	PriceReturn3Mo   *float64 `json:"price_return_3mo"`
	PriceReturn6Mo   *float64 `json:"price_return_6mo"`
	PriceReturn12Mo  *float64 `json:"price_return_12mo"`
	RelativeStrength *float64 `json:"relative_strength"`
	ForwardPE        *float64 `json:"forward_pe"`
	EmploymentGrowth *float64 `json:"employment_growth"`
	RDIntensity      *float64 `json:"rd_intensity"`
}

// IndicatorScore returns the component score for the given indicator.
func (s *SectorScore) IndicatorScore(ind Indicator) float64 {
	switch ind {
	case IndicatorMomentum:
		return s.MomentumScore
	case IndicatorValuation:
		return s.ValuationScore
	case IndicatorGrowth:
		return s.GrowthScore
	case IndicatorInnovation:
		return s.InnovationScore
	case IndicatorMacro:
		return s.MacroScore
	default:
		return 0
	}
}

// Source interfaces. Each external provider implements the typed fetch for
// its data plus the status-only probe used by the quality monitor. Fetches
// never return an error to the caller: failures surface as absent data and
// a degraded SourceStatus.

// PriceSource supplies sector price series and the benchmark series.
type PriceSource interface {
	StatusProber
	SectorPrices(ctx context.Context, refresh bool) (map[Sector]PriceSeries, PriceSeries, SourceStatus)
}

// ValuationSource supplies forward P/E ratios per sector.
type ValuationSource interface {
	StatusProber
	ForwardPE(ctx context.Context, refresh bool) (map[Sector]float64, SourceStatus)
}

// EmploymentSource supplies monthly employment series per sector.
type EmploymentSource interface {
	StatusProber
	Employment(ctx context.Context, refresh bool) (map[Sector]Series, SourceStatus)
}

// InnovationSource supplies R&D intensity values per sector.
type InnovationSource interface {
	StatusProber
	RDIntensity(ctx context.Context, refresh bool) (map[Sector][]float64, SourceStatus)
}

// RateSource supplies the benchmark interest-rate series.
type RateSource interface {
	StatusProber
	RateSeries(ctx context.Context, refresh bool) (Series, SourceStatus)
}

// StatusProber reports source health without forcing a data refresh.
type StatusProber interface {
	Name() string
	Probe(ctx context.Context) SourceStatus
}
