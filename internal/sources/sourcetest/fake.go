// Package sourcetest provides deterministic in-memory source fakes for
// tests of the scoring pipeline and the API layer.
package sourcetest

import (
	"context"
	"time"

	"github.com/wrenlab/sectorscope/internal/contracts"
)

// FakePrices is a canned PriceSource.
type FakePrices struct {
	Prices    map[contracts.Sector]contracts.PriceSeries
	Benchmark contracts.PriceSeries
	Status    contracts.SourceStatus
	Calls     int
}

func (f *FakePrices) Name() string { return f.Status.Source }

func (f *FakePrices) Probe(ctx context.Context) contracts.SourceStatus { return f.Status }

func (f *FakePrices) SectorPrices(ctx context.Context, refresh bool) (map[contracts.Sector]contracts.PriceSeries, contracts.PriceSeries, contracts.SourceStatus) {
	f.Calls++
	return f.Prices, f.Benchmark, f.Status
}

// FakeValuations is a canned ValuationSource.
type FakeValuations struct {
	PE     map[contracts.Sector]float64
	Status contracts.SourceStatus
}

func (f *FakeValuations) Name() string { return f.Status.Source }

func (f *FakeValuations) Probe(ctx context.Context) contracts.SourceStatus { return f.Status }

func (f *FakeValuations) ForwardPE(ctx context.Context, refresh bool) (map[contracts.Sector]float64, contracts.SourceStatus) {
	return f.PE, f.Status
}

// FakeEmployment is a canned EmploymentSource.
type FakeEmployment struct {
	Series map[contracts.Sector]contracts.Series
	Status contracts.SourceStatus
}

func (f *FakeEmployment) Name() string { return f.Status.Source }

func (f *FakeEmployment) Probe(ctx context.Context) contracts.SourceStatus { return f.Status }

func (f *FakeEmployment) Employment(ctx context.Context, refresh bool) (map[contracts.Sector]contracts.Series, contracts.SourceStatus) {
	return f.Series, f.Status
}

// FakeInnovation is a canned InnovationSource.
type FakeInnovation struct {
	RD     map[contracts.Sector][]float64
	Status contracts.SourceStatus
}

func (f *FakeInnovation) Name() string { return f.Status.Source }

func (f *FakeInnovation) Probe(ctx context.Context) contracts.SourceStatus { return f.Status }

func (f *FakeInnovation) RDIntensity(ctx context.Context, refresh bool) (map[contracts.Sector][]float64, contracts.SourceStatus) {
	return f.RD, f.Status
}

// FakeRates is a canned RateSource.
type FakeRates struct {
	Series contracts.Series
	Status contracts.SourceStatus
}

func (f *FakeRates) Name() string { return f.Status.Source }

func (f *FakeRates) Probe(ctx context.Context) contracts.SourceStatus { return f.Status }

func (f *FakeRates) RateSeries(ctx context.Context, refresh bool) (contracts.Series, contracts.SourceStatus) {
	return f.Series, f.Status
}

// OK builds a healthy status for a named fake.
func OK(name string) contracts.SourceStatus {
	return contracts.SourceStatus{Source: name, Status: contracts.StatusOK}
}

// Error builds a failed status for a named fake.
func Error(name, message string) contracts.SourceStatus {
	return contracts.SourceStatus{Source: name, Status: contracts.StatusError, Message: message}
}

// DailySeries builds an n-bar daily price series ending at end.
func DailySeries(end time.Time, n int, fn func(i int) (float64, float64)) contracts.PriceSeries {
	series := make(contracts.PriceSeries, n)
	for i := 0; i < n; i++ {
		c, v := fn(i)
		series[i] = contracts.PricePoint{
			Date:   end.AddDate(0, 0, -(n - 1 - i)),
			Close:  c,
			Volume: v,
		}
	}
	return series
}

// MonthlySeries builds an n-point monthly observation series ending at end.
func MonthlySeries(end time.Time, n int, fn func(i int) float64) contracts.Series {
	series := make(contracts.Series, n)
	for i := 0; i < n; i++ {
		series[i] = contracts.Observation{
			Date:  end.AddDate(0, -(n - 1 - i), 0),
			Value: fn(i),
		}
	}
	return series
}

var (
	_ contracts.PriceSource      = (*FakePrices)(nil)
	_ contracts.ValuationSource  = (*FakeValuations)(nil)
	_ contracts.EmploymentSource = (*FakeEmployment)(nil)
	_ contracts.InnovationSource = (*FakeInnovation)(nil)
	_ contracts.RateSource       = (*FakeRates)(nil)
)
