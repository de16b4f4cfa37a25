// Package signals turns raw provider data into per-sector indicator values
// and normalizes them onto a comparable 0-100 scale.
package signals

import (
	"math"
	"sort"
	"time"

	"github.com/wrenlab/sectorscope/internal/contracts"
)

const (
	// Volume trend windows (trading days).
	volShortWindow = 20
	volLongWindow  = 50

	// Momentum blend weights.
	momentumReturnWeight   = 0.50
	momentumRelativeWeight = 0.35
	momentumVolumeWeight   = 0.15

	// minMacroMonths is the minimum number of aligned monthly observations
	// required to compute the rate correlation. Below this the value is
	// absent rather than a noisy point estimate.
	minMacroMonths = 24
)

// Display carries the raw underlying metrics attached to a SectorScore for
// presentation. Nil means the source could not supply the value.
type Display struct {
	Return3Mo        *float64
	Return6Mo        *float64
	Return12Mo       *float64
	RelativeStrength *float64
	ForwardPE        *float64
	EmploymentGrowth *float64
	RDIntensity      *float64
}

// Raw holds one raw value per (indicator, sector) pair. A sector missing
// from an indicator map is absent for that indicator.
type Raw struct {
	Values  map[contracts.Indicator]map[contracts.Sector]float64
	Display map[contracts.Sector]*Display
}

// Compute derives all five raw indicator values from one dataset. Absent
// upstream data propagates as absent pairs; Compute itself never fails.
func Compute(ds *contracts.Dataset, sectorSet []contracts.Sector) *Raw {
	raw := &Raw{
		Values:  make(map[contracts.Indicator]map[contracts.Sector]float64, 5),
		Display: make(map[contracts.Sector]*Display, len(sectorSet)),
	}
	for _, ind := range contracts.Indicators() {
		raw.Values[ind] = make(map[contracts.Sector]float64, len(sectorSet))
	}
	for _, s := range sectorSet {
		raw.Display[s] = &Display{}
	}

	benchRet12 := periodReturn(ds.Benchmark, 12)
	rateChanges := monthlyChanges(ds.Rates)

	for _, s := range sectorSet {
		d := raw.Display[s]

		if series, ok := ds.Prices[s]; ok {
			d.Return3Mo = periodReturn(series, 3)
			d.Return6Mo = periodReturn(series, 6)
			d.Return12Mo = periodReturn(series, 12)

			if d.Return12Mo != nil && benchRet12 != nil {
				rs := *d.Return12Mo - *benchRet12
				d.RelativeStrength = &rs

				if vol := volumeTrend(series); vol != nil {
					raw.Values[contracts.IndicatorMomentum][s] = momentumReturnWeight**d.Return12Mo +
						momentumRelativeWeight*rs +
						momentumVolumeWeight**vol
				}
			}

			if corr, ok := rateCorrelation(series, rateChanges); ok {
				raw.Values[contracts.IndicatorMacro][s] = corr
			}
		}

		if pe, ok := ds.ForwardPE[s]; ok && pe > 0 {
			d.ForwardPE = &pe
			raw.Values[contracts.IndicatorValuation][s] = pe
		}

		if emp, ok := ds.Employment[s]; ok {
			if growth := employmentGrowth(emp); growth != nil {
				d.EmploymentGrowth = growth
				raw.Values[contracts.IndicatorGrowth][s] = *growth
			}
		}

		if rd, ok := ds.RDIntensity[s]; ok && len(rd) > 0 {
			m := mean(rd)
			d.RDIntensity = &m
			raw.Values[contracts.IndicatorInnovation][s] = m
		}
	}

	return raw
}

// periodReturn computes the total return in percent over the given number
// of calendar months, anchored at the last bar of the series.
func periodReturn(series contracts.PriceSeries, months int) *float64 {
	if len(series) < 2 {
		return nil
	}

	last := series[len(series)-1]
	target := last.Date.AddDate(0, -months, 0)

	// First bar at or after the target date.
	idx := sort.Search(len(series), func(i int) bool {
		return !series[i].Date.Before(target)
	})
	if idx >= len(series)-1 {
		return nil
	}

	base := series[idx].Close
	if base <= 0 {
		return nil
	}
	r := (last.Close/base - 1) * 100
	return &r
}

// volumeTrend compares the 20-day average volume against the 50-day average,
// in percent of the long window.
func volumeTrend(series contracts.PriceSeries) *float64 {
	if len(series) < volLongWindow {
		return nil
	}

	short := 0.0
	long := 0.0
	for i := len(series) - volLongWindow; i < len(series); i++ {
		long += series[i].Volume
		if i >= len(series)-volShortWindow {
			short += series[i].Volume
		}
	}
	long /= volLongWindow
	short /= volShortWindow

	if long <= 0 {
		return nil
	}
	v := (short - long) / long * 100
	return &v
}

// employmentGrowth computes the year-over-year change in percent between
// the latest monthly observation and the one twelve months earlier.
func employmentGrowth(series contracts.Series) *float64 {
	if len(series) < 2 {
		return nil
	}

	last := series[len(series)-1]
	target := last.Date.AddDate(-1, 0, 0)

	for _, obs := range series {
		if obs.Date.Year() == target.Year() && obs.Date.Month() == target.Month() {
			if obs.Value == 0 {
				return nil
			}
			g := (last.Value - obs.Value) / obs.Value * 100
			return &g
		}
	}
	return nil
}

// monthKey collapses a date to its calendar month.
func monthKey(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

// monthlyCloses reduces a daily series to one closing value per month.
func monthlyCloses(series contracts.PriceSeries) map[int]float64 {
	out := make(map[int]float64)
	for _, p := range series {
		out[monthKey(p.Date)] = p.Close
	}
	return out
}

// monthlyChanges reduces an observation series to month-over-month
// relative changes of the last value per month, keyed by the later month.
// Months whose base value is zero are skipped.
func monthlyChanges(series contracts.Series) map[int]float64 {
	lastPerMonth := make(map[int]float64)
	months := make([]int, 0)
	for _, obs := range series {
		k := monthKey(obs.Date)
		if _, seen := lastPerMonth[k]; !seen {
			months = append(months, k)
		}
		lastPerMonth[k] = obs.Value
	}
	sort.Ints(months)

	out := make(map[int]float64, len(months))
	for i := 1; i < len(months); i++ {
		prev, cur := months[i-1], months[i]
		// Require adjacent calendar months so gaps do not masquerade as
		// one-month changes.
		if cur != prev+1 {
			continue
		}
		base := lastPerMonth[prev]
		if base == 0 {
			continue
		}
		out[cur] = lastPerMonth[cur]/base - 1
	}
	return out
}

// rateCorrelation computes the Pearson correlation between the sector's
// monthly returns and monthly interest-rate changes over the months both
// series cover. Requires at least minMacroMonths aligned observations.
func rateCorrelation(prices contracts.PriceSeries, rateChanges map[int]float64) (float64, bool) {
	closes := monthlyCloses(prices)
	months := make([]int, 0, len(closes))
	for k := range closes {
		months = append(months, k)
	}
	sort.Ints(months)

	var returns, changes []float64
	for i := 1; i < len(months); i++ {
		prev, cur := months[i-1], months[i]
		if cur != prev+1 {
			continue
		}
		change, ok := rateChanges[cur]
		if !ok {
			continue
		}
		base := closes[prev]
		if base <= 0 {
			continue
		}
		returns = append(returns, closes[cur]/base-1)
		changes = append(changes, change)
	}

	if len(returns) < minMacroMonths {
		return 0, false
	}
	return pearson(returns, changes)
}

// pearson computes the Pearson correlation coefficient of two equal-length
// samples. Returns false when either sample has zero variance.
func pearson(x, y []float64) (float64, bool) {
	n := float64(len(x))
	mx := mean(x)
	my := mean(y)

	var cov, vx, vy float64
	for i := range x {
		dx := x[i] - mx
		dy := y[i] - my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 || n == 0 {
		return 0, false
	}
	return cov / math.Sqrt(vx*vy), true
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
