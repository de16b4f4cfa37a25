package signals

import (
	"math"

	"github.com/wrenlab/sectorscope/internal/contracts"
)

const (
	// Z-score mapping: score = 50 ± 15z, clamped to [0, 100].
	scoreCenter = 50.0
	scoreSpread = 15.0

	// NeutralScore is assigned when a sector has no raw value for an
	// indicator. Keeping absent sectors at the center keeps the ranking
	// total well-defined instead of dropping them.
	NeutralScore = scoreCenter
)

// Normalize converts one indicator's raw per-sector values to 0-100 scores
// via cross-sectional z-scoring. Sectors absent from raw receive the
// neutral score. For lower-is-better indicators the z-score sign is
// flipped so the favorable direction scores high. A degenerate
// cross-section (zero variance, or fewer than two values) scores every
// sector at the center.
func Normalize(ind contracts.Indicator, raw map[contracts.Sector]float64, sectorSet []contracts.Sector) map[contracts.Sector]float64 {
	out := make(map[contracts.Sector]float64, len(sectorSet))
	for _, s := range sectorSet {
		out[s] = NeutralScore
	}

	if len(raw) < 2 {
		return out
	}

	vals := make([]float64, 0, len(raw))
	for _, v := range raw {
		vals = append(vals, v)
	}
	mu := mean(vals)
	sigma := stddev(vals, mu)
	if sigma == 0 {
		return out
	}

	sign := 1.0
	if ind.LowerIsBetter() {
		sign = -1.0
	}

	for _, s := range sectorSet {
		v, ok := raw[s]
		if !ok {
			continue
		}
		z := (v - mu) / sigma
		out[s] = clamp(scoreCenter+sign*scoreSpread*z, 0, 100)
	}
	return out
}

// NormalizeAll applies Normalize across all five indicators.
func NormalizeAll(raw *Raw, sectorSet []contracts.Sector) map[contracts.Indicator]map[contracts.Sector]float64 {
	out := make(map[contracts.Indicator]map[contracts.Sector]float64, 5)
	for _, ind := range contracts.Indicators() {
		out[ind] = Normalize(ind, raw.Values[ind], sectorSet)
	}
	return out
}

func stddev(vals []float64, mu float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	var ss float64
	for _, v := range vals {
		d := v - mu
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
