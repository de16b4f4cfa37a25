package contracts

// Indicator identifies one of the five scoring signals. The set is closed;
// every switch over indicators should handle all five.
type Indicator string

const (
	IndicatorMomentum   Indicator = "momentum"
	IndicatorValuation  Indicator = "valuation"
	IndicatorGrowth     Indicator = "growth"
	IndicatorInnovation Indicator = "innovation"
	IndicatorMacro      Indicator = "macro"
)

// indicatorSpec carries the per-indicator scoring parameters.
type indicatorSpec struct {
	defaultWeight float64
	// lowerIsBetter flips the z-score sign during normalization: a cheaper
	// valuation and a lower rate correlation are the favorable directions.
	lowerIsBetter bool
}

var indicatorTable = map[Indicator]indicatorSpec{
	IndicatorMomentum:   {defaultWeight: 0.25, lowerIsBetter: false},
	IndicatorValuation:  {defaultWeight: 0.20, lowerIsBetter: true},
	IndicatorGrowth:     {defaultWeight: 0.20, lowerIsBetter: false},
	IndicatorInnovation: {defaultWeight: 0.20, lowerIsBetter: false},
	IndicatorMacro:      {defaultWeight: 0.15, lowerIsBetter: true},
}

// Indicators returns all five indicators in canonical order.
func Indicators() []Indicator {
	return []Indicator{
		IndicatorMomentum,
		IndicatorValuation,
		IndicatorGrowth,
		IndicatorInnovation,
		IndicatorMacro,
	}
}

// Valid reports whether i is one of the five known indicators.
func (i Indicator) Valid() bool {
	_, ok := indicatorTable[i]
	return ok
}

// DefaultWeight returns the indicator's default composite weight.
func (i Indicator) DefaultWeight() float64 {
	return indicatorTable[i].defaultWeight
}

// LowerIsBetter reports whether a lower raw value maps to a higher score.
func (i Indicator) LowerIsBetter() bool {
	return indicatorTable[i].lowerIsBetter
}

// Weights maps indicators to composite weights. Callers may supply partial
// or unnormalized weights; Normalized always produces a full mapping that
// sums to 1.0.
type Weights map[Indicator]float64

// DefaultWeights returns the default weight mapping
// (0.25/0.20/0.20/0.20/0.15).
func DefaultWeights() Weights {
	w := make(Weights, len(indicatorTable))
	for _, ind := range Indicators() {
		w[ind] = ind.DefaultWeight()
	}
	return w
}

// ParseWeights builds Weights from a string-keyed map, dropping unknown
// keys and negative values.
func ParseWeights(raw map[string]float64) Weights {
	w := make(Weights)
	for k, v := range raw {
		ind := Indicator(k)
		if !ind.Valid() || v < 0 {
			continue
		}
		w[ind] = v
	}
	return w
}

// Normalized renormalizes the weights to sum to 1.0, covering all five
// indicators (missing ones weigh 0). When the supplied sum is zero or the
// map is empty, the defaults are used instead.
func (w Weights) Normalized() Weights {
	sum := 0.0
	for _, ind := range Indicators() {
		if v := w[ind]; v > 0 {
			sum += v
		}
	}

	if sum <= 0 {
		return DefaultWeights()
	}

	out := make(Weights, len(indicatorTable))
	for _, ind := range Indicators() {
		v := w[ind]
		if v < 0 {
			v = 0
		}
		out[ind] = v / sum
	}
	return out
}

// ToStringMap converts Weights to the wire representation.
func (w Weights) ToStringMap() map[string]float64 {
	out := make(map[string]float64, len(w))
	for ind, v := range w {
		out[string(ind)] = v
	}
	return out
}
