package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrenlab/sectorscope/internal/contracts"
	"github.com/wrenlab/sectorscope/internal/sources/sourcetest"
	"github.com/wrenlab/sectorscope/pkg/logger"
)

var (
	testEnd     = time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	testSectors = []contracts.Sector{"Alpha", "Beta", "Gamma", "Delta"}
)

// healthySources builds fakes where every sector has data for every
// indicator, with enough spread that no cross-section degenerates.
func healthySources() Sources {
	prices := make(map[contracts.Sector]contracts.PriceSeries, len(testSectors))
	employment := make(map[contracts.Sector]contracts.Series, len(testSectors))
	pe := make(map[contracts.Sector]float64, len(testSectors))
	rd := make(map[contracts.Sector][]float64, len(testSectors))

	for i, s := range testSectors {
		growth := 0.02 + 0.05*float64(i)
		prices[s] = sourcetest.DailySeries(testEnd, 400, func(d int) (float64, float64) {
			return 100 + growth*float64(d), 1000 + float64(i*d)
		})
		employment[s] = sourcetest.MonthlySeries(testEnd, 25, func(m int) float64 {
			return 1000 + float64(i*m)*2
		})
		pe[s] = 12 + 4*float64(i)
		rd[s] = []float64{0.05 * float64(i+1)}
	}

	return Sources{
		Prices: &sourcetest.FakePrices{
			Prices:    prices,
			Benchmark: sourcetest.DailySeries(testEnd, 400, func(d int) (float64, float64) { return 100 + 0.05*float64(d), 1000 }),
			Status:    sourcetest.OK("market_data"),
		},
		Valuations: &sourcetest.FakeValuations{PE: pe, Status: sourcetest.OK("valuation")},
		Employment: &sourcetest.FakeEmployment{Series: employment, Status: sourcetest.OK("employment")},
		Innovation: &sourcetest.FakeInnovation{RD: rd, Status: sourcetest.OK("innovation")},
		Rates: &sourcetest.FakeRates{
			Series: sourcetest.MonthlySeries(testEnd, 40, func(m int) float64 { return 3 + 0.01*float64(m*m%17) }),
			Status: sourcetest.OK("interest_rates"),
		},
	}
}

func newTestEngine(src Sources) *Engine {
	return New(src, testSectors, logger.Nop())
}

func TestScoreRanksAreAPermutation(t *testing.T) {
	e := newTestEngine(healthySources())

	res, err := e.Score(context.Background(), nil, false)
	require.NoError(t, err)
	require.Len(t, res.Scores, len(testSectors))

	seen := make(map[int]bool)
	for i, sc := range res.Scores {
		assert.Equal(t, i+1, sc.Rank)
		assert.False(t, seen[sc.Rank])
		seen[sc.Rank] = true
		if i > 0 {
			assert.GreaterOrEqual(t, res.Scores[i-1].OpportunityScore, sc.OpportunityScore,
				"composites must be non-increasing by rank")
		}
	}
}

func TestScoreAllComponentScoresInRange(t *testing.T) {
	e := newTestEngine(healthySources())

	res, err := e.Score(context.Background(), nil, false)
	require.NoError(t, err)

	for _, sc := range res.Scores {
		for _, ind := range contracts.Indicators() {
			v := sc.IndicatorScore(ind)
			assert.GreaterOrEqual(t, v, 0.0, "%s/%s", sc.Sector, ind)
			assert.LessOrEqual(t, v, 100.0, "%s/%s", sc.Sector, ind)
		}
		assert.GreaterOrEqual(t, sc.OpportunityScore, 0.0)
		assert.LessOrEqual(t, sc.OpportunityScore, 100.0)
	}
}

func TestScoreWeightsUsedSumToOne(t *testing.T) {
	e := newTestEngine(healthySources())
	ctx := context.Background()

	inputs := []contracts.Weights{
		nil,
		{},
		{contracts.IndicatorMomentum: 5},
		{contracts.IndicatorMomentum: 100, contracts.IndicatorMacro: 300},
	}
	for _, w := range inputs {
		res, err := e.Score(ctx, w, false)
		require.NoError(t, err)

		sum := 0.0
		for _, v := range res.WeightsUsed {
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "input %v", w)
	}
}

func TestScoreMomentumOnlyWeights(t *testing.T) {
	e := newTestEngine(healthySources())

	res, err := e.Score(context.Background(), contracts.Weights{contracts.IndicatorMomentum: 1}, false)
	require.NoError(t, err)

	for _, sc := range res.Scores {
		assert.InDelta(t, sc.MomentumScore, sc.OpportunityScore, 1e-9,
			"with momentum-only weights the composite equals the momentum score")
	}
}

func TestCompositeDefaultWeightsScenario(t *testing.T) {
	sc := contracts.SectorScore{
		MomentumScore:   80,
		ValuationScore:  60,
		GrowthScore:     40,
		InnovationScore: 70,
		MacroScore:      50,
	}
	assert.InDelta(t, 61.5, composite(&sc, contracts.DefaultWeights()), 1e-9)
}

func TestScoreAbsentSourceYieldsNeutralScores(t *testing.T) {
	src := healthySources()
	src.Innovation = &sourcetest.FakeInnovation{
		RD:     nil,
		Status: sourcetest.Error("innovation", "dataset unreachable"),
	}
	e := newTestEngine(src)

	res, err := e.Score(context.Background(), nil, false)
	require.NoError(t, err, "one failed source must not abort scoring")
	require.Len(t, res.Scores, len(testSectors))

	for _, sc := range res.Scores {
		assert.Equal(t, 50.0, sc.InnovationScore, "missing signal scores neutral")
		assert.Nil(t, sc.RDIntensity)
		// The other indicators still differentiate.
	}
	assert.Equal(t, contracts.StatusError, contracts.WorstStatus(res.Sources))

	var momentumSpread bool
	for _, sc := range res.Scores {
		if sc.MomentumScore != 50.0 {
			momentumSpread = true
		}
	}
	assert.True(t, momentumSpread, "healthy indicators keep computing")
}

func TestScoreIdempotentWithoutRefresh(t *testing.T) {
	e := newTestEngine(healthySources())
	ctx := context.Background()
	w := contracts.Weights{contracts.IndicatorMomentum: 2, contracts.IndicatorValuation: 1}

	first, err := e.Score(ctx, w, false)
	require.NoError(t, err)
	second, err := e.Score(ctx, w, false)
	require.NoError(t, err)

	require.Len(t, second.Scores, len(first.Scores))
	for i := range first.Scores {
		assert.Equal(t, first.Scores[i].Sector, second.Scores[i].Sector)
		assert.Equal(t, first.Scores[i].OpportunityScore, second.Scores[i].OpportunityScore)
		assert.Equal(t, first.Scores[i].Rank, second.Scores[i].Rank)
	}
}

func TestScoreTieBreakByName(t *testing.T) {
	// Every source empty except valuation with identical values: all
	// composites tie and ordering must fall back to name ascending.
	src := Sources{
		Prices:     &sourcetest.FakePrices{Status: sourcetest.Error("market_data", "down")},
		Valuations: &sourcetest.FakeValuations{PE: map[contracts.Sector]float64{"Alpha": 15, "Beta": 15, "Gamma": 15, "Delta": 15}, Status: sourcetest.OK("valuation")},
		Employment: &sourcetest.FakeEmployment{Status: sourcetest.Error("employment", "down")},
		Innovation: &sourcetest.FakeInnovation{Status: sourcetest.Error("innovation", "down")},
		Rates:      &sourcetest.FakeRates{Status: sourcetest.Error("interest_rates", "down")},
	}
	e := newTestEngine(src)

	res, err := e.Score(context.Background(), nil, false)
	require.NoError(t, err)

	names := make([]contracts.Sector, 0, len(res.Scores))
	for _, sc := range res.Scores {
		names = append(names, sc.Sector)
	}
	assert.Equal(t, []contracts.Sector{"Alpha", "Beta", "Delta", "Gamma"}, names)
}

func TestScoreNoDataAtAll(t *testing.T) {
	src := Sources{
		Prices:     &sourcetest.FakePrices{Status: sourcetest.Error("market_data", "down")},
		Valuations: &sourcetest.FakeValuations{Status: sourcetest.Error("valuation", "down")},
		Employment: &sourcetest.FakeEmployment{Status: sourcetest.Error("employment", "down")},
		Innovation: &sourcetest.FakeInnovation{Status: sourcetest.Error("innovation", "down")},
		Rates:      &sourcetest.FakeRates{Status: sourcetest.Error("interest_rates", "down")},
	}
	e := newTestEngine(src)

	_, err := e.Score(context.Background(), nil, false)
	require.ErrorIs(t, err, ErrNoData)
}

func TestCollectGathersAllStatusesInOrder(t *testing.T) {
	e := newTestEngine(healthySources())

	ds := e.Collect(context.Background(), false)
	require.Len(t, ds.Statuses, 5)
	assert.Equal(t, "market_data", ds.Statuses[0].Source)
	assert.Equal(t, "valuation", ds.Statuses[1].Source)
	assert.Equal(t, "employment", ds.Statuses[2].Source)
	assert.Equal(t, "innovation", ds.Statuses[3].Source)
	assert.Equal(t, "interest_rates", ds.Statuses[4].Source)
	assert.False(t, ds.Empty())
	assert.False(t, ds.FetchedAt.IsZero())
}

func TestSummarize(t *testing.T) {
	e := newTestEngine(healthySources())

	s, err := e.Summarize(context.Background(), nil, false)
	require.NoError(t, err)

	require.Len(t, s.TopSectors, 3)
	require.Len(t, s.BottomSectors, 3)
	assert.GreaterOrEqual(t, s.TopSectors[0].Score, s.TopSectors[1].Score)
	assert.LessOrEqual(t, s.BottomSectors[0].Score, s.BottomSectors[1].Score)

	total := 0
	for _, n := range s.ScoreDistribution {
		total += n
	}
	assert.Equal(t, len(testSectors), total, "every sector lands in exactly one bucket")

	require.Len(t, s.TopSectorDrivers, 3)
	for sector, text := range s.TopSectorDrivers {
		assert.Contains(t, text, "driven by", "driver for %s", sector)
	}

	sum := 0.0
	for _, v := range s.WeightsUsed {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}
