package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrenlab/sectorscope/internal/contracts"
	"github.com/wrenlab/sectorscope/internal/scoring"
	"github.com/wrenlab/sectorscope/internal/sources/sourcetest"
	"github.com/wrenlab/sectorscope/pkg/logger"
)

type captureHub struct {
	results []*scoring.Result
}

func (h *captureHub) Broadcast(res *scoring.Result) {
	h.results = append(h.results, res)
}

func testEngine(status contracts.StatusLevel) *scoring.Engine {
	end := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	sectorSet := []contracts.Sector{"Alpha", "Beta", "Gamma"}

	pe := map[contracts.Sector]float64{"Alpha": 10, "Beta": 15, "Gamma": 20}
	src := scoring.Sources{
		Prices: &sourcetest.FakePrices{
			Benchmark: sourcetest.DailySeries(end, 400, func(i int) (float64, float64) { return 100, 1000 }),
			Status:    sourcetest.OK("market_data"),
		},
		Valuations: &sourcetest.FakeValuations{PE: pe, Status: sourcetest.OK("valuation")},
		Employment: &sourcetest.FakeEmployment{Status: sourcetest.OK("employment")},
		Innovation: &sourcetest.FakeInnovation{Status: sourcetest.OK("innovation")},
		Rates:      &sourcetest.FakeRates{Status: sourcetest.OK("interest_rates")},
	}
	if status == contracts.StatusError {
		src = scoring.Sources{
			Prices:     &sourcetest.FakePrices{Status: sourcetest.Error("market_data", "down")},
			Valuations: &sourcetest.FakeValuations{Status: sourcetest.Error("valuation", "down")},
			Employment: &sourcetest.FakeEmployment{Status: sourcetest.Error("employment", "down")},
			Innovation: &sourcetest.FakeInnovation{Status: sourcetest.Error("innovation", "down")},
			Rates:      &sourcetest.FakeRates{Status: sourcetest.Error("interest_rates", "down")},
		}
	}
	return scoring.New(src, sectorSet, logger.Nop())
}

func TestRefreshJobBroadcastsResult(t *testing.T) {
	hub := &captureHub{}
	job := NewRefreshJob(testEngine(contracts.StatusOK), hub, nil, "0 0 */12 * * *", logger.Nop())

	assert.Equal(t, "score_refresh", job.Name())
	assert.Equal(t, "0 0 */12 * * *", job.Schedule())

	require.NoError(t, job.Run(context.Background()))
	require.Len(t, hub.results, 1)
	assert.Len(t, hub.results[0].Scores, 3)
}

func TestRefreshJobPropagatesScoringFailure(t *testing.T) {
	job := NewRefreshJob(testEngine(contracts.StatusError), nil, nil, "@hourly", logger.Nop())
	require.Error(t, job.Run(context.Background()))
}

func TestRefreshJobWithoutHub(t *testing.T) {
	job := NewRefreshJob(testEngine(contracts.StatusOK), nil, nil, "@hourly", logger.Nop())
	require.NoError(t, job.Run(context.Background()))
}
