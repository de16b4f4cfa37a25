// Package scoring combines the five indicator signals into weighted
// composite opportunity scores and deterministic sector rankings.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wrenlab/sectorscope/internal/contracts"
	"github.com/wrenlab/sectorscope/internal/signals"
	"github.com/wrenlab/sectorscope/pkg/logger"
)

// ErrNoData is returned when every source failed and nothing was cached:
// there is no data to score at all.
var ErrNoData = errors.New("no data available from any source")

// defaultSourceTimeout bounds each provider fetch independently so one hung
// source cannot stall the cycle.
const defaultSourceTimeout = 60 * time.Second

// Sources bundles the five provider dependencies of the engine.
type Sources struct {
	Prices     contracts.PriceSource
	Valuations contracts.ValuationSource
	Employment contracts.EmploymentSource
	Innovation contracts.InnovationSource
	Rates      contracts.RateSource
}

// Probers returns the sources in canonical order for quality checks.
func (s Sources) Probers() []contracts.StatusProber {
	return []contracts.StatusProber{
		s.Prices,
		s.Valuations,
		s.Employment,
		s.Innovation,
		s.Rates,
	}
}

// Engine is the scoring pipeline: collect, compute, normalize, rank.
// Stateless between requests; the cache inside each source is the only
// shared state.
type Engine struct {
	sources       Sources
	sectorSet     []contracts.Sector
	sourceTimeout time.Duration
	log           *logger.Logger
}

// New creates an Engine over the given sector set.
func New(sources Sources, sectorSet []contracts.Sector, log *logger.Logger) *Engine {
	return &Engine{
		sources:       sources,
		sectorSet:     sectorSet,
		sourceTimeout: defaultSourceTimeout,
		log:           log.WithField("component", "scoring"),
	}
}

// Result is the payload of one scoring call.
type Result struct {
	Scores      []contracts.SectorScore  `json:"scores"`
	WeightsUsed map[string]float64       `json:"weights_used"`
	Timestamp   time.Time                `json:"timestamp"`
	Sources     []contracts.SourceStatus `json:"sources"`
}

// Collect fetches all five sources concurrently into one dataset. Sources
// have no dependency on each other; each gets an independent timeout. The
// caller's cancellation does not abort in-flight cache population (the
// fetch layer detaches the write).
func (e *Engine) Collect(ctx context.Context, refresh bool) *contracts.Dataset {
	ds := &contracts.Dataset{FetchedAt: time.Now().UTC()}

	var (
		priceStatus, peStatus, empStatus, rdStatus, rateStatus contracts.SourceStatus
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ctx, cancel := context.WithTimeout(gctx, e.sourceTimeout)
		defer cancel()
		ds.Prices, ds.Benchmark, priceStatus = e.sources.Prices.SectorPrices(ctx, refresh)
		return nil
	})
	g.Go(func() error {
		ctx, cancel := context.WithTimeout(gctx, e.sourceTimeout)
		defer cancel()
		ds.ForwardPE, peStatus = e.sources.Valuations.ForwardPE(ctx, refresh)
		return nil
	})
	g.Go(func() error {
		ctx, cancel := context.WithTimeout(gctx, e.sourceTimeout)
		defer cancel()
		ds.Employment, empStatus = e.sources.Employment.Employment(ctx, refresh)
		return nil
	})
	g.Go(func() error {
		ctx, cancel := context.WithTimeout(gctx, e.sourceTimeout)
		defer cancel()
		ds.RDIntensity, rdStatus = e.sources.Innovation.RDIntensity(ctx, refresh)
		return nil
	})
	g.Go(func() error {
		ctx, cancel := context.WithTimeout(gctx, e.sourceTimeout)
		defer cancel()
		ds.Rates, rateStatus = e.sources.Rates.RateSeries(ctx, refresh)
		return nil
	})

	// Source goroutines never return errors; failures land in statuses.
	_ = g.Wait()

	ds.Statuses = []contracts.SourceStatus{priceStatus, peStatus, empStatus, rdStatus, rateStatus}
	return ds
}

// Score runs one full scoring cycle. Weights may be partial or
// unnormalized; they are renormalized to sum to 1 (defaults on zero/empty).
// Returns ErrNoData when every source came back empty.
func (e *Engine) Score(ctx context.Context, weights contracts.Weights, refresh bool) (*Result, error) {
	ds := e.Collect(ctx, refresh)
	if ds.Empty() {
		return nil, fmt.Errorf("%w: all sources failed with nothing cached", ErrNoData)
	}

	weightsUsed := weights.Normalized()

	raw := signals.Compute(ds, e.sectorSet)
	normalized := signals.NormalizeAll(raw, e.sectorSet)

	scores := make([]contracts.SectorScore, 0, len(e.sectorSet))
	for _, s := range e.sectorSet {
		sc := contracts.SectorScore{
			Sector:          s,
			MomentumScore:   normalized[contracts.IndicatorMomentum][s],
			ValuationScore:  normalized[contracts.IndicatorValuation][s],
			GrowthScore:     normalized[contracts.IndicatorGrowth][s],
			InnovationScore: normalized[contracts.IndicatorInnovation][s],
			MacroScore:      normalized[contracts.IndicatorMacro][s],
		}

		sc.OpportunityScore = composite(&sc, weightsUsed)

		if d := raw.Display[s]; d != nil {
			sc.PriceReturn3Mo = d.Return3Mo
			sc.PriceReturn6Mo = d.Return6Mo
			sc.PriceReturn12Mo = d.Return12Mo
			sc.RelativeStrength = d.RelativeStrength
			sc.ForwardPE = d.ForwardPE
			sc.EmploymentGrowth = d.EmploymentGrowth
			sc.RDIntensity = d.RDIntensity
		}

		scores = append(scores, sc)
	}

	rank(scores)

	e.log.WithFields(map[string]interface{}{
		"sectors": len(scores),
		"refresh": refresh,
		"overall": contracts.WorstStatus(ds.Statuses),
	}).Info("scoring cycle completed")

	return &Result{
		Scores:      scores,
		WeightsUsed: weightsUsed.ToStringMap(),
		Timestamp:   ds.FetchedAt,
		Sources:     ds.Statuses,
	}, nil
}

// composite folds the five component scores into the weighted sum.
func composite(sc *contracts.SectorScore, weights contracts.Weights) float64 {
	sum := 0.0
	for _, ind := range contracts.Indicators() {
		sum += weights[ind] * sc.IndicatorScore(ind)
	}
	return sum
}

// rank orders scores by composite descending with a stable name-ascending
// tie-break, then assigns ranks 1..N.
func rank(scores []contracts.SectorScore) {
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].OpportunityScore != scores[j].OpportunityScore {
			return scores[i].OpportunityScore > scores[j].OpportunityScore
		}
		return scores[i].Sector < scores[j].Sector
	})
	for i := range scores {
		scores[i].Rank = i + 1
	}
}
