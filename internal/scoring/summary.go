package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/wrenlab/sectorscope/internal/contracts"
)

// topBottomCount is how many sectors the summary highlights at each end.
const topBottomCount = 3

// SummaryEntry is one sector/score pair in the summary lists.
type SummaryEntry struct {
	Sector contracts.Sector `json:"sector"`
	Score  float64          `json:"score"`
}

// Summary is the condensed view of one scoring cycle.
type Summary struct {
	TopSectors        []SummaryEntry              `json:"top_sectors"`
	BottomSectors     []SummaryEntry              `json:"bottom_sectors"`
	ScoreDistribution map[string]int              `json:"score_distribution"`
	TopSectorDrivers  map[contracts.Sector]string `json:"top_sector_drivers"`
	WeightsUsed       map[string]float64          `json:"weights_used"`
	Timestamp         time.Time                   `json:"timestamp"`
}

// Summarize runs a scoring cycle and condenses it into top/bottom sectors,
// a score histogram, and a one-line driver per top sector.
func (e *Engine) Summarize(ctx context.Context, weights contracts.Weights, refresh bool) (*Summary, error) {
	res, err := e.Score(ctx, weights, refresh)
	if err != nil {
		return nil, err
	}
	return buildSummary(res), nil
}

func buildSummary(res *Result) *Summary {
	n := len(res.Scores)
	top := topBottomCount
	if top > n {
		top = n
	}

	s := &Summary{
		TopSectors:        make([]SummaryEntry, 0, top),
		BottomSectors:     make([]SummaryEntry, 0, top),
		ScoreDistribution: distribution(res.Scores),
		TopSectorDrivers:  make(map[contracts.Sector]string, top),
		WeightsUsed:       res.WeightsUsed,
		Timestamp:         res.Timestamp,
	}

	// Scores are already rank-ordered.
	for _, sc := range res.Scores[:top] {
		s.TopSectors = append(s.TopSectors, SummaryEntry{Sector: sc.Sector, Score: sc.OpportunityScore})
		s.TopSectorDrivers[sc.Sector] = driver(sc, res.WeightsUsed)
	}
	for i := n - 1; i >= n-top; i-- {
		sc := res.Scores[i]
		s.BottomSectors = append(s.BottomSectors, SummaryEntry{Sector: sc.Sector, Score: sc.OpportunityScore})
	}

	return s
}

// distribution buckets composite scores into 20-point bands.
func distribution(scores []contracts.SectorScore) map[string]int {
	buckets := map[string]int{
		"0-20":   0,
		"20-40":  0,
		"40-60":  0,
		"60-80":  0,
		"80-100": 0,
	}
	for _, sc := range scores {
		switch {
		case sc.OpportunityScore < 20:
			buckets["0-20"]++
		case sc.OpportunityScore < 40:
			buckets["20-40"]++
		case sc.OpportunityScore < 60:
			buckets["40-60"]++
		case sc.OpportunityScore < 80:
			buckets["60-80"]++
		default:
			buckets["80-100"]++
		}
	}
	return buckets
}

// driver names the indicator contributing most to a sector's composite,
// weighted by the weights actually used.
func driver(sc contracts.SectorScore, weightsUsed map[string]float64) string {
	best := contracts.IndicatorMomentum
	bestContribution := -1.0
	for _, ind := range contracts.Indicators() {
		c := weightsUsed[string(ind)] * sc.IndicatorScore(ind)
		if c > bestContribution {
			bestContribution = c
			best = ind
		}
	}
	return fmt.Sprintf("driven by %s (score %.1f)", best, sc.IndicatorScore(best))
}
