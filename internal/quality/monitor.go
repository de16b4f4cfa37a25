// Package quality aggregates per-source health into one overall status.
package quality

import (
	"context"
	"sync"
	"time"

	"github.com/wrenlab/sectorscope/internal/contracts"
	"github.com/wrenlab/sectorscope/pkg/logger"
)

// probeTimeout bounds each individual source probe.
const probeTimeout = 15 * time.Second

// Monitor probes every registered source and folds their statuses into an
// overall level with precedence error > warning > ok.
type Monitor struct {
	probers []contracts.StatusProber
	log     *logger.Logger
}

// New creates a Monitor over the given probers. Order is preserved in the
// report.
func New(log *logger.Logger, probers ...contracts.StatusProber) *Monitor {
	return &Monitor{
		probers: probers,
		log:     log.WithField("component", "quality"),
	}
}

// Report is the result of one quality check.
type Report struct {
	Sources []contracts.SourceStatus `json:"sources"`
	Overall contracts.StatusLevel    `json:"overall_status"`
}

// Check probes all sources concurrently. Probes are status-only: they must
// not force a data refresh. A probe that outlives its timeout is reported
// as an error, not awaited indefinitely.
func (m *Monitor) Check(ctx context.Context) Report {
	statuses := make([]contracts.SourceStatus, len(m.probers))

	var wg sync.WaitGroup
	for i, p := range m.probers {
		wg.Add(1)
		go func(i int, p contracts.StatusProber) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, probeTimeout)
			defer cancel()
			statuses[i] = p.Probe(pctx)
		}(i, p)
	}
	wg.Wait()

	report := Report{
		Sources: statuses,
		Overall: contracts.WorstStatus(statuses),
	}

	if report.Overall != contracts.StatusOK {
		m.log.WithField("overall", report.Overall).Warn("data quality degraded")
	}
	return report
}
