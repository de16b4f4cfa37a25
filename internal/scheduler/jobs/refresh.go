// Package jobs holds the concrete scheduled jobs.
package jobs

import (
	"context"
	"fmt"

	"github.com/wrenlab/sectorscope/internal/scoring"
	"github.com/wrenlab/sectorscope/pkg/logger"
)

// Broadcaster pushes a finished scoring result to live subscribers.
type Broadcaster interface {
	Broadcast(res *scoring.Result)
}

// RefreshJob forces a full provider refresh, recomputes scores with the
// default weights, pushes the result to websocket clients, and optionally
// persists a snapshot.
type RefreshJob struct {
	engine    *scoring.Engine
	hub       Broadcaster           // nil when the API server is not running
	snapshots *scoring.SnapshotRepo // nil when no database is configured
	schedule  string
	logger    *logger.Logger
}

// NewRefreshJob creates the refresh job. hub and snapshots may be nil.
func NewRefreshJob(engine *scoring.Engine, hub Broadcaster, snapshots *scoring.SnapshotRepo, schedule string, log *logger.Logger) *RefreshJob {
	return &RefreshJob{
		engine:    engine,
		hub:       hub,
		snapshots: snapshots,
		schedule:  schedule,
		logger:    log.WithField("job", "score_refresh"),
	}
}

// Name implements scheduler.Job.
func (j *RefreshJob) Name() string {
	return "score_refresh"
}

// Schedule implements scheduler.Job.
func (j *RefreshJob) Schedule() string {
	return j.schedule
}

// Run implements scheduler.Job.
func (j *RefreshJob) Run(ctx context.Context) error {
	res, err := j.engine.Score(ctx, nil, true)
	if err != nil {
		return fmt.Errorf("refresh scoring: %w", err)
	}

	if j.hub != nil {
		j.hub.Broadcast(res)
	}

	if j.snapshots != nil {
		if err := j.snapshots.Save(ctx, res); err != nil {
			// The refresh itself succeeded; a failed snapshot write is
			// not worth a retry cycle.
			j.logger.WithError(err).Warn("Snapshot save failed")
		}
	}

	j.logger.WithField("sectors", len(res.Scores)).Info("Score refresh completed")
	return nil
}
