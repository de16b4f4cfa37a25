package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wrenlab/sectorscope/internal/contracts"
	"github.com/wrenlab/sectorscope/pkg/database"
	"github.com/wrenlab/sectorscope/pkg/logger"
)

// SnapshotRepo persists computed rankings for later comparison. Optional:
// the pipeline runs without a database, snapshots are simply skipped.
type SnapshotRepo struct {
	db  *database.DB
	log *logger.Logger
}

// NewSnapshotRepo creates the repository.
func NewSnapshotRepo(db *database.DB, log *logger.Logger) *SnapshotRepo {
	return &SnapshotRepo{
		db:  db,
		log: log.WithField("component", "snapshots"),
	}
}

// EnsureSchema creates the snapshot table if it does not exist.
func (r *SnapshotRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS sector_score_snapshots (
			id                BIGSERIAL PRIMARY KEY,
			scored_at         TIMESTAMPTZ NOT NULL,
			sector            TEXT        NOT NULL,
			opportunity_score DOUBLE PRECISION NOT NULL,
			rank              INT         NOT NULL,
			momentum_score    DOUBLE PRECISION NOT NULL,
			valuation_score   DOUBLE PRECISION NOT NULL,
			growth_score      DOUBLE PRECISION NOT NULL,
			innovation_score  DOUBLE PRECISION NOT NULL,
			macro_score       DOUBLE PRECISION NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_snapshots_sector_time
			ON sector_score_snapshots (sector, scored_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("ensure snapshot schema: %w", err)
	}
	return nil
}

// Save writes one row per sector for a completed scoring cycle.
func (r *SnapshotRepo) Save(ctx context.Context, res *Result) error {
	batch := &pgx.Batch{}
	for _, sc := range res.Scores {
		batch.Queue(`
			INSERT INTO sector_score_snapshots
				(scored_at, sector, opportunity_score, rank,
				 momentum_score, valuation_score, growth_score,
				 innovation_score, macro_score)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			res.Timestamp, string(sc.Sector), sc.OpportunityScore, sc.Rank,
			sc.MomentumScore, sc.ValuationScore, sc.GrowthScore,
			sc.InnovationScore, sc.MacroScore,
		)
	}

	results := r.db.Pool.SendBatch(ctx, batch)
	defer results.Close()

	for range res.Scores {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
	}

	r.log.WithField("sectors", len(res.Scores)).Debug("snapshot saved")
	return nil
}

// HistoryPoint is one persisted composite score for a sector.
type HistoryPoint struct {
	ScoredAt         time.Time `json:"scored_at"`
	OpportunityScore float64   `json:"opportunity_score"`
	Rank             int       `json:"rank"`
}

// History returns the most recent snapshots for one sector, newest first.
func (r *SnapshotRepo) History(ctx context.Context, sector contracts.Sector, limit int) ([]HistoryPoint, error) {
	if limit <= 0 {
		limit = 30
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT scored_at, opportunity_score, rank
		FROM sector_score_snapshots
		WHERE sector = $1
		ORDER BY scored_at DESC
		LIMIT $2`,
		string(sector), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query snapshot history: %w", err)
	}
	defer rows.Close()

	var points []HistoryPoint
	for rows.Next() {
		var p HistoryPoint
		if err := rows.Scan(&p.ScoredAt, &p.OpportunityScore, &p.Rank); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return points, nil
}
