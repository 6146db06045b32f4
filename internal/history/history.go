// Package history persists per-iteration optimizer reports so a run can be
// resumed or audited after the process exits.
package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"trafficsim/internal/optimizer"
)

// DB is the subset of a pgx connection pool the store needs, narrow enough
// to be satisfied by a thin adapter over pgxmock.PgxPoolIface in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists optimizer.Report rows keyed by a run identifier.
type Store interface {
	RecordIteration(ctx context.Context, runID string, rep optimizer.Report) error
	Iterations(ctx context.Context, runID string) ([]optimizer.Report, error)
	Close()
}

// PostgresStore is the durable Store backed by Postgres via pgx.
type PostgresStore struct {
	db DB
}

// NewPostgresStore wraps an already-connected DB.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) RecordIteration(ctx context.Context, runID string, rep optimizer.Report) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO iteration_reports
			(run_id, iteration, agent_count, mean_trip_duration, mean_trip_length, mean_link_duration, dropped_agent_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (run_id, iteration) DO UPDATE SET
			agent_count = EXCLUDED.agent_count,
			mean_trip_duration = EXCLUDED.mean_trip_duration,
			mean_trip_length = EXCLUDED.mean_trip_length,
			mean_link_duration = EXCLUDED.mean_link_duration,
			dropped_agent_count = EXCLUDED.dropped_agent_count`,
		runID, rep.Iteration, rep.AgentCount, rep.MeanTripDuration, rep.MeanTripLength, rep.MeanLinkDuration, rep.DroppedAgentCount,
	)
	if err != nil {
		return fmt.Errorf("history: record iteration %d for run %s: %w", rep.Iteration, runID, err)
	}
	return nil
}

func (s *PostgresStore) Iterations(ctx context.Context, runID string) ([]optimizer.Report, error) {
	rows, err := s.db.Query(ctx, `
		SELECT iteration, agent_count, mean_trip_duration, mean_trip_length, mean_link_duration, dropped_agent_count
		FROM iteration_reports
		WHERE run_id = $1
		ORDER BY iteration ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("history: query iterations for run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []optimizer.Report
	for rows.Next() {
		var rep optimizer.Report
		if err := rows.Scan(&rep.Iteration, &rep.AgentCount, &rep.MeanTripDuration, &rep.MeanTripLength, &rep.MeanLinkDuration, &rep.DroppedAgentCount); err != nil {
			return nil, fmt.Errorf("history: scan iteration row for run %s: %w", runID, err)
		}
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate rows for run %s: %w", runID, err)
	}
	return out, nil
}

// Close is a no-op: the pool lifecycle is owned by whoever constructed DB.
func (s *PostgresStore) Close() {}
