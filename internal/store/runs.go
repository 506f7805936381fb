package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a run id is absent from the ledger.
var ErrNotFound = errors.New("run not found")

// RunRecord is one ledger row: the scenario identity, the run sizing,
// and the reduced result.
type RunRecord struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	ScenarioName   string    `json:"scenario_name"`
	ScenarioHash   string    `json:"scenario_hash"`
	Batches        int       `json:"batches"`
	Particles      int       `json:"particles"`
	TallyBins      int       `json:"tally_bins"`
	DoseRatePSvS   float64   `json:"dose_rate_psv_s"`
	StdDevPSvS     float64   `json:"std_dev_psv_s"`
	EngineBinary   string    `json:"engine_binary,omitempty"`
	StatepointPath string    `json:"statepoint_path,omitempty"`
}

// RecordRun inserts a run record. Duplicate run ids are silently
// ignored (idempotent re-record after a retried write).
func (s *Store) RecordRun(ctx context.Context, rec RunRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("record run: empty run id")
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, created_at, scenario_name, scenario_hash, batches, particles, tally_bins,
		 dose_rate_psv_s, std_dev_psv_s, engine_binary, statepoint_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		createdAt.UTC().Format(time.RFC3339Nano),
		rec.ScenarioName,
		rec.ScenarioHash,
		rec.Batches,
		rec.Particles,
		rec.TallyBins,
		rec.DoseRatePSvS,
		rec.StdDevPSvS,
		rec.EngineBinary,
		rec.StatepointPath,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0
// means no limit.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `
		SELECT id, created_at, scenario_name, scenario_hash, batches, particles,
		       tally_bins, dose_rate_psv_s, std_dev_psv_s, engine_binary, statepoint_path
		FROM runs
		ORDER BY created_at DESC, id DESC
	`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, query+" LIMIT ?", limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return out, nil
}

// GetRun returns one run by id, or ErrNotFound.
func (s *Store) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, scenario_name, scenario_hash, batches, particles,
		       tally_bins, dose_rate_psv_s, std_dev_psv_s, engine_binary, statepoint_path
		FROM runs WHERE id = ?
	`, id)

	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return &rec, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (RunRecord, error) {
	var rec RunRecord
	var createdAt string
	err := sc.Scan(
		&rec.ID,
		&createdAt,
		&rec.ScenarioName,
		&rec.ScenarioHash,
		&rec.Batches,
		&rec.Particles,
		&rec.TallyBins,
		&rec.DoseRatePSvS,
		&rec.StdDevPSvS,
		&rec.EngineBinary,
		&rec.StatepointPath,
	)
	if err != nil {
		return rec, err
	}
	rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return rec, fmt.Errorf("bad created_at %q: %w", createdAt, err)
	}
	return rec, nil
}
