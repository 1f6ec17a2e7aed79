package history

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/qmoney/internal/contracts"
)

// ErrRunNotFound is returned by GetRun for an unknown id
var ErrRunNotFound = errors.New("run not found")

// Schema creates the run history tables; pass it to database.DB.Migrate
var Schema = []string{
	`CREATE SCHEMA IF NOT EXISTS returns`,
	`CREATE TABLE IF NOT EXISTS returns.runs (
		id            BIGSERIAL PRIMARY KEY,
		end_date      DATE        NOT NULL,
		provider      TEXT        NOT NULL,
		result_count  INT         NOT NULL,
		failure_count INT         NOT NULL,
		generated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS returns.run_results (
		run_id            BIGINT NOT NULL REFERENCES returns.runs(id) ON DELETE CASCADE,
		rank              INT    NOT NULL,
		symbol            TEXT   NOT NULL,
		annualized_return DOUBLE PRECISION,
		total_return      DOUBLE PRECISION,
		PRIMARY KEY (run_id, rank)
	)`,
	`CREATE TABLE IF NOT EXISTS returns.run_failures (
		run_id   BIGINT NOT NULL REFERENCES returns.runs(id) ON DELETE CASCADE,
		position INT    NOT NULL,
		symbol   TEXT   NOT NULL,
		kind     TEXT   NOT NULL,
		message  TEXT   NOT NULL,
		PRIMARY KEY (run_id, position)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_generated_at ON returns.runs (generated_at DESC)`,
}

// RunSummary is one row of returns.runs
type RunSummary struct {
	ID           int64     `json:"id"`
	EndDate      time.Time `json:"endDate"`
	Provider     string    `json:"provider"`
	ResultCount  int       `json:"resultCount"`
	FailureCount int       `json:"failureCount"`
	GeneratedAt  time.Time `json:"generatedAt"`
}

// Repository stores finished batches
// ⭐ SSOT: 수익률 실행 이력 저장소는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new history repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveRun stores a report with its ordered results and failures in one transaction
func (r *Repository) SaveRun(ctx context.Context, report *contracts.Report) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var runID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO returns.runs (end_date, provider, result_count, failure_count, generated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, report.EndDate, report.Provider, len(report.Results), len(report.Failures), report.GeneratedAt).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	batch := &pgx.Batch{}
	for i, res := range report.Results {
		batch.Queue(`
			INSERT INTO returns.run_results (run_id, rank, symbol, annualized_return, total_return)
			VALUES ($1, $2, $3, $4, $5)
		`, runID, i+1, res.Symbol, nullableFloat(res.AnnualizedReturn), nullableFloat(res.TotalReturn))
	}
	for i, f := range report.Failures {
		batch.Queue(`
			INSERT INTO returns.run_failures (run_id, position, symbol, kind, message)
			VALUES ($1, $2, $3, $4, $5)
		`, runID, i+1, f.Symbol, f.Kind.String(), f.Message)
	}

	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return 0, fmt.Errorf("insert run rows: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	return runID, nil
}

// DefaultListLimit applies when ListRuns gets a non-positive limit
const DefaultListLimit = 20

// ListRuns returns the most recent runs, newest first
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `
		SELECT id, end_date, provider, result_count, failure_count, generated_at
		FROM returns.runs
		ORDER BY generated_at DESC, id DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]RunSummary, 0, limit)
	for rows.Next() {
		var s RunSummary
		if err := rows.Scan(&s.ID, &s.EndDate, &s.Provider, &s.ResultCount, &s.FailureCount, &s.GeneratedAt); err != nil {
			return nil, err
		}
		runs = append(runs, s)
	}
	return runs, rows.Err()
}

// GetRun rebuilds the report stored under id, in its original order
func (r *Repository) GetRun(ctx context.Context, id int64) (*contracts.Report, error) {
	report := &contracts.Report{
		Results:  []contracts.AnnualizedReturn{},
		Failures: []contracts.TaskFailure{},
	}

	err := r.pool.QueryRow(ctx, `
		SELECT end_date, provider, generated_at FROM returns.runs WHERE id = $1
	`, id).Scan(&report.EndDate, &report.Provider, &report.GeneratedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT symbol, annualized_return, total_return
		FROM returns.run_results WHERE run_id = $1 ORDER BY rank
	`, id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var (
			res               contracts.AnnualizedReturn
			annualized, total *float64
		)
		if err := rows.Scan(&res.Symbol, &annualized, &total); err != nil {
			rows.Close()
			return nil, err
		}
		res.AnnualizedReturn = floatOrNaN(annualized)
		res.TotalReturn = floatOrNaN(total)
		report.Results = append(report.Results, res)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx, `
		SELECT symbol, kind, message
		FROM returns.run_failures WHERE run_id = $1 ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			f    contracts.TaskFailure
			kind string
		)
		if err := rows.Scan(&f.Symbol, &kind, &f.Message); err != nil {
			return nil, err
		}
		if err := f.Kind.UnmarshalText([]byte(kind)); err != nil {
			return nil, err
		}
		report.Failures = append(report.Failures, f)
	}

	return report, rows.Err()
}

// nullableFloat stores NaN and ±Inf as NULL
func nullableFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func floatOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
