package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rental_quote_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ── Domain Models ─────────────────────────────────────────────────────────────

// Run is the database model for one orchestrator invocation.
type Run struct {
	ID         uuid.UUID       `db:"id"`
	InputText  string          `db:"input_text"`
	Seed       *int            `db:"seed"`
	Status     string          `db:"status"`
	CostUSD    decimal.Decimal `db:"cost_usd"`
	CreatedAt  time.Time       `db:"created_at"`
	FinishedAt *time.Time      `db:"finished_at"`
}

// Step is the database model for one recorded stage of a run.
type Step struct {
	ID         int64           `db:"id"`
	RunID      uuid.UUID       `db:"run_id"`
	Kind       string          `db:"kind"`
	Input      json.RawMessage `db:"input_json"`
	Output     json.RawMessage `db:"output_json"`
	DurationMs int             `db:"duration_ms"`
	CreatedAt  time.Time       `db:"created_at"`
}

// Run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// ── Repository ────────────────────────────────────────────────────────────────

const (
	runNotFoundMsg   = "run not found"
	quoteNotFoundMsg = "run not found or not completed"
)

// Repository provides database operations for runs, steps and the pricing catalog.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new quotes repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// StartRun inserts a run in the running state and returns its ID.
func (r *Repository) StartRun(ctx context.Context, inputText string, seed *int) (uuid.UUID, error) {
	id := uuid.New()
	query := `INSERT INTO runs (id, input_text, seed, status) VALUES ($1, $2, $3, $4)`
	if _, err := r.pool.Exec(ctx, query, id, inputText, seed, RunStatusRunning); err != nil {
		return uuid.Nil, apperr.Unavailable("failed to start run", err)
	}
	return id, nil
}

// AddStep appends a stage record. Input and output are stored as JSON.
func (r *Repository) AddStep(ctx context.Context, runID uuid.UUID, kind string, input, output any, durationMs int64) error {
	inJSON, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("encode %s step input: %w", kind, err)
	}
	outJSON, err := json.Marshal(output)
	if err != nil {
		return fmt.Errorf("encode %s step output: %w", kind, err)
	}

	query := `
		INSERT INTO steps (run_id, kind, input_json, output_json, duration_ms)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.pool.Exec(ctx, query, runID, kind, inJSON, outJSON, durationMs); err != nil {
		return apperr.Unavailable("failed to record step", err)
	}
	return nil
}

// FinishRun stamps the final status and cost.
func (r *Repository) FinishRun(ctx context.Context, runID uuid.UUID, status string, cost decimal.Decimal) error {
	query := `UPDATE runs SET status = $2, cost_usd = $3::numeric, finished_at = now() WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, runID, status, cost.StringFixed(2))
	if err != nil {
		return apperr.Unavailable("failed to finish run", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(runNotFoundMsg)
	}
	return nil
}

// GetRun retrieves a run header.
func (r *Repository) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	var cost string
	query := `
		SELECT id, input_text, seed, status, cost_usd::text, created_at, finished_at
		FROM runs WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, runID).Scan(
		&run.ID, &run.InputText, &run.Seed, &run.Status, &cost, &run.CreatedAt, &run.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(runNotFoundMsg)
		}
		return nil, apperr.Unavailable("failed to get run", err)
	}
	run.CostUSD, err = decimal.NewFromString(cost)
	if err != nil {
		return nil, fmt.Errorf("parse run cost: %w", err)
	}
	return &run, nil
}

// ListSteps returns every step of a run in insertion order.
func (r *Repository) ListSteps(ctx context.Context, runID uuid.UUID) ([]Step, error) {
	query := `
		SELECT id, run_id, kind, COALESCE(input_json, 'null'::jsonb), COALESCE(output_json, 'null'::jsonb), duration_ms, created_at
		FROM steps WHERE run_id = $1
		ORDER BY id ASC`

	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, apperr.Unavailable("failed to query steps", err)
	}
	defer rows.Close()

	steps := []Step{}
	for rows.Next() {
		var st Step
		var in, out []byte
		if err := rows.Scan(&st.ID, &st.RunID, &st.Kind, &in, &out, &st.DurationMs, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		st.Input = json.RawMessage(in)
		st.Output = json.RawMessage(out)
		steps = append(steps, st)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unavailable("failed to iterate steps", err)
	}
	return steps, nil
}

// LatestQuote returns the output of the newest step of one of kinds.
func (r *Repository) LatestQuote(ctx context.Context, runID uuid.UUID, kinds ...string) (json.RawMessage, error) {
	query := `
		SELECT output_json FROM steps
		WHERE run_id = $1 AND kind = ANY($2)
		ORDER BY id DESC
		LIMIT 1`

	var out []byte
	if err := r.pool.QueryRow(ctx, query, runID, kinds).Scan(&out); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(quoteNotFoundMsg)
		}
		return nil, apperr.Unavailable("failed to load latest quote", err)
	}
	return json.RawMessage(out), nil
}

// DeleteRunsBefore removes finished runs created before cutoff and returns their ids.
// Steps cascade.
func (r *Repository) DeleteRunsBefore(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	query := `DELETE FROM runs WHERE created_at < $1 AND status <> $2 RETURNING id`
	rows, err := r.pool.Query(ctx, query, cutoff, RunStatusRunning)
	if err != nil {
		return nil, fmt.Errorf("failed to delete old runs: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("failed to collect deleted runs: %w", err)
	}
	return ids, nil
}
