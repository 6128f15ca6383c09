package payrollbatch

import (
	"context"
	"database/sql"
)

//go:generate mockgen -source=batch_repo.go -destination=mock/batch_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, batch *Batch) error
	FindByID(ctx context.Context, id string) (*Batch, error)
	MarkProcessing(ctx context.Context, id string) error
	// ResetProgress zeroes counters, resyncs the roster total and clears
	// recorded errors so an interrupted run can be reprocessed from the
	// start. Safe because payroll rows upsert by natural key.
	ResetProgress(ctx context.Context, id string, total int) error
	// IncrementProgress bumps processed plus either successful or failed
	// in one atomic statement; employment-granular, lost-update free.
	IncrementProgress(ctx context.Context, id string, successful bool) error
	RecordError(ctx context.Context, batchErr BatchError) error
	Finalize(ctx context.Context, id string, status string, reason *string) error
	ListErrors(ctx context.Context, batchID string) ([]BatchError, error)
}

type repository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

type execer interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

func (r *repository) conn() execer {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *repository) Create(ctx context.Context, batch *Batch) error {
	query := `
INSERT INTO bulk_payroll_batches (
	id, pay_period, filter_json, total_count, status
) VALUES ($1, $2, $3, $4, $5)
`
	_, err := r.conn().ExecContext(
		ctx, query,
		batch.ID, batch.PayPeriod, batch.FilterJSON, batch.TotalCount, batch.Status,
	)
	return err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Batch, error) {
	query := `
SELECT
	id::text,
	pay_period,
	filter_json,
	total_count,
	processed_count,
	successful_count,
	failed_count,
	status,
	failure_reason,
	created_at,
	updated_at
FROM bulk_payroll_batches
WHERE id = $1
`
	var b Batch
	err := r.conn().QueryRowContext(ctx, query, id).Scan(
		&b.ID,
		&b.PayPeriod,
		&b.FilterJSON,
		&b.TotalCount,
		&b.ProcessedCount,
		&b.SuccessfulCount,
		&b.FailedCount,
		&b.Status,
		&b.FailureReason,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) MarkProcessing(ctx context.Context, id string) error {
	query := `
UPDATE bulk_payroll_batches
SET status = $2, updated_at = NOW()
WHERE id = $1 AND status IN ($3, $2)
`
	_, err := r.conn().ExecContext(ctx, query, id, StatusProcessing, StatusPending)
	return err
}

func (r *repository) ResetProgress(ctx context.Context, id string, total int) error {
	query := `
UPDATE bulk_payroll_batches
SET total_count = $2,
	processed_count = 0,
	successful_count = 0,
	failed_count = 0,
	updated_at = NOW()
WHERE id = $1
`
	if _, err := r.conn().ExecContext(ctx, query, id, total); err != nil {
		return err
	}

	_, err := r.conn().ExecContext(ctx, `DELETE FROM bulk_payroll_batch_errors WHERE batch_id = $1`, id)
	return err
}

func (r *repository) IncrementProgress(ctx context.Context, id string, successful bool) error {
	query := `
UPDATE bulk_payroll_batches
SET processed_count = processed_count + 1,
	successful_count = successful_count + CASE WHEN $2 THEN 1 ELSE 0 END,
	failed_count = failed_count + CASE WHEN $2 THEN 0 ELSE 1 END,
	updated_at = NOW()
WHERE id = $1
`
	_, err := r.conn().ExecContext(ctx, query, id, successful)
	return err
}

func (r *repository) RecordError(ctx context.Context, batchErr BatchError) error {
	query := `
INSERT INTO bulk_payroll_batch_errors (
	id, batch_id, employment_id, staff_id, employee_name, allocation_id, message
) VALUES ($1, $2, $3, $4, $5, $6, LEFT($7, 500))
`
	_, err := r.conn().ExecContext(
		ctx, query,
		batchErr.ID, batchErr.BatchID, batchErr.EmploymentID,
		batchErr.StaffID, batchErr.EmployeeName, batchErr.AllocationID, batchErr.Message,
	)
	return err
}

func (r *repository) Finalize(ctx context.Context, id string, status string, reason *string) error {
	query := `
UPDATE bulk_payroll_batches
SET status = $2, failure_reason = $3, updated_at = NOW()
WHERE id = $1
`
	_, err := r.conn().ExecContext(ctx, query, id, status, reason)
	return err
}

func (r *repository) ListErrors(ctx context.Context, batchID string) ([]BatchError, error) {
	query := `
SELECT
	id::text,
	batch_id::text,
	employment_id::text,
	staff_id,
	employee_name,
	allocation_id::text,
	message,
	created_at
FROM bulk_payroll_batch_errors
WHERE batch_id = $1
ORDER BY created_at ASC
`
	rows, err := r.conn().QueryContext(ctx, query, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var errs []BatchError
	for rows.Next() {
		var e BatchError
		if err := rows.Scan(
			&e.ID,
			&e.BatchID,
			&e.EmploymentID,
			&e.StaffID,
			&e.EmployeeName,
			&e.AllocationID,
			&e.Message,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		errs = append(errs, e)
	}

	return errs, rows.Err()
}
