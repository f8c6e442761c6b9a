package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// TransitionUpdate describes the single-statement status change applied by
// ApplyTransition. The update is conditional on PrevStatus so that two
// transitions validated against the same stale status cannot both apply.
type TransitionUpdate struct {
	NextStatus    domain.ComplaintStatus
	PrevStatus    domain.ComplaintStatus
	EmployeeID    *string
	SetEmployee   bool
	ClearEmployee bool
	HistoryEntry  *domain.HistoryEntry
}

// ComplaintRepository encapsulates complaint persistence.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	ListAll(ctx context.Context) ([]domain.Complaint, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Complaint, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]domain.Complaint, error)
	ApplyTransition(ctx context.Context, id string, update TransitionUpdate) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository instantiates repository.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (email, status, employee_id, history, details)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`

	history := complaint.History
	if history == nil {
		history = []domain.HistoryEntry{}
	}
	details := complaint.Details
	if details == nil {
		details = map[string]any{}
	}
	return r.pool.QueryRow(ctx, query,
		complaint.Email,
		complaint.Status,
		complaint.EmployeeID,
		history,
		details,
	).Scan(&complaint.ID, &complaint.CreatedAt, &complaint.UpdatedAt)
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	const query = `
        SELECT id, email, status, employee_id, history, details, created_at, updated_at
        FROM complaints WHERE id=$1`

	var complaint domain.Complaint
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&complaint.ID,
		&complaint.Email,
		&complaint.Status,
		&complaint.EmployeeID,
		&complaint.History,
		&complaint.Details,
		&complaint.CreatedAt,
		&complaint.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (r *complaintRepository) ListAll(ctx context.Context) ([]domain.Complaint, error) {
	const query = `
        SELECT id, email, status, employee_id, history, details, created_at, updated_at
        FROM complaints ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (r *complaintRepository) ListByEmail(ctx context.Context, email string) ([]domain.Complaint, error) {
	const query = `
        SELECT id, email, status, employee_id, history, details, created_at, updated_at
        FROM complaints WHERE email=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (r *complaintRepository) ListByEmployee(ctx context.Context, employeeID string) ([]domain.Complaint, error) {
	const query = `
        SELECT id, email, status, employee_id, history, details, created_at, updated_at
        FROM complaints WHERE employee_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

// ApplyTransition performs the status change, assignee bookkeeping and history
// prepend as one conditional statement guarded by the validated prior status.
// A zero row count with no error means the guard failed.
func (r *complaintRepository) ApplyTransition(ctx context.Context, id string, update TransitionUpdate) (int64, error) {
	const query = `
        UPDATE complaints
        SET status = $1,
            employee_id = CASE
                WHEN $2::bool THEN $3::uuid
                WHEN $4::bool THEN NULL
                ELSE employee_id
            END,
            history = CASE
                WHEN $5::jsonb IS NULL THEN history
                ELSE $5::jsonb || history
            END,
            updated_at = NOW()
        WHERE id = $6 AND status = $7`

	var entryJSON []byte
	if update.HistoryEntry != nil {
		data, err := json.Marshal([]domain.HistoryEntry{*update.HistoryEntry})
		if err != nil {
			return 0, err
		}
		entryJSON = data
	}

	cmd, err := r.pool.Exec(ctx, query,
		update.NextStatus,
		update.SetEmployee,
		update.EmployeeID,
		update.ClearEmployee,
		entryJSON,
		id,
		update.PrevStatus,
	)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *complaintRepository) Delete(ctx context.Context, id string) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM complaints WHERE id=$1`, id)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanComplaints(rows pgx.Rows) ([]domain.Complaint, error) {
	var result []domain.Complaint
	for rows.Next() {
		var complaint domain.Complaint
		if err := rows.Scan(
			&complaint.ID,
			&complaint.Email,
			&complaint.Status,
			&complaint.EmployeeID,
			&complaint.History,
			&complaint.Details,
			&complaint.CreatedAt,
			&complaint.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, complaint)
	}
	return result, rows.Err()
}
