package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// UserRepository defines persistence access for directory records. Upsert is
// keyed on the canonical email: created_at is written once at insert, and the
// stored password hash survives updates that carry no new hash.
type UserRepository interface {
	Upsert(ctx context.Context, user *domain.User) (inserted bool, err error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, role *string) ([]domain.User, error)
	UpdateRole(ctx context.Context, email string, role *string, suspended *bool) (int64, error)
	Delete(ctx context.Context, email string) (int64, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Upsert(ctx context.Context, user *domain.User) (bool, error) {
	const query = `
        INSERT INTO users (email, name, photo, role, designation, department, mobile_number, suspended, password_hash)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        ON CONFLICT (email) DO UPDATE SET
            name=EXCLUDED.name,
            photo=EXCLUDED.photo,
            role=EXCLUDED.role,
            designation=EXCLUDED.designation,
            department=EXCLUDED.department,
            mobile_number=EXCLUDED.mobile_number,
            suspended=EXCLUDED.suspended,
            password_hash=COALESCE(EXCLUDED.password_hash, users.password_hash),
            updated_at=NOW()
        RETURNING id, created_at, updated_at, (xmax = 0) AS inserted`

	var inserted bool
	if err := r.pool.QueryRow(ctx, query,
		user.Email,
		user.Name,
		user.Photo,
		user.Role,
		user.Designation,
		user.Department,
		user.MobileNumber,
		user.Suspended,
		user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt, &inserted); err != nil {
		return false, err
	}
	return inserted, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT id, email, name, photo, role, designation, department, mobile_number, suspended, password_hash, created_at, updated_at
        FROM users WHERE email=$1`

	var user domain.User
	if err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Photo,
		&user.Role,
		&user.Designation,
		&user.Department,
		&user.MobileNumber,
		&user.Suspended,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, role *string) ([]domain.User, error) {
	base := `
        SELECT id, email, name, photo, role, designation, department, mobile_number, suspended, password_hash, created_at, updated_at
        FROM users`
	args := []any{}
	query := base + ` ORDER BY created_at ASC`
	if role != nil {
		args = append(args, *role)
		query = base + ` WHERE role=$1 ORDER BY created_at ASC`
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.Name,
			&user.Photo,
			&user.Role,
			&user.Designation,
			&user.Department,
			&user.MobileNumber,
			&user.Suspended,
			&user.PasswordHash,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

// UpdateRole applies a partial update of role and suspension. A missing email
// is not an error; the caller receives the matched-row count as-is.
func (r *userRepository) UpdateRole(ctx context.Context, email string, role *string, suspended *bool) (int64, error) {
	sets := []string{}
	args := []any{}

	if role != nil {
		args = append(args, *role)
		sets = append(sets, fmt.Sprintf("role=$%d", len(args)))
	}
	if suspended != nil {
		args = append(args, *suspended)
		sets = append(sets, fmt.Sprintf("suspended=$%d", len(args)))
	}
	if len(sets) == 0 {
		return 0, nil
	}

	args = append(args, email)
	query := fmt.Sprintf("UPDATE users SET %s, updated_at=NOW() WHERE email=$%d",
		strings.Join(sets, ", "), len(args))

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *userRepository) Delete(ctx context.Context, email string) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE email=$1`, email)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
