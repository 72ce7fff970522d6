package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/itsm-console/internal/domain"
)

// RoleRepository defines persistence access for role grants.
type RoleRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.RoleGrant, error)
	ListAll(ctx context.Context) ([]domain.RoleGrant, error)
	Insert(ctx context.Context, grant *domain.RoleGrant) error
	Delete(ctx context.Context, userID string, role domain.Role) error
}

type roleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository returns a Postgres-backed implementation.
func NewRoleRepository(pool *pgxpool.Pool) RoleRepository {
	return &roleRepository{pool: pool}
}

func (r *roleRepository) ListByUser(ctx context.Context, userID string) ([]domain.RoleGrant, error) {
	const query = `SELECT user_id, role, created_at FROM user_roles WHERE user_id=$1`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGrants(rows)
}

func (r *roleRepository) ListAll(ctx context.Context) ([]domain.RoleGrant, error) {
	const query = `SELECT user_id, role, created_at FROM user_roles`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGrants(rows)
}

// Insert adds a grant. A duplicate (user, role) pair surfaces as a
// unique-violation error from the store, not a silent success.
func (r *roleRepository) Insert(ctx context.Context, grant *domain.RoleGrant) error {
	const query = `INSERT INTO user_roles (user_id, role) VALUES ($1,$2) RETURNING created_at`
	return r.pool.QueryRow(ctx, query, grant.UserID, grant.Role).Scan(&grant.CreatedAt)
}

func (r *roleRepository) Delete(ctx context.Context, userID string, role domain.Role) error {
	const query = `DELETE FROM user_roles WHERE user_id=$1 AND role=$2`
	cmd, err := r.pool.Exec(ctx, query, userID, role)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanGrants(rows pgx.Rows) ([]domain.RoleGrant, error) {
	var result []domain.RoleGrant
	for rows.Next() {
		var grant domain.RoleGrant
		if err := rows.Scan(&grant.UserID, &grant.Role, &grant.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, grant)
	}
	return result, rows.Err()
}
