package role

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// foreignKeyViolation is the SQLSTATE raised when role_permissions references a missing permission
const foreignKeyViolation = "23503"

// PostgresRoleRepository implements RoleRepository using PostgreSQL
type PostgresRoleRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRoleRepository creates a new PostgreSQL role repository
func NewPostgresRoleRepository(pool *pgxpool.Pool) *PostgresRoleRepository {
	return &PostgresRoleRepository{
		pool: pool,
	}
}

// CreateRole creates a new role with an empty permission set
func (r *PostgresRoleRepository) CreateRole(ctx context.Context, name string) (Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx,
		`INSERT INTO roles (name) VALUES ($1) RETURNING id, name, created_at`,
		name,
	).Scan(&role.ID, &role.Name, &role.CreatedAt)
	if err != nil {
		return Role{}, fmt.Errorf("failed to create role: %w", err)
	}
	return role, nil
}

// GetRole retrieves a role by ID
func (r *PostgresRoleRepository) GetRole(ctx context.Context, id uuid.UUID) (Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM roles WHERE id = $1`,
		id,
	).Scan(&role.ID, &role.Name, &role.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, ErrRoleNotFound
		}
		return Role{}, fmt.Errorf("failed to get role: %w", err)
	}
	return role, nil
}

// FindRoles returns all roles ordered by name
func (r *PostgresRoleRepository) FindRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM roles ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	roles := []Role{}
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

// DeleteRole deletes a role; role_permissions rows go with it through ON DELETE CASCADE
func (r *PostgresRoleRepository) DeleteRole(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRoleNotFound
	}
	return nil
}

// FindRolePermissionIDs returns the permission set of one role
func (r *PostgresRoleRepository) FindRolePermissionIDs(ctx context.Context, roleID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT rp.permission_id
		FROM roles r
		LEFT JOIN role_permissions rp ON rp.role_id = r.id
		WHERE r.id = $1
	`

	rows, err := r.pool.Query(ctx, query, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list role permissions: %w", err)
	}
	defer rows.Close()

	found := false
	ids := []uuid.UUID{}
	for rows.Next() {
		found = true
		var id uuid.NullUUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan role permission: %w", err)
		}
		if id.Valid {
			ids = append(ids, id.UUID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list role permissions: %w", err)
	}
	if !found {
		return nil, ErrRoleNotFound
	}
	return ids, nil
}

// FindAllRolePermissionIDs returns the permission set of every role
func (r *PostgresRoleRepository) FindAllRolePermissionIDs(ctx context.Context) (map[uuid.UUID][]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT role_id, permission_id FROM role_permissions`)
	if err != nil {
		return nil, fmt.Errorf("failed to list role permissions: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]uuid.UUID)
	for rows.Next() {
		var roleID, permissionID uuid.UUID
		if err := rows.Scan(&roleID, &permissionID); err != nil {
			return nil, fmt.Errorf("failed to scan role permission: %w", err)
		}
		result[roleID] = append(result[roleID], permissionID)
	}
	return result, rows.Err()
}

// ReplacePermissions rewrites the role's join rows in one transaction.
// The role row is locked first so concurrent replaces on the same role serialize.
func (r *PostgresRoleRepository) ReplacePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var id uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM roles WHERE id = $1 FOR UPDATE`, roleID).Scan(&id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrRoleNotFound
			}
			return fmt.Errorf("failed to lock role: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
			return fmt.Errorf("failed to clear role permissions: %w", err)
		}

		if len(permissionIDs) == 0 {
			return nil
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO role_permissions (role_id, permission_id)
			SELECT $1, p.id FROM unnest($2::uuid[]) AS p(id)
			ON CONFLICT DO NOTHING
		`, roleID, permissionIDs)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
				return fmt.Errorf("%w: %s", ErrUnknownPermission, pgErr.Detail)
			}
			return fmt.Errorf("failed to insert role permissions: %w", err)
		}
		return nil
	})
	return err
}

// RemovePermission deletes one edge
func (r *PostgresRoleRepository) RemovePermission(ctx context.Context, roleID, permissionID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2`,
		roleID, permissionID)
	if err != nil {
		return fmt.Errorf("failed to remove role permission: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	if _, err := r.GetRole(ctx, roleID); err != nil {
		return err
	}
	return ErrPermissionNotAssigned
}
