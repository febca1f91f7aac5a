package permission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPermissionRepository implements PermissionRepository using PostgreSQL
type PostgresPermissionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPermissionRepository creates a new PostgreSQL permission repository
func NewPostgresPermissionRepository(pool *pgxpool.Pool) *PostgresPermissionRepository {
	return &PostgresPermissionRepository{
		pool: pool,
	}
}

// CreatePermission creates a new permission
func (r *PostgresPermissionRepository) CreatePermission(ctx context.Context, params CreatePermissionParams) (Permission, error) {
	metadata, err := json.Marshal(cloneMetadata(params.Metadata))
	if err != nil {
		return Permission{}, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `
		INSERT INTO permissions (name, metadata)
		VALUES ($1, $2)
		RETURNING id, name, metadata, created_at
	`

	p, err := scanPermission(r.pool.QueryRow(ctx, query, params.Name, metadata))
	if err != nil {
		return Permission{}, fmt.Errorf("failed to create permission: %w", err)
	}
	return p, nil
}

// GetPermission retrieves a permission by ID
func (r *PostgresPermissionRepository) GetPermission(ctx context.Context, id uuid.UUID) (Permission, error) {
	query := `
		SELECT id, name, metadata, created_at
		FROM permissions
		WHERE id = $1
	`

	p, err := scanPermission(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Permission{}, ErrPermissionNotFound
		}
		return Permission{}, fmt.Errorf("failed to get permission: %w", err)
	}
	return p, nil
}

// FindPermissions returns all permissions ordered by name
func (r *PostgresPermissionRepository) FindPermissions(ctx context.Context) ([]Permission, error) {
	query := `
		SELECT id, name, metadata, created_at
		FROM permissions
		ORDER BY name, id
	`

	return r.queryPermissions(ctx, query)
}

func (r *PostgresPermissionRepository) queryPermissions(ctx context.Context, query string, args ...interface{}) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	defer rows.Close()

	perms := []Permission{}
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	return perms, nil
}

// FindPermissionsByIDs returns the stored permissions among ids ordered by name
func (r *PostgresPermissionRepository) FindPermissionsByIDs(ctx context.Context, ids []uuid.UUID) ([]Permission, error) {
	if len(ids) == 0 {
		return []Permission{}, nil
	}

	query := `
		SELECT id, name, metadata, created_at
		FROM permissions
		WHERE id = ANY($1::uuid[])
		ORDER BY name, id
	`
	return r.queryPermissions(ctx, query, ids)
}

// FindMissing returns the ids that have no stored permission
func (r *PostgresPermissionRepository) FindMissing(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT requested.id
		FROM unnest($1::uuid[]) AS requested(id)
		LEFT JOIN permissions p ON p.id = requested.id
		WHERE p.id IS NULL
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to check permissions: %w", err)
	}
	defer rows.Close()

	var missing []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan permission id: %w", err)
		}
		missing = append(missing, id)
	}
	return missing, rows.Err()
}

func scanPermission(row pgx.Row) (Permission, error) {
	var p Permission
	var metadata []byte
	if err := row.Scan(&p.ID, &p.Name, &metadata, &p.CreatedAt); err != nil {
		return Permission{}, err
	}
	p.Metadata = Metadata{}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &p.Metadata); err != nil {
			return Permission{}, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	return p, nil
}
