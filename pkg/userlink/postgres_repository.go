package userlink

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresUserLinkRepository implements UserLinkRepository on the shared users table
type PostgresUserLinkRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserLinkRepository creates a new PostgreSQL user link repository
func NewPostgresUserLinkRepository(pool *pgxpool.Pool) *PostgresUserLinkRepository {
	return &PostgresUserLinkRepository{
		pool: pool,
	}
}

// GetUser retrieves a user by ID
func (r *PostgresUserLinkRepository) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	query := `
		SELECT id, email, name, role_id
		FROM users
		WHERE id = $1
	`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// FindUsers returns all users
func (r *PostgresUserLinkRepository) FindUsers(ctx context.Context) ([]User, error) {
	query := `
		SELECT id, email, name, role_id
		FROM users
		ORDER BY email, id
	`
	return r.queryUsers(ctx, query)
}

// FindUsersByRole returns the users whose role_id equals roleID
func (r *PostgresUserLinkRepository) FindUsersByRole(ctx context.Context, roleID uuid.UUID) ([]User, error) {
	query := `
		SELECT id, email, name, role_id
		FROM users
		WHERE role_id = $1
		ORDER BY email, id
	`
	return r.queryUsers(ctx, query, roleID)
}

// CountUsersByRole returns the number of holders per role id
func (r *PostgresUserLinkRepository) CountUsersByRole(ctx context.Context) (map[uuid.UUID]int, error) {
	query := `
		SELECT role_id, count(*)
		FROM users
		WHERE role_id IS NOT NULL
		GROUP BY role_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var roleID uuid.UUID
		var count int64
		if err := rows.Scan(&roleID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan user count: %w", err)
		}
		counts[roleID] = int(count)
	}
	return counts, rows.Err()
}

// SetRole sets the user's role_id
func (r *PostgresUserLinkRepository) SetRole(ctx context.Context, userID, roleID uuid.UUID) (User, error) {
	query := `
		UPDATE users
		SET role_id = $2
		WHERE id = $1
		RETURNING id, email, name, role_id
	`

	user, err := scanUser(r.pool.QueryRow(ctx, query, userID, roleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("failed to set user role: %w", err)
	}
	return user, nil
}

// ClearRole nulls the user's role_id if it equals expectedRoleID.
// The comparison and the write happen in one statement.
func (r *PostgresUserLinkRepository) ClearRole(ctx context.Context, userID, expectedRoleID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET role_id = NULL WHERE id = $1 AND role_id = $2`,
		userID, expectedRoleID)
	if err != nil {
		return fmt.Errorf("failed to clear user role: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// Nothing changed: tell a missing user apart from a different role
	var exists bool
	err = r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return ErrUserNotFound
	}
	return ErrRoleNotAssigned
}

// ClearRoleForAll nulls role_id on every holder of roleID
func (r *PostgresUserLinkRepository) ClearRoleForAll(ctx context.Context, roleID uuid.UUID) (int, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET role_id = NULL WHERE role_id = $1`, roleID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear role holders: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *PostgresUserLinkRepository) queryUsers(ctx context.Context, query string, args ...interface{}) ([]User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	var roleID uuid.NullUUID
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &roleID); err != nil {
		return User{}, err
	}
	if roleID.Valid {
		id := roleID.UUID
		user.RoleID = &id
	}
	return user, nil
}
