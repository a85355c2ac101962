package postgres

import (
	"context"
	"fmt"

	"finsync/internal/domain/user"
)

// UserRepository implements the user.Repository interface for PostgreSQL
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user and returns it with its generated ID
func (r *UserRepository) Create(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
	query := `
		INSERT INTO users (display_name)
		VALUES ($1)
		RETURNING id, display_name
	`

	var u user.User
	if err := r.db.QueryRowContext(ctx, query, params.DisplayName).Scan(&u.ID, &u.DisplayName); err != nil {
		return nil, translate("postgres.CreateUser", fmt.Errorf("failed to create user: %w", err))
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	query := `SELECT id, display_name FROM users WHERE id = $1`

	var u user.User
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.DisplayName); err != nil {
		return nil, translate("postgres.GetUser", fmt.Errorf("failed to get user %d: %w", id, err))
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, display_name FROM users ORDER BY id`)
	if err != nil {
		return nil, translate("postgres.ListUsers", fmt.Errorf("failed to list users: %w", err))
	}
	defer rows.Close()

	users := []*user.User{}
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.DisplayName); err != nil {
			return nil, translate("postgres.ListUsers", fmt.Errorf("failed to scan user: %w", err))
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("postgres.ListUsers", err)
	}
	return users, nil
}

// Delete removes a user. It fails with a conflict while the user owns items.
func (r *UserRepository) Delete(ctx context.Context, id int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return 0, translate("postgres.DeleteUser", fmt.Errorf("failed to delete user %d: %w", id, err))
	}
	return result.RowsAffected()
}
