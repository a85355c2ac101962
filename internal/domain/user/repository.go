package user

import "context"

// Repository defines the interface for user data access
type Repository interface {
	// Create inserts a user and returns it with its store-generated ID
	Create(ctx context.Context, params CreateUserParams) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context) ([]*User, error)
	// Delete returns the number of rows removed. A user that still owns items
	// cannot be deleted.
	Delete(ctx context.Context, id int64) (int64, error)
}
