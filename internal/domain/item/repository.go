package item

import "context"

// Repository defines the interface for item data access
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Item, error)
	GetByID(ctx context.Context, id string) (*Item, error)
	List(ctx context.Context) ([]*Item, error)
	ListByUserID(ctx context.Context, userID int64) ([]*Item, error)

	// ListByUserIDWithAccountTypes returns the user's items that own at least
	// one account of the given types.
	ListByUserIDWithAccountTypes(ctx context.Context, userID int64, types []string) ([]*Item, error)

	UpdateInstitution(ctx context.Context, id, institutionID, institutionName string) error

	// Delete returns the number of rows removed. An item that still owns
	// accounts cannot be deleted.
	Delete(ctx context.Context, id string) (int64, error)
}
