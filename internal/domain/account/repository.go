package account

import "context"

// Repository defines the interface for account data access
// This interface is defined in the domain layer, but implemented in the infrastructure layer
type Repository interface {
	// InsertIgnoringConflicts inserts the accounts and skips any whose ID already
	// exists. Existing rows are not updated. Returns the number inserted.
	InsertIgnoringConflicts(ctx context.Context, accounts []Account) (int64, error)

	// ListByUserID retrieves all accounts under the user's items
	ListByUserID(ctx context.Context, userID int64) ([]*Account, error)
}
