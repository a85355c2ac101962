package transaction

import "context"

// Repository defines the interface for transaction data access
type Repository interface {
	// Upsert inserts the transaction or overwrites every column of the row with
	// the same ID. created is true when a new row was inserted.
	Upsert(ctx context.Context, t Transaction) (created bool, err error)

	// ListByUserID returns the user's transactions, newest first.
	ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*Transaction, error)
}
