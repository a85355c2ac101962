package balance

import "context"

// Repository defines the interface for balance history data access
type Repository interface {
	// InsertBatch inserts all points in one statement. A point that repeats an
	// existing (account, date) pair fails the whole batch with a conflict.
	InsertBatch(ctx context.Context, points []Point) (int64, error)

	// ListByUserID returns the user's snapshots, newest first.
	ListByUserID(ctx context.Context, userID int64, limit int) ([]*Point, error)
}
