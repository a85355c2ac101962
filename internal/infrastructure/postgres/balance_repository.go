package postgres

import (
	"context"
	"fmt"
	"strings"

	"finsync/internal/domain/balance"
)

// BalanceRepository implements the balance.Repository interface for PostgreSQL
type BalanceRepository struct {
	db *DB
}

// NewBalanceRepository creates a new PostgreSQL balance history repository
func NewBalanceRepository(db *DB) *BalanceRepository {
	return &BalanceRepository{db: db}
}

// InsertBatch writes all points in one statement. A repeated (date, account)
// pair fails the batch with a conflict and nothing is written.
func (r *BalanceRepository) InsertBatch(ctx context.Context, points []balance.Point) (int64, error) {
	if len(points) == 0 {
		return 0, nil
	}

	var b strings.Builder
	b.WriteString(`INSERT INTO balance_history (date_of, account_id, balance) VALUES `)

	args := make([]any, 0, len(points)*3)
	for i, p := range points {
		if i > 0 {
			b.WriteString(", ")
		}
		n := i * 3
		fmt.Fprintf(&b, "($%d, $%d, $%d)", n+1, n+2, n+3)
		args = append(args, p.DateOf.Format(dateLayout), p.AccountID, p.Balance)
	}

	result, err := r.db.ExecContext(ctx, b.String(), args...)
	if err != nil {
		return 0, translate("postgres.InsertBalances", fmt.Errorf("failed to insert balance history: %w", err))
	}
	return result.RowsAffected()
}

// ListByUserID returns the user's snapshots, newest first.
func (r *BalanceRepository) ListByUserID(ctx context.Context, userID int64, limit int) ([]*balance.Point, error) {
	query := `
		SELECT bh.account_id, bh.date_of, bh.balance
		FROM balance_history bh
		JOIN accounts a ON a.id = bh.account_id
		JOIN items i ON i.id = a.item_id
		WHERE i.user_id = $1
		ORDER BY bh.date_of DESC, bh.account_id
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, translate("postgres.ListBalances", fmt.Errorf("failed to list balance history: %w", err))
	}
	defer rows.Close()

	points := []*balance.Point{}
	for rows.Next() {
		var p balance.Point
		if err := rows.Scan(&p.AccountID, &p.DateOf, &p.Balance); err != nil {
			return nil, translate("postgres.ListBalances", fmt.Errorf("failed to scan balance point: %w", err))
		}
		points = append(points, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("postgres.ListBalances", err)
	}

	return points, nil
}
