package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"finsync/internal/domain/transaction"
	"finsync/internal/shared/errs"
)

// TransactionRepository implements the transaction.Repository interface for PostgreSQL
type TransactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Upsert inserts the transaction or overwrites every column of an existing row
// with the same ID. xmax is zero only on rows this statement inserted.
func (r *TransactionRepository) Upsert(ctx context.Context, t transaction.Transaction) (bool, error) {
	const op = "postgres.UpsertTransaction"

	if err := t.Validate(); err != nil {
		return false, errs.E(op, errs.KindInvalid, err)
	}

	query := `
		INSERT INTO transactions (id, amount, account_id, categories, category_id, date_of, location, name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			amount      = EXCLUDED.amount,
			account_id  = EXCLUDED.account_id,
			categories  = EXCLUDED.categories,
			category_id = EXCLUDED.category_id,
			date_of     = EXCLUDED.date_of,
			location    = EXCLUDED.location,
			name        = EXCLUDED.name
		RETURNING (xmax = 0) AS created
	`

	var created bool
	err := r.db.QueryRowContext(ctx, query,
		t.ID, t.Amount, t.AccountID, t.Categories, t.CategoryID, t.DateOf.Format(dateLayout), t.Location, t.Name,
	).Scan(&created)
	if err != nil {
		return false, translate(op, fmt.Errorf("failed to upsert transaction %s: %w", t.ID, err))
	}
	return created, nil
}

// ListByUserID returns one page of the user's transactions, newest first.
func (r *TransactionRepository) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*transaction.Transaction, error) {
	const op = "postgres.ListTransactions"

	query := `
		SELECT t.id, t.account_id, t.amount, t.category_id, t.categories, t.date_of, t.location, t.name
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		JOIN items i ON i.id = a.item_id
		WHERE i.user_id = $1
		ORDER BY t.date_of DESC, t.id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, translate(op, fmt.Errorf("failed to list transactions: %w", err))
	}
	defer rows.Close()

	txs := []*transaction.Transaction{}
	for rows.Next() {
		var t transaction.Transaction
		var categoryID, categories, location, name sql.NullString
		var dateOf sql.NullTime

		if err := rows.Scan(&t.ID, &t.AccountID, &t.Amount, &categoryID, &categories, &dateOf, &location, &name); err != nil {
			return nil, translate(op, fmt.Errorf("failed to scan transaction: %w", err))
		}
		t.CategoryID = nullStringPtr(categoryID)
		t.Categories = nullStringPtr(categories)
		t.Location = nullStringPtr(location)
		t.Name = name.String
		if dateOf.Valid {
			t.DateOf = dateOf.Time
		}
		txs = append(txs, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(op, err)
	}

	return txs, nil
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
