package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"finsync/internal/domain/account"
)

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	db *DB
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// InsertIgnoringConflicts inserts all accounts in one statement. Rows whose ID
// already exists are skipped and keep their stored values.
func (r *AccountRepository) InsertIgnoringConflicts(ctx context.Context, accounts []account.Account) (int64, error) {
	if len(accounts) == 0 {
		return 0, nil
	}

	var b strings.Builder
	b.WriteString(`INSERT INTO accounts (id, item_id, balance, name, mask, type) VALUES `)

	args := make([]any, 0, len(accounts)*6)
	for i, a := range accounts {
		if i > 0 {
			b.WriteString(", ")
		}
		n := i * 6
		fmt.Fprintf(&b, "($%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6)
		args = append(args, a.ID, a.ItemID, a.Balance, a.Name, a.Mask, a.Type)
	}
	b.WriteString(` ON CONFLICT (id) DO NOTHING`)

	result, err := r.db.ExecContext(ctx, b.String(), args...)
	if err != nil {
		return 0, translate("postgres.InsertAccounts", fmt.Errorf("failed to insert accounts: %w", err))
	}
	return result.RowsAffected()
}

// ListByUserID retrieves all accounts under the user's items
func (r *AccountRepository) ListByUserID(ctx context.Context, userID int64) ([]*account.Account, error) {
	query := `
		SELECT a.id, a.item_id, i.institution_id, a.balance, a.name, a.mask, a.type
		FROM accounts a
		JOIN items i ON i.id = a.item_id
		WHERE i.user_id = $1
		ORDER BY a.item_id, a.id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, translate("postgres.ListAccounts", fmt.Errorf("failed to list accounts: %w", err))
	}
	defer rows.Close()

	accounts := []*account.Account{}
	for rows.Next() {
		var acc account.Account
		var institutionID, name, mask, accType sql.NullString

		if err := rows.Scan(&acc.ID, &acc.ItemID, &institutionID, &acc.Balance, &name, &mask, &accType); err != nil {
			return nil, translate("postgres.ListAccounts", fmt.Errorf("failed to scan account: %w", err))
		}
		acc.InstitutionID = institutionID.String
		acc.Name = name.String
		acc.Type = accType.String
		if mask.Valid {
			acc.Mask = &mask.String
		}
		accounts = append(accounts, &acc)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("postgres.ListAccounts", err)
	}

	return accounts, nil
}
