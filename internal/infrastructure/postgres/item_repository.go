package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"finsync/internal/domain/item"
	"finsync/internal/infrastructure/crypto"
)

// ItemRepository implements the item.Repository interface for PostgreSQL.
// Access tokens are encrypted before they are written and decrypted on read.
type ItemRepository struct {
	db        *DB
	encryptor *crypto.Encryptor
}

// NewItemRepository creates a new PostgreSQL item repository
func NewItemRepository(db *DB, encryptor *crypto.Encryptor) *ItemRepository {
	return &ItemRepository{db: db, encryptor: encryptor}
}

const itemColumns = `i.id, i.access_token, i.user_id, i.institution_id, i.institution_name`

func (r *ItemRepository) Create(ctx context.Context, params item.CreateParams) (*item.Item, error) {
	encrypted, err := r.encryptor.Encrypt(params.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}

	query := `
		INSERT INTO items (id, access_token, user_id, institution_id, institution_name)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = r.db.ExecContext(ctx, query,
		params.ID, encrypted, params.UserID,
		nullString(params.InstitutionID), nullString(params.InstitutionName),
	)
	if err != nil {
		return nil, translate("postgres.CreateItem", fmt.Errorf("failed to create item: %w", err))
	}

	return &item.Item{
		ID:              params.ID,
		AccessToken:     params.AccessToken,
		UserID:          params.UserID,
		InstitutionID:   params.InstitutionID,
		InstitutionName: params.InstitutionName,
	}, nil
}

func (r *ItemRepository) GetByID(ctx context.Context, id string) (*item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items i WHERE i.id = $1`

	it, err := r.scanItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translate("postgres.GetItem", fmt.Errorf("failed to get item %s: %w", id, err))
	}
	return it, nil
}

func (r *ItemRepository) List(ctx context.Context) ([]*item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items i ORDER BY i.user_id, i.id`
	return r.list(ctx, "postgres.ListItems", query)
}

func (r *ItemRepository) ListByUserID(ctx context.Context, userID int64) ([]*item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items i WHERE i.user_id = $1 ORDER BY i.id`
	return r.list(ctx, "postgres.ListItemsByUser", query, userID)
}

// ListByUserIDWithAccountTypes returns the user's items owning at least one
// stored account of the given types.
func (r *ItemRepository) ListByUserIDWithAccountTypes(ctx context.Context, userID int64, types []string) ([]*item.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items i
		WHERE i.user_id = $1
		  AND EXISTS (
			SELECT 1 FROM accounts a
			WHERE a.item_id = i.id AND a.type = ANY($2)
		  )
		ORDER BY i.id
	`
	return r.list(ctx, "postgres.ListItemsWithAccountTypes", query, userID, pq.Array(types))
}

func (r *ItemRepository) UpdateInstitution(ctx context.Context, id, institutionID, institutionName string) error {
	query := `
		UPDATE items
		SET institution_id = $2, institution_name = $3
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, nullString(institutionID), nullString(institutionName))
	if err != nil {
		return translate("postgres.UpdateItemInstitution", fmt.Errorf("failed to update item %s: %w", id, err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return translate("postgres.UpdateItemInstitution", err)
	}
	if n == 0 {
		return translate("postgres.UpdateItemInstitution", fmt.Errorf("item %s: %w", id, sql.ErrNoRows))
	}
	return nil
}

// Delete removes an item. It fails with a conflict while the item owns accounts.
func (r *ItemRepository) Delete(ctx context.Context, id string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return 0, translate("postgres.DeleteItem", fmt.Errorf("failed to delete item %s: %w", id, err))
	}
	return result.RowsAffected()
}

func (r *ItemRepository) list(ctx context.Context, op, query string, args ...any) ([]*item.Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(op, fmt.Errorf("failed to list items: %w", err))
	}
	defer rows.Close()

	items := []*item.Item{}
	for rows.Next() {
		it, err := r.scanItem(rows)
		if err != nil {
			return nil, translate(op, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(op, err)
	}
	return items, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *ItemRepository) scanItem(row scanner) (*item.Item, error) {
	var it item.Item
	var institutionID, institutionName sql.NullString
	var encrypted string

	if err := row.Scan(&it.ID, &encrypted, &it.UserID, &institutionID, &institutionName); err != nil {
		return nil, err
	}

	token, err := r.encryptor.Decrypt(encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token of item %s: %w", it.ID, err)
	}
	it.AccessToken = token
	it.InstitutionID = institutionID.String
	it.InstitutionName = institutionName.String
	return &it, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
