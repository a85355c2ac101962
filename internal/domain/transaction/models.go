package transaction

import (
	"encoding/json"
	"errors"
	"time"
)

// PageSize is the number of transactions per page when listing.
const PageSize = 30

var (
	ErrIDRequired        = errors.New("transaction ID is required")
	ErrAccountIDRequired = errors.New("account ID is required")
	ErrInvalidCategories = errors.New("categories must be valid JSON")
	ErrInvalidLocation   = errors.New("location must be valid JSON")
)

// Transaction is a stored transaction. Amount is in cents, positive for money
// leaving the account. Categories and Location hold serialized JSON or nil.
type Transaction struct {
	ID         string    `json:"id"`
	AccountID  string    `json:"accountId"`
	Amount     int64     `json:"amount"`
	CategoryID *string   `json:"categoryId"`
	Categories *string   `json:"categories"`
	DateOf     time.Time `json:"dateOf"`
	Location   *string   `json:"location"`
	Name       string    `json:"name"`
}

// Validate rejects a transaction whose serialized fields are not JSON.
// Nil fields are allowed.
func (t Transaction) Validate() error {
	if t.ID == "" {
		return ErrIDRequired
	}
	if t.AccountID == "" {
		return ErrAccountIDRequired
	}
	if t.Categories != nil && !json.Valid([]byte(*t.Categories)) {
		return ErrInvalidCategories
	}
	if t.Location != nil && !json.Valid([]byte(*t.Location)) {
		return ErrInvalidLocation
	}
	return nil
}
