package account

import "errors"

// Account types reported upstream.
const (
	TypeDepository = "depository"
	TypeCredit     = "credit"
	TypeLoan       = "loan"
	TypeInvestment = "investment"
	TypeOther      = "other"
)

var (
	accountTypes = map[string]struct{}{
		TypeDepository: {},
		TypeCredit:     {},
		TypeLoan:       {},
		TypeInvestment: {},
		TypeOther:      {},
	}

	// BalanceTrackedTypes are the account types that get daily balance snapshots.
	BalanceTrackedTypes = []string{TypeDepository, TypeOther}
)

// Domain errors
var (
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrAccountIDRequired  = errors.New("account ID is required")
	ErrItemIDRequired     = errors.New("item ID is required")
)

// Account is a bank account under an item. Balance is in cents.
// InstitutionID comes from the item and is not stored on the account row.
type Account struct {
	ID            string  `json:"id"`
	ItemID        string  `json:"itemId"`
	InstitutionID string  `json:"institutionId"`
	Balance       int64   `json:"balance"`
	Name          string  `json:"name"`
	Mask          *string `json:"mask"`
	Type          string  `json:"type"`
}

// Validate checks the fields the accounts table relies on.
func (a Account) Validate() error {
	if a.ID == "" {
		return ErrAccountIDRequired
	}
	if a.ItemID == "" {
		return ErrItemIDRequired
	}
	if !IsValidAccountType(a.Type) {
		return ErrInvalidAccountType
	}
	return nil
}

// TracksBalance reports whether the account gets daily balance snapshots.
func (a Account) TracksBalance() bool {
	return IsBalanceTracked(a.Type)
}

// IsValidAccountType checks if the provided account type is valid.
func IsValidAccountType(t string) bool {
	_, ok := accountTypes[t]
	return ok
}

// IsBalanceTracked checks if accounts of type t get daily balance snapshots.
func IsBalanceTracked(t string) bool {
	for _, tracked := range BalanceTrackedTypes {
		if t == tracked {
			return true
		}
	}
	return false
}
