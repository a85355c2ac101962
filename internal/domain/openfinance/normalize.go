package openfinance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"finsync/internal/domain/account"
	"finsync/internal/domain/transaction"
	"finsync/internal/infrastructure/plaid"
)

// NormalizeAccount maps an upstream account to a storage record. Balance is
// the current balance in cents, falling back to available, then zero.
func NormalizeAccount(acc plaid.Account, it plaid.Item) account.Account {
	var balance int64
	switch {
	case acc.Balances.Current.Valid:
		balance = ToCents(acc.Balances.Current.Decimal)
	case acc.Balances.Available.Valid:
		balance = ToCents(acc.Balances.Available.Decimal)
	}

	return account.Account{
		ID:            acc.AccountID,
		ItemID:        it.ItemID,
		InstitutionID: it.InstitutionID,
		Balance:       balance,
		Name:          acc.Name,
		Mask:          acc.Mask,
		Type:          normalizeAccountType(acc.Type),
	}
}

// normalizeAccountType folds upstream types outside the stored set into the
// closest stored type.
func normalizeAccountType(t string) string {
	if account.IsValidAccountType(t) {
		return t
	}
	if t == "brokerage" {
		return account.TypeInvestment
	}
	return account.TypeOther
}

// NormalizeTransaction maps an upstream transaction to a storage record.
func NormalizeTransaction(tx plaid.Transaction) (transaction.Transaction, error) {
	dateOf, err := time.Parse(dateLayout, tx.Date)
	if err != nil {
		return transaction.Transaction{}, fmt.Errorf("transaction %s: bad date %q: %w", tx.TransactionID, tx.Date, err)
	}

	categories, err := ToJSONStringOrNull(tx.Category)
	if err != nil {
		return transaction.Transaction{}, fmt.Errorf("transaction %s: %w", tx.TransactionID, err)
	}

	return transaction.Transaction{
		ID:         tx.TransactionID,
		AccountID:  tx.AccountID,
		Amount:     ToCents(tx.Amount),
		CategoryID: tx.CategoryID,
		Categories: categories,
		DateOf:     dateOf,
		Location:   rawJSONOrNull(tx.Location),
		Name:       tx.Name,
	}, nil
}

// ToCents converts a currency amount to integer cents, rounding half away
// from zero.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// ToJSONStringOrNull serializes v, returning nil for a nil value or one that
// serializes to JSON null.
func ToJSONStringOrNull(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize value: %w", err)
	}
	if string(b) == "null" {
		return nil, nil
	}
	s := string(b)
	return &s, nil
}

func rawJSONOrNull(raw json.RawMessage) *string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil
	}
	s := string(trimmed)
	return &s
}
