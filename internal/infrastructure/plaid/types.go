package plaid

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Item is the envelope Plaid returns alongside account and transaction data.
type Item struct {
	ItemID                string   `json:"item_id"`
	InstitutionID         string   `json:"institution_id"`
	Webhook               string   `json:"webhook"`
	AvailableProducts     []string `json:"available_products"`
	BilledProducts        []string `json:"billed_products"`
	ConsentExpirationTime *string  `json:"consent_expiration_time"`
	Error                 *Error   `json:"error"`
}

// Balances holds amounts in the account's currency as exact decimals.
type Balances struct {
	Available       decimal.NullDecimal `json:"available"`
	Current         decimal.NullDecimal `json:"current"`
	Limit           decimal.NullDecimal `json:"limit"`
	IsoCurrencyCode *string             `json:"iso_currency_code"`
}

type Account struct {
	AccountID    string   `json:"account_id"`
	Balances     Balances `json:"balances"`
	Mask         *string  `json:"mask"`
	Name         string   `json:"name"`
	OfficialName *string  `json:"official_name"`
	Type         string   `json:"type"`
	Subtype      *string  `json:"subtype"`
}

// Transaction is a raw Plaid transaction. Amount is positive for money
// leaving the account. Location is kept raw so it can be stored verbatim.
type Transaction struct {
	TransactionID   string          `json:"transaction_id"`
	AccountID       string          `json:"account_id"`
	Amount          decimal.Decimal `json:"amount"`
	IsoCurrencyCode *string         `json:"iso_currency_code"`
	Category        []string        `json:"category"`
	CategoryID      *string         `json:"category_id"`
	Date            string          `json:"date"`
	Location        json.RawMessage `json:"location"`
	Name            string          `json:"name"`
	MerchantName    *string         `json:"merchant_name"`
	Pending         bool            `json:"pending"`
}

type Institution struct {
	InstitutionID string   `json:"institution_id"`
	Name          string   `json:"name"`
	Products      []string `json:"products"`
	CountryCodes  []string `json:"country_codes"`
}

type ItemResponse struct {
	Item      Item   `json:"item"`
	RequestID string `json:"request_id"`
}

type AccountsResponse struct {
	Accounts  []Account `json:"accounts"`
	Item      Item      `json:"item"`
	RequestID string    `json:"request_id"`
}

type TransactionsResponse struct {
	Accounts          []Account     `json:"accounts"`
	Transactions      []Transaction `json:"transactions"`
	Item              Item          `json:"item"`
	TotalTransactions int           `json:"total_transactions"`
	RequestID         string        `json:"request_id"`
}

type InstitutionResponse struct {
	Institution Institution `json:"institution"`
	RequestID   string      `json:"request_id"`
}

type ExchangeResponse struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
	RequestID   string `json:"request_id"`
}

type PublicTokenResponse struct {
	PublicToken string `json:"public_token"`
	Expiration  string `json:"expiration"`
	RequestID   string `json:"request_id"`
}

// Error is the error body Plaid returns with any non-2xx status.
type Error struct {
	ErrorType      string  `json:"error_type"`
	ErrorCode      string  `json:"error_code"`
	ErrorMessage   string  `json:"error_message"`
	DisplayMessage *string `json:"display_message"`
	RequestID      string  `json:"request_id"`
	StatusCode     int     `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("plaid %s/%s (status %d): %s", e.ErrorType, e.ErrorCode, e.StatusCode, e.ErrorMessage)
}
