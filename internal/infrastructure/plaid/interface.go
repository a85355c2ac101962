package plaid

import (
	"context"
)

// ClientInterface defines the methods required from the Plaid API client
type ClientInterface interface {
	GetItem(ctx context.Context, accessToken string) (*ItemResponse, error)
	GetAccounts(ctx context.Context, accessToken string) (*AccountsResponse, error)
	GetTransactions(ctx context.Context, accessToken, startDate, endDate string) (*TransactionsResponse, error) // Exhausts pagination
	GetInstitutionByID(ctx context.Context, institutionID string) (*InstitutionResponse, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResponse, error)
	CreatePublicToken(ctx context.Context, accessToken string) (*PublicTokenResponse, error)
}
