package openfinance

import (
	"context"
	"sync"

	"finsync/internal/domain/account"
	"finsync/internal/domain/balance"
	"finsync/internal/domain/item"
	"finsync/internal/domain/transaction"
	"finsync/internal/infrastructure/plaid"
)

// MockClient implements plaid.ClientInterface
type MockClient struct {
	GetItemFunc             func(ctx context.Context, accessToken string) (*plaid.ItemResponse, error)
	GetAccountsFunc         func(ctx context.Context, accessToken string) (*plaid.AccountsResponse, error)
	GetTransactionsFunc     func(ctx context.Context, accessToken, startDate, endDate string) (*plaid.TransactionsResponse, error)
	GetInstitutionByIDFunc  func(ctx context.Context, institutionID string) (*plaid.InstitutionResponse, error)
	ExchangePublicTokenFunc func(ctx context.Context, publicToken string) (*plaid.ExchangeResponse, error)
	CreatePublicTokenFunc   func(ctx context.Context, accessToken string) (*plaid.PublicTokenResponse, error)

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockClient) record(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[method]++
}

// Calls returns how often method was invoked.
func (m *MockClient) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *MockClient) GetItem(ctx context.Context, accessToken string) (*plaid.ItemResponse, error) {
	m.record("GetItem")
	if m.GetItemFunc != nil {
		return m.GetItemFunc(ctx, accessToken)
	}
	return &plaid.ItemResponse{}, nil
}

func (m *MockClient) GetAccounts(ctx context.Context, accessToken string) (*plaid.AccountsResponse, error) {
	m.record("GetAccounts")
	if m.GetAccountsFunc != nil {
		return m.GetAccountsFunc(ctx, accessToken)
	}
	return &plaid.AccountsResponse{}, nil
}

func (m *MockClient) GetTransactions(ctx context.Context, accessToken, startDate, endDate string) (*plaid.TransactionsResponse, error) {
	m.record("GetTransactions")
	if m.GetTransactionsFunc != nil {
		return m.GetTransactionsFunc(ctx, accessToken, startDate, endDate)
	}
	return &plaid.TransactionsResponse{}, nil
}

func (m *MockClient) GetInstitutionByID(ctx context.Context, institutionID string) (*plaid.InstitutionResponse, error) {
	m.record("GetInstitutionByID")
	if m.GetInstitutionByIDFunc != nil {
		return m.GetInstitutionByIDFunc(ctx, institutionID)
	}
	return &plaid.InstitutionResponse{}, nil
}

func (m *MockClient) ExchangePublicToken(ctx context.Context, publicToken string) (*plaid.ExchangeResponse, error) {
	m.record("ExchangePublicToken")
	if m.ExchangePublicTokenFunc != nil {
		return m.ExchangePublicTokenFunc(ctx, publicToken)
	}
	return &plaid.ExchangeResponse{}, nil
}

func (m *MockClient) CreatePublicToken(ctx context.Context, accessToken string) (*plaid.PublicTokenResponse, error) {
	m.record("CreatePublicToken")
	if m.CreatePublicTokenFunc != nil {
		return m.CreatePublicTokenFunc(ctx, accessToken)
	}
	return &plaid.PublicTokenResponse{}, nil
}

// MockItemRepo implements item.Repository
type MockItemRepo struct {
	ListFunc                         func(ctx context.Context) ([]*item.Item, error)
	ListByUserIDFunc                 func(ctx context.Context, userID int64) ([]*item.Item, error)
	ListByUserIDWithAccountTypesFunc func(ctx context.Context, userID int64, types []string) ([]*item.Item, error)
	UpdateInstitutionFunc            func(ctx context.Context, id, institutionID, institutionName string) error
}

func (m *MockItemRepo) Create(ctx context.Context, params item.CreateParams) (*item.Item, error) {
	return nil, nil
}
func (m *MockItemRepo) GetByID(ctx context.Context, id string) (*item.Item, error) { return nil, nil }
func (m *MockItemRepo) List(ctx context.Context) ([]*item.Item, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}
func (m *MockItemRepo) ListByUserID(ctx context.Context, userID int64) ([]*item.Item, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}
func (m *MockItemRepo) ListByUserIDWithAccountTypes(ctx context.Context, userID int64, types []string) ([]*item.Item, error) {
	if m.ListByUserIDWithAccountTypesFunc != nil {
		return m.ListByUserIDWithAccountTypesFunc(ctx, userID, types)
	}
	return nil, nil
}
func (m *MockItemRepo) UpdateInstitution(ctx context.Context, id, institutionID, institutionName string) error {
	if m.UpdateInstitutionFunc != nil {
		return m.UpdateInstitutionFunc(ctx, id, institutionID, institutionName)
	}
	return nil
}
func (m *MockItemRepo) Delete(ctx context.Context, id string) (int64, error) { return 0, nil }

// MockAccountRepo implements account.Repository
type MockAccountRepo struct {
	Inserted []account.Account
}

func (m *MockAccountRepo) InsertIgnoringConflicts(ctx context.Context, accounts []account.Account) (int64, error) {
	m.Inserted = append(m.Inserted, accounts...)
	return int64(len(accounts)), nil
}
func (m *MockAccountRepo) ListByUserID(ctx context.Context, userID int64) ([]*account.Account, error) {
	return nil, nil
}

// MockTransactionRepo implements transaction.Repository
type MockTransactionRepo struct {
	UpsertFunc func(ctx context.Context, t transaction.Transaction) (bool, error)
	Upserted   []transaction.Transaction
}

func (m *MockTransactionRepo) Upsert(ctx context.Context, t transaction.Transaction) (bool, error) {
	if m.UpsertFunc != nil {
		created, err := m.UpsertFunc(ctx, t)
		if err == nil {
			m.Upserted = append(m.Upserted, t)
		}
		return created, err
	}
	m.Upserted = append(m.Upserted, t)
	return true, nil
}
func (m *MockTransactionRepo) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*transaction.Transaction, error) {
	return nil, nil
}

// MockBalanceRepo implements balance.Repository
type MockBalanceRepo struct {
	InsertBatchFunc func(ctx context.Context, points []balance.Point) (int64, error)
	Inserted        []balance.Point
}

func (m *MockBalanceRepo) InsertBatch(ctx context.Context, points []balance.Point) (int64, error) {
	if m.InsertBatchFunc != nil {
		return m.InsertBatchFunc(ctx, points)
	}
	m.Inserted = append(m.Inserted, points...)
	return int64(len(points)), nil
}
func (m *MockBalanceRepo) ListByUserID(ctx context.Context, userID int64, limit int) ([]*balance.Point, error) {
	return nil, nil
}

func itemsWithTokens(tokens ...string) []*item.Item {
	items := make([]*item.Item, 0, len(tokens))
	for i, tok := range tokens {
		items = append(items, &item.Item{ID: "item-" + tok, AccessToken: tok, UserID: int64(i + 1)})
	}
	return items
}
