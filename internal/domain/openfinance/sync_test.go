package openfinance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"finsync/internal/domain/account"
	"finsync/internal/domain/balance"
	"finsync/internal/domain/item"
	"finsync/internal/domain/transaction"
	"finsync/internal/infrastructure/plaid"
	"finsync/internal/shared/errs"
)

func TestSyncUserAccounts_NoItemsMakesNoCalls(t *testing.T) {
	client := &MockClient{}
	itemRepo := &MockItemRepo{
		ListByUserIDFunc: func(ctx context.Context, userID int64) ([]*item.Item, error) {
			return []*item.Item{}, nil
		},
	}
	accountRepo := &MockAccountRepo{}
	svc := NewAccountSyncService(NewAdapter(client, 3, zap.NewNop()), itemRepo, account.NewService(accountRepo), zap.NewNop())

	result, err := svc.SyncUserAccounts(context.Background(), 1)
	require.NoError(t, err)

	assert.Zero(t, result.AccountsFound)
	assert.Zero(t, result.Inserted)
	assert.Zero(t, client.Calls("GetAccounts"))
	assert.Empty(t, accountRepo.Inserted)
}

func TestSyncUserAccounts_InsertsFetchedAccounts(t *testing.T) {
	client := &MockClient{
		GetAccountsFunc: func(ctx context.Context, token string) (*plaid.AccountsResponse, error) {
			return accountsFor(token, 2), nil
		},
	}
	itemRepo := &MockItemRepo{
		ListByUserIDFunc: func(ctx context.Context, userID int64) ([]*item.Item, error) {
			return itemsWithTokens("a", "b"), nil
		},
	}
	accountRepo := &MockAccountRepo{}
	svc := NewAccountSyncService(NewAdapter(client, 3, zap.NewNop()), itemRepo, account.NewService(accountRepo), zap.NewNop())

	result, err := svc.SyncUserAccounts(WithSyncID(context.Background()), 7)
	require.NoError(t, err)

	assert.Equal(t, int64(7), result.UserID)
	assert.NotEmpty(t, result.SyncID)
	assert.Equal(t, 4, result.AccountsFound)
	assert.Equal(t, int64(4), result.Inserted)
	assert.Len(t, accountRepo.Inserted, 4)
}

func TestSyncUserAccounts_UpstreamFailureIsReturned(t *testing.T) {
	client := &MockClient{
		GetAccountsFunc: func(ctx context.Context, token string) (*plaid.AccountsResponse, error) {
			return nil, errors.New("connection reset")
		},
	}
	itemRepo := &MockItemRepo{
		ListByUserIDFunc: func(ctx context.Context, userID int64) ([]*item.Item, error) {
			return itemsWithTokens("a"), nil
		},
	}
	accountRepo := &MockAccountRepo{}
	svc := NewAccountSyncService(NewAdapter(client, 3, zap.NewNop()), itemRepo, account.NewService(accountRepo), zap.NewNop())

	_, err := svc.SyncUserAccounts(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindUpstream))
	assert.Empty(t, accountRepo.Inserted)
}

func transactionsClient(txs ...plaid.Transaction) *MockClient {
	return &MockClient{
		GetTransactionsFunc: func(ctx context.Context, token, start, end string) (*plaid.TransactionsResponse, error) {
			return &plaid.TransactionsResponse{Transactions: txs}, nil
		},
	}
}

func TestSyncUserTransactions_CountsCreatedAndUpdated(t *testing.T) {
	client := transactionsClient(
		plaid.Transaction{TransactionID: "new", AccountID: "acc", Amount: decimal.RequireFromString("1"), Date: "2024-01-01"},
		plaid.Transaction{TransactionID: "old", AccountID: "acc", Amount: decimal.RequireFromString("2"), Date: "2024-01-02"},
		plaid.Transaction{TransactionID: "new2", AccountID: "acc", Amount: decimal.RequireFromString("3"), Date: "2024-01-03"},
	)
	itemRepo := &MockItemRepo{
		ListByUserIDFunc: func(ctx context.Context, userID int64) ([]*item.Item, error) {
			return itemsWithTokens("a"), nil
		},
	}
	txRepo := &MockTransactionRepo{
		UpsertFunc: func(ctx context.Context, tx transaction.Transaction) (bool, error) {
			return tx.ID != "old", nil
		},
	}
	svc := NewTransactionSyncService(NewAdapter(client, 3, zap.NewNop()), itemRepo, txRepo, zap.NewNop())

	result, err := svc.SyncUserTransactions(context.Background(), 1, 30)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Found)
	assert.Equal(t, 3, result.Upserted)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.NotEmpty(t, result.FromDate)
	assert.NotEmpty(t, result.ToDate)
}

func TestSyncUserTransactions_AbortsOnFirstUpsertError(t *testing.T) {
	client := transactionsClient(
		plaid.Transaction{TransactionID: "t1", AccountID: "acc", Date: "2024-01-01"},
		plaid.Transaction{TransactionID: "t2", AccountID: "missing", Date: "2024-01-01"},
		plaid.Transaction{TransactionID: "t3", AccountID: "acc", Date: "2024-01-01"},
	)
	itemRepo := &MockItemRepo{
		ListByUserIDFunc: func(ctx context.Context, userID int64) ([]*item.Item, error) {
			return itemsWithTokens("a"), nil
		},
	}
	txRepo := &MockTransactionRepo{
		UpsertFunc: func(ctx context.Context, tx transaction.Transaction) (bool, error) {
			if tx.AccountID == "missing" {
				return false, errs.E("postgres.Upsert", errs.KindConflict, errors.New("foreign key violation"))
			}
			return true, nil
		},
	}
	svc := NewTransactionSyncService(NewAdapter(client, 3, zap.NewNop()), itemRepo, txRepo, zap.NewNop())

	result, err := svc.SyncUserTransactions(context.Background(), 1, 30)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindConflict))
	assert.Equal(t, 3, result.Found)
	assert.Equal(t, 1, result.Upserted)
	require.Len(t, txRepo.Upserted, 1)
	assert.Equal(t, "t1", txRepo.Upserted[0].ID)
}

func TestSyncUserTransactions_NegativeDays(t *testing.T) {
	client := &MockClient{}
	svc := NewTransactionSyncService(NewAdapter(client, 3, zap.NewNop()), &MockItemRepo{}, &MockTransactionRepo{}, zap.NewNop())

	_, err := svc.SyncUserTransactions(context.Background(), 1, -1)
	assert.True(t, errs.Is(err, errs.KindInvalid))
	assert.Zero(t, client.Calls("GetTransactions"))
}

func TestRecordDailyBalances_SkipsCreditAccounts(t *testing.T) {
	client := &MockClient{
		GetAccountsFunc: func(ctx context.Context, token string) (*plaid.AccountsResponse, error) {
			return &plaid.AccountsResponse{
				Item: plaid.Item{ItemID: "item-a"},
				Accounts: []plaid.Account{
					{AccountID: "chk", Type: "depository", Balances: plaid.Balances{Current: decimal.NewNullDecimal(decimal.RequireFromString("250.255"))}},
					{AccountID: "cc", Type: "credit", Balances: plaid.Balances{Current: decimal.NewNullDecimal(decimal.RequireFromString("410"))}},
				},
			}, nil
		},
	}
	var gotTypes []string
	itemRepo := &MockItemRepo{
		ListByUserIDWithAccountTypesFunc: func(ctx context.Context, userID int64, types []string) ([]*item.Item, error) {
			gotTypes = types
			return itemsWithTokens("a"), nil
		},
	}
	balanceRepo := &MockBalanceRepo{}
	svc := NewBalanceService(NewAdapter(client, 3, zap.NewNop()), itemRepo, balanceRepo, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 18, 45, 0, 0, time.UTC) }

	result, err := svc.RecordDailyBalances(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, account.BalanceTrackedTypes, gotTypes)
	assert.Equal(t, int64(1), result.Recorded)
	require.Len(t, balanceRepo.Inserted, 1)

	point := balanceRepo.Inserted[0]
	assert.Equal(t, "chk", point.AccountID)
	assert.Equal(t, int64(25026), point.Balance)
	assert.True(t, point.DateOf.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))
}

func TestRecordDailyBalances_SameDayConflictSurfaces(t *testing.T) {
	client := &MockClient{
		GetAccountsFunc: func(ctx context.Context, token string) (*plaid.AccountsResponse, error) {
			return accountsFor(token, 1), nil
		},
	}
	itemRepo := &MockItemRepo{
		ListByUserIDWithAccountTypesFunc: func(ctx context.Context, userID int64, types []string) ([]*item.Item, error) {
			return itemsWithTokens("a"), nil
		},
	}
	balanceRepo := &MockBalanceRepo{
		InsertBatchFunc: func(ctx context.Context, points []balance.Point) (int64, error) {
			return 0, errs.E("postgres.InsertBatch", errs.KindConflict, errors.New("duplicate key"))
		},
	}
	svc := NewBalanceService(NewAdapter(client, 3, zap.NewNop()), itemRepo, balanceRepo, zap.NewNop())

	_, err := svc.RecordDailyBalances(context.Background(), 1)
	assert.True(t, errs.Is(err, errs.KindConflict))
}

func TestRecordDailyBalances_NoTrackedItems(t *testing.T) {
	client := &MockClient{}
	balanceRepo := &MockBalanceRepo{}
	svc := NewBalanceService(NewAdapter(client, 3, zap.NewNop()), &MockItemRepo{}, balanceRepo, zap.NewNop())

	result, err := svc.RecordDailyBalances(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, result.Recorded)
	assert.Zero(t, client.Calls("GetAccounts"))
	assert.Empty(t, balanceRepo.Inserted)
}

func TestUpdateItemInfo_CollectsPerItemErrors(t *testing.T) {
	client := &MockClient{
		GetItemFunc: func(ctx context.Context, token string) (*plaid.ItemResponse, error) {
			if token == "b" {
				return nil, errors.New("ITEM_NOT_FOUND")
			}
			return &plaid.ItemResponse{Item: plaid.Item{ItemID: "item-" + token, InstitutionID: "ins_" + token}}, nil
		},
		GetInstitutionByIDFunc: func(ctx context.Context, id string) (*plaid.InstitutionResponse, error) {
			return &plaid.InstitutionResponse{Institution: plaid.Institution{InstitutionID: id, Name: "Bank " + id}}, nil
		},
	}
	updated := map[string]string{}
	itemRepo := &MockItemRepo{
		ListFunc: func(ctx context.Context) ([]*item.Item, error) {
			return itemsWithTokens("a", "b", "c"), nil
		},
		UpdateInstitutionFunc: func(ctx context.Context, id, institutionID, name string) error {
			updated[id] = name
			return nil
		},
	}
	svc := NewItemSyncService(NewAdapter(client, 3, zap.NewNop()), itemRepo, zap.NewNop())

	result, err := svc.UpdateItemInfo(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 3, result.ItemsFound)
	assert.Equal(t, 2, result.Updated)
	assert.Contains(t, result.Errors, "item-b")
	assert.Equal(t, map[string]string{"item-a": "Bank ins_a", "item-c": "Bank ins_c"}, updated)
}

type recordingPublisher struct {
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, e Event) error {
	p.events = append(p.events, e)
	return p.err
}

type busyLocker struct{}

func (busyLocker) Acquire(ctx context.Context, key string) (func(), error) {
	return nil, errs.Errorf("lock", errs.KindConflict, "%s is held", key)
}

func newTestSyncService(client *MockClient, itemRepo *MockItemRepo, pub Publisher, locker Locker) *SyncService {
	adapter := NewAdapter(client, 3, zap.NewNop())
	log := zap.NewNop()
	return NewSyncService(
		NewAccountSyncService(adapter, itemRepo, account.NewService(&MockAccountRepo{}), log),
		NewTransactionSyncService(adapter, itemRepo, &MockTransactionRepo{}, log),
		NewBalanceService(adapter, itemRepo, &MockBalanceRepo{}, log),
		pub, locker, log,
	)
}

func TestSyncService_SyncUserPublishesOnSuccess(t *testing.T) {
	client := &MockClient{
		GetAccountsFunc: func(ctx context.Context, token string) (*plaid.AccountsResponse, error) {
			return accountsFor(token, 1), nil
		},
	}
	itemRepo := &MockItemRepo{
		ListByUserIDFunc: func(ctx context.Context, userID int64) ([]*item.Item, error) {
			return itemsWithTokens("a"), nil
		},
	}
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := newTestSyncService(client, itemRepo, pub, nil)

	result, err := svc.SyncUser(context.Background(), 3, 30)
	require.NoError(t, err)

	assert.NotEmpty(t, result.SyncID)
	assert.Equal(t, result.SyncID, result.Accounts.SyncID)
	assert.Equal(t, result.SyncID, result.Transactions.SyncID)
	require.Len(t, pub.events, 1)
	assert.Equal(t, EventSyncCompleted, pub.events[0].Type)
	assert.Equal(t, int64(3), pub.events[0].UserID)
}

func TestSyncService_LockHeld(t *testing.T) {
	client := &MockClient{}
	pub := &recordingPublisher{}
	svc := newTestSyncService(client, &MockItemRepo{}, pub, busyLocker{})

	_, err := svc.SyncUser(context.Background(), 1, 30)
	assert.True(t, errs.Is(err, errs.KindConflict))

	_, err = svc.SnapshotBalances(context.Background(), 1)
	assert.True(t, errs.Is(err, errs.KindConflict))

	assert.Empty(t, pub.events)
	assert.Zero(t, client.Calls("GetAccounts"))
}

func TestSyncService_AccountFailureSkipsTransactions(t *testing.T) {
	client := &MockClient{
		GetAccountsFunc: func(ctx context.Context, token string) (*plaid.AccountsResponse, error) {
			return nil, errors.New("timeout")
		},
	}
	itemRepo := &MockItemRepo{
		ListByUserIDFunc: func(ctx context.Context, userID int64) ([]*item.Item, error) {
			return itemsWithTokens("a"), nil
		},
	}
	svc := newTestSyncService(client, itemRepo, nil, nil)

	result, err := svc.SyncUser(context.Background(), 1, 30)
	require.Error(t, err)
	assert.Nil(t, result.Transactions)
	assert.Zero(t, client.Calls("GetTransactions"))
}

func TestWithSyncID_KeepsExisting(t *testing.T) {
	ctx := WithSyncID(context.Background())
	id := SyncIDFromContext(ctx)
	require.NotEmpty(t, id)
	assert.Equal(t, id, SyncIDFromContext(WithSyncID(ctx)))
	assert.Empty(t, SyncIDFromContext(context.Background()))
}

func TestAllAccessTokens(t *testing.T) {
	repo := &MockItemRepo{
		ListByUserIDFunc: func(ctx context.Context, userID int64) ([]*item.Item, error) {
			switch userID {
			case 1:
				return itemsWithTokens("access-a", "access-b"), nil
			case 2:
				return nil, nil
			default:
				return nil, errors.New("connection reset")
			}
		},
	}

	tokens, err := AllAccessTokens(context.Background(), repo, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"access-a", "access-b"}, tokens)

	tokens, err = AllAccessTokens(context.Background(), repo, 2)
	require.NoError(t, err)
	assert.Empty(t, tokens)

	_, err = AllAccessTokens(context.Background(), repo, 3)
	assert.Equal(t, errs.KindInternal, errs.KindOf(err))
}
