package openfinance

import (
	"context"

	"go.uber.org/zap"

	"finsync/internal/domain/account"
	"finsync/internal/domain/item"
	"finsync/internal/shared/errs"
)

// SyncResult contains the results of an account sync
type SyncResult struct {
	UserID        int64  `json:"userId"`
	SyncID        string `json:"syncId,omitempty"`
	AccountsFound int    `json:"accountsFound"`
	Inserted      int64  `json:"inserted"`
}

// AccountSyncService pulls a user's accounts upstream and stores the new ones
type AccountSyncService struct {
	adapter        *Adapter
	itemRepo       item.Repository
	accountService *account.Service
	log            *zap.Logger
}

// NewAccountSyncService creates a new account sync service
func NewAccountSyncService(adapter *Adapter, itemRepo item.Repository, accountService *account.Service, log *zap.Logger) *AccountSyncService {
	return &AccountSyncService{
		adapter:        adapter,
		itemRepo:       itemRepo,
		accountService: accountService,
		log:            log,
	}
}

// AllAccessTokens returns the access tokens of every item the user owns. A
// user with no items yields an empty slice.
func AllAccessTokens(ctx context.Context, repo item.Repository, userID int64) ([]string, error) {
	items, err := repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, errs.E("openfinance.AllAccessTokens", "", err)
	}
	return AccessTokens(items), nil
}

// SyncUserAccounts fetches the user's accounts and inserts those not yet
// stored. Existing accounts are left untouched, balances included.
func (s *AccountSyncService) SyncUserAccounts(ctx context.Context, userID int64) (*SyncResult, error) {
	const op = "openfinance.SyncUserAccounts"

	result := &SyncResult{UserID: userID, SyncID: SyncIDFromContext(ctx)}

	tokens, err := AllAccessTokens(ctx, s.itemRepo, userID)
	if err != nil {
		return result, errs.E(op, "", err)
	}
	if len(tokens) == 0 {
		s.log.Info("user has no linked items", zap.Int64("user_id", userID))
		return result, nil
	}

	accounts, err := s.adapter.ListAccounts(ctx, tokens)
	if err != nil {
		return result, errs.E(op, "", err)
	}
	result.AccountsFound = len(accounts)

	inserted, err := s.accountService.InsertNew(ctx, accounts)
	if err != nil {
		return result, errs.E(op, "", err)
	}
	result.Inserted = inserted
	recordSynced(ctx, "account", inserted)

	s.log.Info("accounts synced",
		zap.Int64("user_id", userID),
		zap.String("sync_id", result.SyncID),
		zap.Int("found", result.AccountsFound),
		zap.Int64("inserted", inserted))

	return result, nil
}
