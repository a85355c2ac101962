package openfinance

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"finsync/internal/domain/item"
	"finsync/internal/domain/transaction"
	"finsync/internal/shared/errs"
)

// TransactionSyncResult contains the results of a transaction sync. On failure
// the counters describe the upserts that completed before the abort.
type TransactionSyncResult struct {
	UserID   int64  `json:"userId"`
	SyncID   string `json:"syncId,omitempty"`
	FromDate string `json:"fromDate"`
	ToDate   string `json:"toDate"`
	Found    int    `json:"found"`
	Upserted int    `json:"upserted"`
	Created  int    `json:"created"`
	Updated  int    `json:"updated"`
}

// TransactionSyncService pulls a user's recent transactions and upserts them
type TransactionSyncService struct {
	adapter  *Adapter
	itemRepo item.Repository
	txRepo   transaction.Repository
	log      *zap.Logger
}

// NewTransactionSyncService creates a new transaction sync service
func NewTransactionSyncService(adapter *Adapter, itemRepo item.Repository, txRepo transaction.Repository, log *zap.Logger) *TransactionSyncService {
	return &TransactionSyncService{
		adapter:  adapter,
		itemRepo: itemRepo,
		txRepo:   txRepo,
		log:      log,
	}
}

// SyncUserTransactions fetches the last days of transactions for every item
// of the user and upserts them one by one. The first failing upsert aborts the
// run; rows already written stay written.
func (s *TransactionSyncService) SyncUserTransactions(ctx context.Context, userID int64, days int) (*TransactionSyncResult, error) {
	const op = "openfinance.SyncUserTransactions"

	result := &TransactionSyncResult{UserID: userID, SyncID: SyncIDFromContext(ctx)}

	if days < 0 {
		return result, errs.Errorf(op, errs.KindInvalid, "days must not be negative, got %d", days)
	}

	tokens, err := AllAccessTokens(ctx, s.itemRepo, userID)
	if err != nil {
		return result, errs.E(op, "", err)
	}

	batch, err := s.adapter.ListTransactionsPastNDays(ctx, tokens, days)
	if err != nil {
		return result, errs.E(op, "", err)
	}
	result.FromDate = batch.FromDate
	result.ToDate = batch.ToDate
	result.Found = len(batch.Transactions)

	for _, tx := range batch.Transactions {
		if err := tx.Validate(); err != nil {
			return result, errs.E(op, errs.KindInvalid, fmt.Errorf("transaction %q: %w", tx.ID, err))
		}

		created, err := s.txRepo.Upsert(ctx, tx)
		if err != nil {
			s.log.Error("transaction upsert failed",
				zap.Int64("user_id", userID),
				zap.String("transaction_id", tx.ID),
				zap.Int("upserted", result.Upserted),
				zap.Error(err))
			return result, errs.E(op, "", err)
		}

		result.Upserted++
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}
	recordSynced(ctx, "transaction", int64(result.Upserted))

	s.log.Info("transactions synced",
		zap.Int64("user_id", userID),
		zap.String("sync_id", result.SyncID),
		zap.String("from", result.FromDate),
		zap.String("to", result.ToDate),
		zap.Int("processed", result.Upserted),
		zap.Int("created", result.Created))

	return result, nil
}
