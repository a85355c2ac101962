package openfinance

import (
	"context"
	"time"

	"go.uber.org/zap"

	"finsync/internal/domain/account"
	"finsync/internal/domain/balance"
	"finsync/internal/domain/item"
	"finsync/internal/shared/errs"
)

// BalanceResult contains the results of a balance snapshot
type BalanceResult struct {
	UserID   int64     `json:"userId"`
	SyncID   string    `json:"syncId,omitempty"`
	DateOf   time.Time `json:"dateOf"`
	Recorded int64     `json:"recorded"`
}

// BalanceService records daily balance snapshots
type BalanceService struct {
	adapter     *Adapter
	itemRepo    item.Repository
	balanceRepo balance.Repository
	log         *zap.Logger
	now         func() time.Time
}

// NewBalanceService creates a new balance service
func NewBalanceService(adapter *Adapter, itemRepo item.Repository, balanceRepo balance.Repository, log *zap.Logger) *BalanceService {
	return &BalanceService{
		adapter:     adapter,
		itemRepo:    itemRepo,
		balanceRepo: balanceRepo,
		log:         log,
		now:         time.Now,
	}
}

// RecordDailyBalances stores today's balance for each depository and other
// account of the user. A second run on the same day fails with a conflict.
func (s *BalanceService) RecordDailyBalances(ctx context.Context, userID int64) (*BalanceResult, error) {
	const op = "openfinance.RecordDailyBalances"

	today := balance.Day(s.now())
	result := &BalanceResult{UserID: userID, SyncID: SyncIDFromContext(ctx), DateOf: today}

	items, err := s.itemRepo.ListByUserIDWithAccountTypes(ctx, userID, account.BalanceTrackedTypes)
	if err != nil {
		return result, errs.E(op, "", err)
	}

	accounts, err := s.adapter.ListAccounts(ctx, AccessTokens(items))
	if err != nil {
		return result, errs.E(op, "", err)
	}

	points := make([]balance.Point, 0, len(accounts))
	for _, acc := range accounts {
		if !acc.TracksBalance() {
			continue
		}
		points = append(points, balance.Point{AccountID: acc.ID, DateOf: today, Balance: acc.Balance})
	}
	if len(points) == 0 {
		return result, nil
	}

	recorded, err := s.balanceRepo.InsertBatch(ctx, points)
	if err != nil {
		return result, errs.E(op, "", err)
	}
	result.Recorded = recorded
	recordSynced(ctx, "balance", recorded)

	s.log.Info("balances recorded",
		zap.Int64("user_id", userID),
		zap.String("sync_id", result.SyncID),
		zap.Time("date_of", today),
		zap.Int64("recorded", recorded))

	return result, nil
}
