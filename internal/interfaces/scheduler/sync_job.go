package scheduler

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"finsync/internal/domain/openfinance"
)

// Syncer runs the per-user sync workflows.
type Syncer interface {
	SyncUser(ctx context.Context, userID int64, days int) (*openfinance.UserSyncResult, error)
	SnapshotBalances(ctx context.Context, userID int64) (*openfinance.BalanceResult, error)
}

// UserSyncJob refreshes a user's accounts and then the last days of their
// transactions.
type UserSyncJob struct {
	userID int64
	days   int
	syncer Syncer
	log    *zap.Logger
}

func NewUserSyncJob(userID int64, days int, syncer Syncer, log *zap.Logger) *UserSyncJob {
	return &UserSyncJob{userID: userID, days: days, syncer: syncer, log: log}
}

func (j *UserSyncJob) Execute(ctx context.Context) error {
	result, err := j.syncer.SyncUser(ctx, j.userID, j.days)
	if err != nil {
		return fmt.Errorf("user sync failed: %w", err)
	}

	fields := []zap.Field{zap.Int64("user_id", j.userID), zap.String("sync_id", result.SyncID)}
	if result.Accounts != nil {
		fields = append(fields, zap.Int64("accounts_inserted", result.Accounts.Inserted))
	}
	if result.Transactions != nil {
		fields = append(fields,
			zap.Int("transactions_created", result.Transactions.Created),
			zap.Int("transactions_updated", result.Transactions.Updated))
	}
	j.log.Info("user sync finished", fields...)
	return nil
}

func (j *UserSyncJob) UserID() string {
	return strconv.FormatInt(j.userID, 10)
}

func (j *UserSyncJob) Description() string {
	return fmt.Sprintf("Sync accounts and %d days of transactions for user %d", j.days, j.userID)
}

// BalanceSnapshotJob records today's balances for a user.
type BalanceSnapshotJob struct {
	userID int64
	syncer Syncer
	log    *zap.Logger
}

func NewBalanceSnapshotJob(userID int64, syncer Syncer, log *zap.Logger) *BalanceSnapshotJob {
	return &BalanceSnapshotJob{userID: userID, syncer: syncer, log: log}
}

func (j *BalanceSnapshotJob) Execute(ctx context.Context) error {
	result, err := j.syncer.SnapshotBalances(ctx, j.userID)
	if err != nil {
		return fmt.Errorf("balance snapshot failed: %w", err)
	}

	j.log.Info("balance snapshot finished",
		zap.Int64("user_id", j.userID),
		zap.Int64("recorded", result.Recorded))
	return nil
}

func (j *BalanceSnapshotJob) UserID() string {
	return strconv.FormatInt(j.userID, 10)
}

func (j *BalanceSnapshotJob) Description() string {
	return fmt.Sprintf("Balance snapshot for user %d", j.userID)
}
