package openfinance

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// UserSyncResult combines the account and transaction steps of a user sync.
type UserSyncResult struct {
	SyncID       string                 `json:"syncId"`
	Accounts     *SyncResult            `json:"accounts"`
	Transactions *TransactionSyncResult `json:"transactions,omitempty"`
}

// SyncService runs complete sync workflows for a user. Accounts are always
// synced before transactions since transactions reference them.
type SyncService struct {
	accounts     *AccountSyncService
	transactions *TransactionSyncService
	balances     *BalanceService
	publisher    Publisher
	locker       Locker
	log          *zap.Logger
}

// NewSyncService creates a sync service. nil publisher or locker fall back to
// no-op implementations.
func NewSyncService(
	accounts *AccountSyncService,
	transactions *TransactionSyncService,
	balances *BalanceService,
	publisher Publisher,
	locker Locker,
	log *zap.Logger,
) *SyncService {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	if locker == nil {
		locker = NoopLocker{}
	}
	return &SyncService{
		accounts:     accounts,
		transactions: transactions,
		balances:     balances,
		publisher:    publisher,
		locker:       locker,
		log:          log,
	}
}

// SyncUser syncs the user's accounts, then the last days of transactions.
func (s *SyncService) SyncUser(ctx context.Context, userID int64, days int) (*UserSyncResult, error) {
	ctx = WithSyncID(ctx)
	result := &UserSyncResult{SyncID: SyncIDFromContext(ctx)}

	release, err := s.locker.Acquire(ctx, fmt.Sprintf("sync:user:%d", userID))
	if err != nil {
		return result, err
	}
	defer release()

	result.Accounts, err = s.accounts.SyncUserAccounts(ctx, userID)
	if err != nil {
		return result, err
	}

	result.Transactions, err = s.transactions.SyncUserTransactions(ctx, userID, days)
	if err != nil {
		return result, err
	}

	s.publish(ctx, Event{Type: EventSyncCompleted, UserID: userID, SyncID: result.SyncID, Payload: result})
	return result, nil
}

// SnapshotBalances records today's balances for the user.
func (s *SyncService) SnapshotBalances(ctx context.Context, userID int64) (*BalanceResult, error) {
	ctx = WithSyncID(ctx)

	release, err := s.locker.Acquire(ctx, fmt.Sprintf("balances:user:%d", userID))
	if err != nil {
		return &BalanceResult{UserID: userID, SyncID: SyncIDFromContext(ctx)}, err
	}
	defer release()

	result, err := s.balances.RecordDailyBalances(ctx, userID)
	if err != nil {
		return result, err
	}

	s.publish(ctx, Event{Type: EventBalancesRecorded, UserID: userID, SyncID: result.SyncID, Payload: result})
	return result, nil
}

// publish failures are logged; the sync itself already succeeded.
func (s *SyncService) publish(ctx context.Context, event Event) {
	event.OccurredAt = time.Now().UTC()
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("failed to publish sync event",
			zap.String("type", event.Type),
			zap.Int64("user_id", event.UserID),
			zap.Error(err))
	}
}
