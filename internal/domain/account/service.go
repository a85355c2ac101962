package account

import (
	"context"
	"errors"
	"fmt"

	"finsync/internal/shared/errs"
)

// Service contains the business logic for account operations
type Service struct {
	repo Repository
}

// NewService creates a new account service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// InsertNew validates the accounts and inserts the ones not stored yet.
// A single invalid account rejects the whole batch.
func (s *Service) InsertNew(ctx context.Context, accounts []Account) (int64, error) {
	const op = "account.InsertNew"

	if len(accounts) == 0 {
		return 0, nil
	}

	for _, a := range accounts {
		if err := a.Validate(); err != nil {
			return 0, errs.E(op, errs.KindInvalid, fmt.Errorf("account %q: %w", a.ID, err))
		}
	}

	inserted, err := s.repo.InsertIgnoringConflicts(ctx, accounts)
	if err != nil {
		return 0, errs.E(op, "", err)
	}
	return inserted, nil
}

// ListAccountsByUserID retrieves all accounts for a specific user
func (s *Service) ListAccountsByUserID(ctx context.Context, userID int64) ([]*Account, error) {
	if userID <= 0 {
		return nil, errs.E("account.List", errs.KindInvalid, errors.New("valid user ID is required"))
	}

	return s.repo.ListByUserID(ctx, userID)
}
