package account

import (
	"context"
	"errors"
	"testing"

	"finsync/internal/shared/errs"
)

// MockRepository is a mock implementation of Repository interface
type MockRepository struct {
	InsertIgnoringConflictsFunc func(ctx context.Context, accounts []Account) (int64, error)
	ListByUserIDFunc            func(ctx context.Context, userID int64) ([]*Account, error)
}

func (m *MockRepository) InsertIgnoringConflicts(ctx context.Context, accounts []Account) (int64, error) {
	if m.InsertIgnoringConflictsFunc != nil {
		return m.InsertIgnoringConflictsFunc(ctx, accounts)
	}
	return int64(len(accounts)), nil
}

func (m *MockRepository) ListByUserID(ctx context.Context, userID int64) ([]*Account, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func TestInsertNew(t *testing.T) {
	ctx := context.Background()
	valid := Account{ID: "acc-1", ItemID: "item-1", Type: TypeDepository}

	tests := []struct {
		name      string
		accounts  []Account
		repo      *MockRepository
		want      int64
		wantKind  errs.Kind
		wantCalls int
	}{
		{
			name:      "Inserts valid accounts",
			accounts:  []Account{valid, {ID: "acc-2", ItemID: "item-1", Type: TypeCredit}},
			repo:      &MockRepository{},
			want:      2,
			wantCalls: 1,
		},
		{
			name:      "Empty batch skips the repository",
			accounts:  nil,
			repo:      &MockRepository{},
			want:      0,
			wantCalls: 0,
		},
		{
			name:      "Invalid account rejects the batch",
			accounts:  []Account{valid, {ID: "acc-2", ItemID: "item-1", Type: "BANK"}},
			repo:      &MockRepository{},
			wantKind:  errs.KindInvalid,
			wantCalls: 0,
		},
		{
			name:     "Repository error",
			accounts: []Account{valid},
			repo: &MockRepository{
				InsertIgnoringConflictsFunc: func(ctx context.Context, accounts []Account) (int64, error) {
					return 0, errors.New("connection reset")
				},
			},
			wantKind:  errs.KindInternal,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			inner := tt.repo.InsertIgnoringConflictsFunc
			tt.repo.InsertIgnoringConflictsFunc = func(ctx context.Context, accounts []Account) (int64, error) {
				calls++
				if inner != nil {
					return inner(ctx, accounts)
				}
				return int64(len(accounts)), nil
			}

			got, err := NewService(tt.repo).InsertNew(ctx, tt.accounts)
			if calls != tt.wantCalls {
				t.Errorf("repository calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantKind != "" {
				if errs.KindOf(err) != tt.wantKind {
					t.Fatalf("InsertNew() error kind = %q (%v), want %q", errs.KindOf(err), err, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("InsertNew() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("InsertNew() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestListAccountsByUserID_InvalidUser(t *testing.T) {
	_, err := NewService(&MockRepository{}).ListAccountsByUserID(context.Background(), 0)
	if !errs.Is(err, errs.KindInvalid) {
		t.Errorf("ListAccountsByUserID(0) error = %v, want kind invalid", err)
	}
}
