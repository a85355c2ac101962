package transaction

import (
	"testing"
)

func strPtr(s string) *string { return &s }

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tx      Transaction
		wantErr error
	}{
		{name: "nil json fields", tx: Transaction{ID: "tx-1", AccountID: "acc-1"}},
		{name: "valid json fields", tx: Transaction{ID: "tx-1", AccountID: "acc-1", Categories: strPtr(`["Food","Coffee"]`), Location: strPtr(`{"city":"SF"}`)}},
		{name: "missing id", tx: Transaction{AccountID: "acc-1"}, wantErr: ErrIDRequired},
		{name: "missing account", tx: Transaction{ID: "tx-1"}, wantErr: ErrAccountIDRequired},
		{name: "bad categories", tx: Transaction{ID: "tx-1", AccountID: "acc-1", Categories: strPtr("Food")}, wantErr: ErrInvalidCategories},
		{name: "empty location", tx: Transaction{ID: "tx-1", AccountID: "acc-1", Location: strPtr("")}, wantErr: ErrInvalidLocation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.tx.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
