package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"finsync/internal/domain/account"
)

// AccountLister lists the stored accounts of a user.
type AccountLister interface {
	ListAccountsByUserID(ctx context.Context, userID int64) ([]*account.Account, error)
}

type AccountHandler struct {
	accounts AccountLister
	log      *zap.Logger
}

func NewAccountHandler(accounts AccountLister, log *zap.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, log: log}
}

// HandleList handles GET /user/{id}/accounts
func (h *AccountHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	accounts, err := h.accounts.ListAccountsByUserID(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}
