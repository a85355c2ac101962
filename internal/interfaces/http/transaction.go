package http

import (
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"finsync/internal/domain/transaction"
	"finsync/internal/shared/errs"
)

// maxPage keeps page*transaction.PageSize from overflowing.
const maxPage = math.MaxInt / transaction.PageSize

type TransactionHandler struct {
	transactions transaction.Repository
	log          *zap.Logger
}

func NewTransactionHandler(transactions transaction.Repository, log *zap.Logger) *TransactionHandler {
	return &TransactionHandler{transactions: transactions, log: log}
}

// HandleList handles GET /user/{id}/transactions/{page}. Pages hold
// transaction.PageSize rows and start at 0.
func (h *TransactionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	page := 0
	if raw := chi.URLParam(r, "page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 0 || page > maxPage {
			writeError(w, r, h.log, errs.Errorf("http.ListTransactions", errs.KindInvalid, "invalid page %q", raw))
			return
		}
	}

	txs, err := h.transactions.ListByUserID(r.Context(), userID, transaction.PageSize, page*transaction.PageSize)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}
