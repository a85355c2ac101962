package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"finsync/internal/domain/balance"
	"finsync/internal/domain/openfinance"
	"finsync/internal/shared/errs"
)

// Syncer runs sync workflows for one user.
type Syncer interface {
	SyncUser(ctx context.Context, userID int64, days int) (*openfinance.UserSyncResult, error)
	SnapshotBalances(ctx context.Context, userID int64) (*openfinance.BalanceResult, error)
}

// balanceHistoryLimit caps GET /user/{id}/balances.
const balanceHistoryLimit = 366

type SyncHandler struct {
	syncer      Syncer
	balances    balance.Repository
	defaultDays int
	log         *zap.Logger
}

func NewSyncHandler(syncer Syncer, balances balance.Repository, defaultDays int, log *zap.Logger) *SyncHandler {
	return &SyncHandler{syncer: syncer, balances: balances, defaultDays: defaultDays, log: log}
}

type syncRequest struct {
	Days *int `json:"days"`
}

// HandleSync handles POST /user/{id}/sync. The body is optional.
func (h *SyncHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	days := h.defaultDays
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, h.log, errs.E("http.Sync", errs.KindInvalid, errors.New("invalid request body")))
		return
	}
	if req.Days != nil {
		days = *req.Days
	}

	result, err := h.syncer.SyncUser(r.Context(), userID, days)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleRecordBalances handles POST /user/{id}/balances
func (h *SyncHandler) HandleRecordBalances(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	result, err := h.syncer.SnapshotBalances(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"written": result.Recorded})
}

// HandleListBalances handles GET /user/{id}/balances
func (h *SyncHandler) HandleListBalances(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	points, err := h.balances.ListByUserID(r.Context(), userID, balanceHistoryLimit)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}
