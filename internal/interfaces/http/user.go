package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"finsync/internal/domain/item"
	"finsync/internal/domain/user"
	"finsync/internal/shared/errs"
)

// ItemStatuser reports the link status of a user's items.
type ItemStatuser interface {
	Statuses(ctx context.Context, userID int64) ([]item.Status, error)
}

type UserHandler struct {
	users    user.Repository
	statuses ItemStatuser
	log      *zap.Logger
}

func NewUserHandler(users user.Repository, statuses ItemStatuser, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, statuses: statuses, log: log}
}

// DashboardResponse is the user with the link status of each item.
type DashboardResponse struct {
	User  *user.User    `json:"user"`
	Items []item.Status `json:"items"`
}

// HandleList handles GET /users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleCreate handles PUT /user
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var params user.CreateUserParams
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := params.Validate(); err != nil {
		writeError(w, r, h.log, errs.E("http.CreateUser", errs.KindInvalid, err))
		return
	}

	created, err := h.users.Create(r.Context(), params)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	h.log.Info("user created", zap.Int64("user_id", created.ID))
	writeJSON(w, http.StatusOK, created)
}

// HandleDelete handles DELETE /user
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	var body idBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	id, err := parseID(body.String())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	deleted, err := h.users.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

// HandleDashboard handles GET /user/{id}. Every item is validated upstream.
func (h *UserHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	statuses, err := h.statuses.Statuses(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, DashboardResponse{User: u, Items: statuses})
}
