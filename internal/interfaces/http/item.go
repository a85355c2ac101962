package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"finsync/internal/domain/item"
	"finsync/internal/shared/errs"
)

// ItemLinker links a new item from a Link public token.
type ItemLinker interface {
	Link(ctx context.Context, params item.LinkParams) (*item.Item, error)
}

type ItemHandler struct {
	items  item.Repository
	linker ItemLinker
	log    *zap.Logger
}

func NewItemHandler(items item.Repository, linker ItemLinker, log *zap.Logger) *ItemHandler {
	return &ItemHandler{items: items, linker: linker, log: log}
}

// HandleList handles GET /items
func (h *ItemHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.List(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleGet handles GET /item/{itemId}
func (h *ItemHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	it, err := h.items.GetByID(r.Context(), chi.URLParam(r, "itemId"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// HandleLink handles PUT /item
func (h *ItemHandler) HandleLink(w http.ResponseWriter, r *http.Request) {
	var params item.LinkParams
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	created, err := h.linker.Link(r.Context(), params)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

// HandleDelete handles DELETE /item
func (h *ItemHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	var body idBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	id := strings.TrimSpace(body.String())
	if id == "" {
		writeError(w, r, h.log, errs.Errorf("http.DeleteItem", errs.KindInvalid, "item id is required"))
		return
	}

	deleted, err := h.items.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
