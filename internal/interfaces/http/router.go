package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Handlers groups every route handler the router mounts.
type Handlers struct {
	Users        *UserHandler
	Items        *ItemHandler
	Accounts     *AccountHandler
	Transactions *TransactionHandler
	Sync         *SyncHandler
}

// NewRouter mounts the API routes. The given middlewares run in order once a
// request id has been assigned.
func NewRouter(h Handlers, middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middlewares...)
	r.Use(chimw.Recoverer)

	r.Get("/health", HandleHealth)

	r.Get("/users", h.Users.HandleList)
	r.Put("/user", h.Users.HandleCreate)
	r.Delete("/user", h.Users.HandleDelete)

	r.Get("/items", h.Items.HandleList)
	r.Get("/item/{itemId}", h.Items.HandleGet)
	r.Put("/item", h.Items.HandleLink)
	r.Delete("/item", h.Items.HandleDelete)

	r.Route("/user/{id}", func(r chi.Router) {
		r.Get("/", h.Users.HandleDashboard)
		r.Get("/accounts", h.Accounts.HandleList)
		r.Get("/transactions", h.Transactions.HandleList)
		r.Get("/transactions/{page}", h.Transactions.HandleList)
		r.Post("/balances", h.Sync.HandleRecordBalances)
		r.Get("/balances", h.Sync.HandleListBalances)
		r.Post("/sync", h.Sync.HandleSync)
	})

	return r
}
