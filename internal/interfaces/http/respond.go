package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"finsync/internal/shared/errs"
)

// errorBody is the single error envelope every handler writes.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    errs.Kind `json:"kind"`
	Message string    `json:"message"`
}

func statusFor(kind errs.Kind) int {
	switch kind {
	case errs.KindInvalid:
		return http.StatusBadRequest
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindConflict:
		return http.StatusConflict
	case errs.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes the envelope for err. Internal failures are logged and
// their details withheld from the client.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	kind := errs.KindOf(err)
	msg := err.Error()

	if kind == errs.KindInternal {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		msg = "internal error"
	} else {
		log.Info("request rejected",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("kind", string(kind)),
			zap.Error(err))
	}

	writeJSON(w, statusFor(kind), errorBody{Error: errorDetail{Kind: kind, Message: msg}})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errs.E("http.decode", errs.KindInvalid, errors.New("invalid request body"))
	}
	return nil
}

// userIDParam parses the {id} route parameter.
func userIDParam(r *http.Request) (int64, error) {
	return parseID(chi.URLParam(r, "id"))
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.Errorf("http.parseID", errs.KindInvalid, "invalid id %q", raw)
	}
	return id, nil
}

// idBody is the body of the delete endpoints. The id may arrive as a JSON
// number or string.
type idBody struct {
	ID json.RawMessage `json:"id"`
}

func (b idBody) String() string {
	return strings.Trim(strings.TrimSpace(string(b.ID)), `"`)
}
