package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-faster/errors"

	authapp "github.com/dwikikusuma/collegemart/internal/auth/app"
	cartapp "github.com/dwikikusuma/collegemart/internal/cart/app"
	catalogapp "github.com/dwikikusuma/collegemart/internal/catalog/app"
	checkoutapp "github.com/dwikikusuma/collegemart/internal/checkout/app"
)

var errBadRequest = errors.New("bad request")

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// httpStatusFromError maps domain errors to a status and a stable code.
func httpStatusFromError(err error) (int, string) {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, cartapp.ErrInvalidInput),
		errors.Is(err, catalogapp.ErrInvalidInput),
		errors.Is(err, authapp.ErrInvalidInput),
		errors.Is(err, checkoutapp.ErrEmptyCart):
		return http.StatusBadRequest, "INVALID_ARGUMENT"
	case errors.Is(err, catalogapp.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, checkoutapp.ErrLoginRequired),
		errors.Is(err, authapp.ErrInvalidCredentials):
		return http.StatusUnauthorized, "UNAUTHENTICATED"
	case errors.Is(err, checkoutapp.ErrCheckoutUnavailable):
		return http.StatusNotImplemented, "UNIMPLEMENTED"
	case errors.Is(err, catalogapp.ErrUnavailable),
		errors.Is(err, authapp.ErrUnavailable):
		return http.StatusServiceUnavailable, "UNAVAILABLE"
	}
	return http.StatusInternalServerError, "INTERNAL"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := httpStatusFromError(err)
	body := errorBody{Error: code}
	if status < http.StatusInternalServerError {
		body.Details = err.Error()
	} else {
		s.log.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.String("request_id", RequestIDFromContext(r.Context())),
			slog.Any("err", err),
		)
	}
	writeJSON(w, status, body)
}
