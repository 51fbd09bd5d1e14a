package http

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/krypton/internal/common"
)

const serverErrorMessage = "Server error"

// statusFor maps a service error to an HTTP status and the message shown to
// the client. Unknown errors are 500 with a generic message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrDuplicateIdentity):
		return http.StatusBadRequest, "User already exists"
	case errors.Is(err, common.ErrDuplicateEntry):
		return http.StatusBadRequest, "Crypto already in watchlist"
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, "Token expired"
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid token"
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "Access token required"
	default:
		return http.StatusInternalServerError, serverErrorMessage
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		h.log.Debug(r.Context(), "request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	respondError(w, status, msg)
}
