package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ramonehamilton/mana-tomb/internal/api/response"
	"github.com/ramonehamilton/mana-tomb/internal/auth"
	"github.com/ramonehamilton/mana-tomb/internal/decks"
)

var (
	errInvalidBody  = errors.New("invalid request body")
	errDeckIDNeeded = errors.New("deck ID is required")
	errInternal     = errors.New("internal server error")
)

// writeServiceError maps deck service errors to HTTP responses. Unknown
// errors are logged and reported as 500 without their details.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var verr *decks.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Invalid(w, verr.Field, err)
	case errors.Is(err, decks.ErrInvalidBoard):
		response.BadRequest(w, err)
	case errors.Is(err, decks.ErrInvalidCredentials):
		response.Unauthorized(w, err)
	case errors.Is(err, decks.ErrForbidden):
		response.Forbidden(w, err)
	case errors.Is(err, decks.ErrDeckNotFound),
		errors.Is(err, decks.ErrUserNotFound),
		errors.Is(err, decks.ErrCardNotFound),
		errors.Is(err, decks.ErrCardNotInDeck):
		response.NotFound(w, err)
	case errors.Is(err, decks.ErrUserExists):
		response.Conflict(w, err)
	default:
		logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		response.InternalError(w, errInternal)
	}
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errInvalidBody
	}
	return nil
}

// currentUserID returns the authenticated user or writes a 401.
func currentUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, auth.ErrNotAuthenticated)
	}
	return userID, ok
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
