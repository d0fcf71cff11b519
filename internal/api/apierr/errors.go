package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/wordparty/internal/model"
	"github.com/mcoot/wordparty/internal/services/scoring"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInvalidWord         = "INVALID_WORD"
	CodeNotHost             = "NOT_HOST"
	CodeNotInParty          = "NOT_IN_PARTY"
	CodePartyNotFound       = "PARTY_NOT_FOUND"
	CodePartyNotJoinable    = "PARTY_NOT_JOINABLE"
	CodeWrongPhase          = "WRONG_PHASE"
	CodeInsufficientPlayers = "INSUFFICIENT_PLAYERS"
	CodeRejoinRequired      = "REJOIN_REQUIRED"
	CodeMalformedRecord     = "MALFORMED_RECORD"
	CodeStoreUnavailable    = "STORE_UNAVAILABLE"
	CodeIdentityUnavailable = "IDENTITY_UNAVAILABLE"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, verr.Reason}}
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrPartyNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePartyNotFound, "Party not found"}}
	case errors.Is(err, model.ErrPartyNotJoinable):
		return &httpError{http.StatusConflict, APIError{CodePartyNotJoinable, "Party is not accepting new players"}}
	case errors.Is(err, model.ErrNotInParty):
		return &httpError{http.StatusConflict, APIError{CodeNotInParty, "Not in a party"}}
	case errors.Is(err, model.ErrNotHost):
		return &httpError{http.StatusForbidden, APIError{CodeNotHost, "Only the host can perform this action"}}
	case errors.Is(err, model.ErrWrongPhase):
		return &httpError{http.StatusConflict, APIError{CodeWrongPhase, "Not allowed in the current phase"}}
	case errors.Is(err, model.ErrInsufficientPlayers):
		return &httpError{http.StatusConflict, APIError{CodeInsufficientPlayers, "Not enough players to start"}}
	case errors.Is(err, model.ErrPermissionDenied), errors.Is(err, model.ErrRejoinRequired):
		return &httpError{http.StatusConflict, APIError{CodeRejoinRequired, "Please rejoin the party"}}
	case errors.Is(err, model.ErrMalformedRecord):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeMalformedRecord, "Party record is malformed"}}
	case errors.Is(err, model.ErrNetworkTransient):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeStoreUnavailable, "Store temporarily unreachable"}}
	case errors.Is(err, model.ErrIdentityUnavailable), errors.Is(err, model.ErrDictionaryNotLoaded):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeIdentityUnavailable, "Multiplayer is unavailable"}}

	// Map scoring errors
	case errors.Is(err, scoring.ErrLengthMismatch):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidWord, "Guess and target must be the same length"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
