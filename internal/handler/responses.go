package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/osse101/RaceBot_Go/internal/domain"
	"github.com/osse101/RaceBot_Go/internal/logger"
)

// Standard response types for consistent API responses

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response. Reason carries the stable
// rejection reason for bot clients.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// DataResponse represents a response with data payload
type DataResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// bufferPool reuses encode buffers across responses
var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 512))
	},
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	buf := bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		bufferPool.Put(buf)
	}()

	// Encode before writing headers so a failure can still become a 500
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response buffer", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// User-facing error messages for service errors
const (
	ErrMsgGenericServerError  = "Something went wrong"
	ErrMsgNotEnoughMoneyError = "Not enough money"
	ErrMsgUnknownTrackError   = "Unknown track. Use street, circuit, drag, offroad or drift"
	ErrMsgInvalidBetError     = "Invalid bet amount"
	ErrMsgSelfChallengeError  = "You can't challenge yourself"
	ErrMsgUnknownKeyTierError = "Unknown key type"
	ErrMsgChallengeGoneError  = "That challenge no longer exists"
	ErrMsgChallengeExpiredErr = "That challenge has expired"
	ErrMsgNotYourChallengeErr = "That challenge isn't for you"
	ErrMsgChallengePendingErr = "A challenge between you is already pending"
	ErrMsgRaceNotFoundError   = "Race not found"
	ErrMsgAlreadySettledError = "Race already settled"
	ErrMsgInvalidInputError   = "Invalid request. Please check your inputs."
)

// mapServiceErrorToUserMessage maps domain errors to an HTTP status and a
// user-facing message. Anything unrecognised becomes a generic 500.
func mapServiceErrorToUserMessage(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusBadRequest, ErrMsgNotEnoughMoneyError
	case errors.Is(err, domain.ErrUnknownTrackType):
		return http.StatusBadRequest, ErrMsgUnknownTrackError
	case errors.Is(err, domain.ErrInvalidBet):
		return http.StatusBadRequest, ErrMsgInvalidBetError
	case errors.Is(err, domain.ErrSelfChallenge):
		return http.StatusBadRequest, ErrMsgSelfChallengeError
	case errors.Is(err, domain.ErrUnknownKeyTier):
		return http.StatusBadRequest, ErrMsgUnknownKeyTierError
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrMsgInvalidInputError
	case errors.Is(err, domain.ErrChallengeNotFound):
		return http.StatusNotFound, ErrMsgChallengeGoneError
	case errors.Is(err, domain.ErrChallengeExpired):
		return http.StatusGone, ErrMsgChallengeExpiredErr
	case errors.Is(err, domain.ErrNotChallengeTarget):
		return http.StatusForbidden, ErrMsgNotYourChallengeErr
	case errors.Is(err, domain.ErrChallengeConflict):
		return http.StatusConflict, ErrMsgChallengePendingErr
	case errors.Is(err, domain.ErrRaceNotFound):
		return http.StatusNotFound, ErrMsgRaceNotFoundError
	case errors.Is(err, domain.ErrAlreadySettled):
		return http.StatusConflict, ErrMsgAlreadySettledError
	}
	return http.StatusInternalServerError, ErrMsgGenericServerError
}

// respondServiceError logs the failure and writes the mapped error response
func respondServiceError(w http.ResponseWriter, r *http.Request, action string, err error) {
	status, msg := mapServiceErrorToUserMessage(err)
	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error(action, "error", err)
	} else {
		log.Info(action, "error", err, "status", status)
	}
	respondJSON(w, status, ErrorResponse{Error: msg, Reason: domain.Reason(err)})
}
