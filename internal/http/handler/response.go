package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/authbridge/authbridge/internal/cognito"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
		},
	})
}

// outcomeStatus maps reset-flow outcome variants to HTTP status codes.
var outcomeStatus = map[cognito.Outcome]int{
	cognito.OutcomeInvalidUser:     http.StatusBadRequest,
	cognito.OutcomeInvalidToken:    http.StatusBadRequest,
	cognito.OutcomeInvalidPassword: http.StatusUnprocessableEntity,
	cognito.OutcomeExceeded:        http.StatusTooManyRequests,
}

// WriteOutcome renders a tagged reset-flow outcome: completed variants get a
// status envelope, failure variants an error response.
func WriteOutcome(w http.ResponseWriter, outcome cognito.Outcome) {
	if outcome.OK() {
		WriteJSON(w, http.StatusOK, map[string]string{"status": outcome.String()})
		return
	}
	status, ok := outcomeStatus[outcome]
	if !ok {
		status = http.StatusBadRequest
	}
	WriteError(w, status, outcome.String(), outcomeMessage(outcome))
}

func outcomeMessage(outcome cognito.Outcome) string {
	switch outcome {
	case cognito.OutcomeInvalidUser:
		return "user not found"
	case cognito.OutcomeInvalidToken:
		return "invalid or expired verification code"
	case cognito.OutcomeInvalidPassword:
		return "password does not meet requirements"
	case cognito.OutcomeExceeded:
		return "attempt limit exceeded, please try again later"
	}
	return "an error occurred"
}
