package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"trading-journal-api/internal/domain"
	"trading-journal-api/internal/infra/logging"
)

// This file is the single boundary where domain errors become HTTP
// responses. Handlers never write status codes for errors themselves.

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps a domain error onto the taxonomy: 401 auth, 403 owner,
// 400 validation, 404 missing, 500 everything else with a generic
// message. Infrastructure error text never reaches the client.
func writeError(w http.ResponseWriter, r *http.Request, logger *zerolog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request"})
	case errors.Is(err, domain.ErrNotOwner):
		writeJSON(w, http.StatusForbidden, errorBody{Error: "Owner privileges required"})
	case errors.Is(err, domain.ErrTierRequired):
		writeJSON(w, http.StatusForbidden, errorBody{Error: "Upgrade required for this feature"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Not found"})
	default:
		l := logging.With(r.Context(), logger)
		l.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error"})
	}
}

// redeemOutcome classifies a redemption rejection into the user-facing
// message and the metric outcome label. ok is false when the error is
// not a business rejection (and must go through writeError instead).
func redeemOutcome(err error) (message, outcome string, ok bool) {
	switch {
	case errors.Is(err, domain.ErrCodeNotFound):
		return "Invalid code", "invalid_code", true
	case errors.Is(err, domain.ErrCodeInactive):
		return "Code is inactive", "code_inactive", true
	case errors.Is(err, domain.ErrCodeExpired):
		return "Code has expired", "code_expired", true
	case errors.Is(err, domain.ErrCodeExhausted):
		return "Code has reached its maximum uses", "max_uses_reached", true
	case errors.Is(err, domain.ErrAlreadyRedeemed):
		return "You already redeemed this code", "already_redeemed", true
	}
	return "", "", false
}
