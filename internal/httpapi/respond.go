package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/rahulnakum14/ecommerce-api-go/internal/domain"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// handleDomainError is the single boundary mapping from the closed error
// taxonomy to transport codes. Validation and not-found failures keep
// their message so the client can render something actionable; provider
// and pipeline internals are logged but replaced with a generic body.
func handleDomainError(w http.ResponseWriter, log zerolog.Logger, requestID string, err error) {
	kind := domain.KindOf(err)
	switch kind {
	case domain.KindValidation:
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
	case domain.KindNotFound:
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case domain.KindProviderNotConfigured:
		log.Error().Err(err).Str("request_id", requestID).Msg("payment provider not configured")
		respondError(w, http.StatusServiceUnavailable, "payment_unavailable", "payment is currently unavailable")
	case domain.KindProvider:
		log.Error().Err(err).Str("request_id", requestID).Msg("payment provider failure")
		respondError(w, http.StatusBadGateway, "payment_failed", "Internal Server Error while making payment")
	case domain.KindDocumentRender, domain.KindEmailDelivery:
		log.Error().Err(err).Str("request_id", requestID).Msg("fulfillment failure")
		respondError(w, http.StatusInternalServerError, "fulfillment_failed", "internal server error")
	default:
		log.Error().Err(err).Str("request_id", requestID).Msg("unhandled internal error")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
