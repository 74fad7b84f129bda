// Package httpapi holds the JSON response and error conventions shared by the HTTP handlers.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aristath/stockledger/internal/domain"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// WriteJSON writes data with the given status
func WriteJSON(w http.ResponseWriter, log zerolog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// WriteError writes {"error": message}
func WriteError(w http.ResponseWriter, log zerolog.Logger, status int, message string) {
	WriteJSON(w, log, status, map[string]string{"error": message})
}

// WriteFailure maps err to a status and writes its user-facing message.
// Store failures are logged and reported without driver detail.
func WriteFailure(w http.ResponseWriter, log zerolog.Logger, err error) {
	status := StatusFor(err)
	message := domain.ErrorMessage(err)

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("Request failed")
		message = "Internal storage error."
	} else {
		log.Debug().Err(err).Int("status", status).Msg("Request rejected")
	}
	WriteError(w, log, status, message)
}

// StatusFor maps a ledger error kind to an HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidShares):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvestorNotFound),
		errors.Is(err, domain.ErrNoSuchHolding),
		errors.Is(err, domain.ErrStockNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientShares):
		return http.StatusConflict
	case errors.Is(err, domain.ErrQuoteUnavailable), errors.Is(err, domain.ErrProfileUnavailable):
		return http.StatusFailedDependency
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON decodes a single JSON object into v, rejecting unknown fields and trailing data.
// Failures are returned as ErrInvalidRequest.
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return domain.NewLedgerError(domain.ErrInvalidRequest, err, "Invalid request body: %s", describeDecodeError(err))
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return domain.NewLedgerError(domain.ErrInvalidRequest, err, "Invalid request body: unexpected data after JSON object")
	}
	return nil
}

func describeDecodeError(err error) string {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return "body is empty"
	case errors.As(err, &syntaxErr):
		return fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset)
	case errors.As(err, &typeErr):
		if typeErr.Field == "shares" {
			return "shares must be a positive integer"
		}
		return fmt.Sprintf("field %q has the wrong type", typeErr.Field)
	default:
		return err.Error()
	}
}
