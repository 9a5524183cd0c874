// Package httputil centralizes JSON encoding and error translation for the
// HTTP transport.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"domreg/pkg/epperr"
)

type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
	EppCode     int    `json:"epp_code,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// StatusOf maps an error's EPP code family to an HTTP status.
func StatusOf(err error) int {
	switch epperr.CodeOf(err) {
	case epperr.CodeAuthorizationError:
		return http.StatusForbidden
	case epperr.CodeObjectNotFound:
		return http.StatusNotFound
	case epperr.CodeObjectExists:
		return http.StatusConflict
	case epperr.CodeStatusProhibits, epperr.CodeAssociationProhibits, epperr.CodeParameterPolicy:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// WriteError translates a domain error to its HTTP shape. Internal errors
// hide their message from the client.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		WriteJSON(w, status, errorBody{Error: "internal_error"})
		return
	}
	code := epperr.CodeOf(err)
	msg := err.Error()
	var coded *epperr.Error
	if errors.As(err, &coded) {
		msg = coded.Message()
	}
	WriteJSON(w, status, errorBody{
		Error:       "command_rejected",
		Description: msg,
		EppCode:     int(code),
	})
}

// DecodeJSON parses the request body into T, writing a 400 response and
// returning false on malformed input.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(r.Context(), "malformed request body", "error", err)
		WriteJSON(w, http.StatusBadRequest, errorBody{
			Error:       "bad_request",
			Description: "malformed JSON body",
		})
		return req, false
	}
	return req, true
}
