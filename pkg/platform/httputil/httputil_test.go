package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"domreg/pkg/epperr"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, epperr.New(epperr.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]any
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for internal errors")
		}
	})

	t.Run("policy error includes message and epp code", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, epperr.New(epperr.CodeStatusProhibits, "Alloc token was already redeemed"))

		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, w.Code)
		}

		var body map[string]any
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error_description"] != "Alloc token was already redeemed" {
			t.Fatalf("expected original message, got %q", body["error_description"])
		}
		if body["epp_code"] != float64(2304) {
			t.Fatalf("expected epp_code 2304, got %v", body["epp_code"])
		}
	})

	t.Run("authorization error maps to forbidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, epperr.New(epperr.CodeAuthorizationError, "The allocation token is invalid"))

		if w.Code != http.StatusForbidden {
			t.Fatalf("expected status %d, got %d", http.StatusForbidden, w.Code)
		}
	})

	t.Run("uncoded error is treated as internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, http.ErrBodyNotAllowed)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
	})
}
