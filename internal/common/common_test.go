package common

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestHTTPStatusFromError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{NewNotFoundError("Problem"), http.StatusNotFound},
		{fmt.Errorf("lookup: %w", ErrNotFound), http.StatusNotFound},
		{ErrUnauthorized, http.StatusUnauthorized},
		{NewValidationError("code", "code is required"), http.StatusBadRequest},
		{fmt.Errorf("evaluate: %w", errors.Join(ErrServiceUnavailable, errors.New("dial"))), http.StatusServiceUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := HTTPStatusFromError(tt.err); got != tt.want {
			t.Errorf("HTTPStatusFromError(%v) = %d; want %d", tt.err, got, tt.want)
		}
	}
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"not found", fmt.Errorf("get: %w", NewNotFoundError("Problem")), http.StatusNotFound, `{"message":"Problem not found"}`},
		{"validation", NewValidationError("language", "Unsupported language: cobol"), http.StatusBadRequest, `{"message":"Unsupported language: cobol","field":"language"}`},
		{"unavailable", ErrServiceUnavailable, http.StatusServiceUnavailable, `{"message":"Service temporarily unavailable"}`},
		{"internal", errors.New("pq: connection refused"), http.StatusInternalServerError, `{"message":"Internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			RespondError(c, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d; want %d", rec.Code, tt.wantStatus)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %s; want %s", rec.Body.String(), tt.wantBody)
			}
		})
	}
}
