package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation", ValidationError("bad profile", nil), http.StatusBadRequest},
		{"invalid input", InvalidInput("bad json", nil), http.StatusBadRequest},
		{"not found", NotFound("card missing", nil), http.StatusNotFound},
		{"conflict", Conflict("duplicate", nil), http.StatusConflict},
		{"catalog unavailable", CatalogUnavailable("timeout", nil), http.StatusServiceUnavailable},
		{"import", ImportError("upstream", nil), http.StatusBadGateway},
		{"database", DatabaseError("query", nil), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("outer: %w", NotFound("inner", nil)), http.StatusNotFound},
		{"plain", stderrors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestAppError_UnwrapAndOperation(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := DatabaseError("failed to list cards", cause).WithOperation("ListCards").WithDetails("credit_cards")

	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, "ListCards", err.Operation)
	assert.Equal(t, "credit_cards", err.Details)
	assert.Contains(t, err.Error(), "DATABASE_ERROR")
	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, HasCode(err, ErrCodeDatabaseError))
	assert.NotEmpty(t, err.File)
}
