package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Is(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		target   error
		expected bool
	}{
		{"parse matches parse sentinel", NewParseError("no numeral", "abc"), ErrParse, true},
		{"wrapped parse still matches", fmt.Errorf("record 3: %w", NewParseError("no numeral", "")), ErrParse, true},
		{"qualifier does not match parse", NewQualifierError("add", "LT", "GT"), ErrParse, false},
		{"division matches division", NewDivisionByZeroError(), ErrDivisionByZero, true},
		{"alignment matches alignment", NewAlignmentError(10), ErrAlignmentNonTermination, true},
		{"plain error never matches", stderrors.New("boom"), ErrParse, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stderrors.Is(tt.err, tt.target))
		})
	}
}

func TestAppError_ErrorAndContext(t *testing.T) {
	cause := stderrors.New("underlying")
	err := NewConfigError("bad value", cause).WithContext("field", "error_limit")

	assert.Equal(t, "[CONFIG] bad value: underlying", err.Error())
	assert.Equal(t, "error_limit", err.Context["field"])
	assert.ErrorIs(t, err, cause)

	typ, ok := TypeOf(fmt.Errorf("wrap: %w", err))
	require.True(t, ok)
	assert.Equal(t, ErrTypeConfig, typ)

	_, ok = TypeOf(cause)
	assert.False(t, ok)
}

func TestErrorHandler_HandleError(t *testing.T) {
	handler := NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), false)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"parse error is bad request", NewParseError("no numeral", "x"), http.StatusBadRequest, TypeParse},
		{"qualifier error is unprocessable", NewQualifierError("add", "LT", "GT"), http.StatusUnprocessableEntity, TypeQualifier},
		{"division error is unprocessable", NewDivisionByZeroError(), http.StatusUnprocessableEntity, TypeDivisionByZero},
		{"validation error is bad request", NewValidationError("tolerance must be >= 0", nil), http.StatusBadRequest, TypeValidation},
		{"unknown error is internal", stderrors.New("boom"), http.StatusInternalServerError, TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/average", nil)
			rec := httptest.NewRecorder()

			handler.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, "/api/v1/average", body["instance"])
		})
	}
}
