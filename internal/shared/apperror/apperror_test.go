package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"go-payroll/internal/shared/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestToHTTP_AppError(t *testing.T) {
	sentinel := apperror.New(apperror.CodeConflict, "Entry already exists", http.StatusConflict)
	err := fmt.Errorf("generate: %w", sentinel.WithDetails(map[string]string{"employee_id": "e-1"}))

	got := apperror.ToHTTP(err)

	assert.Equal(t, http.StatusConflict, got.Status)
	assert.Equal(t, apperror.CodeConflict, got.Code)
	assert.Equal(t, "Entry already exists", got.Message)
	assert.Equal(t, map[string]string{"employee_id": "e-1"}, got.Details)
	assert.ErrorIs(t, err, sentinel)
}

func TestToHTTP_UnknownErrorIsInternal(t *testing.T) {
	got := apperror.ToHTTP(errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.Equal(t, apperror.CodeInternalError, got.Code)
	assert.NotContains(t, got.Message, "pq")
}

func TestToHTTP_ValidationErrors(t *testing.T) {
	type payload struct {
		Name string `validate:"required"`
	}
	err := validator.New().Struct(payload{})

	got := apperror.ToHTTP(err)

	assert.Equal(t, http.StatusBadRequest, got.Status)
	assert.Equal(t, apperror.CodeValidationError, got.Code)
	assert.Equal(t, "Name is required", got.Message)
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, apperror.Wrap(nil, apperror.CodeInternalError, "x", 500))
}
