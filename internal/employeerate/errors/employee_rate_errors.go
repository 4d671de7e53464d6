package employeerateerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrRateAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"A daily rate for this employee and effective date already exists",
		http.StatusConflict,
	)
	ErrRateNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee rate not found",
		http.StatusNotFound,
	)
	ErrNoRateInEffect = apperror.New(
		apperror.CodeNotFound,
		"Employee has no daily rate in effect on this date",
		http.StatusNotFound,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrInvalidDailyRate = apperror.New(
		apperror.CodeInvalidInput,
		"Daily rate must be greater than zero",
		http.StatusBadRequest,
	)
	ErrInvalidEffectiveDate = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid effective_date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
)
