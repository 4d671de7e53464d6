package holidayerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrHolidayNotFound = apperror.New(
		apperror.CodeNotFound,
		"Holiday not found",
		http.StatusNotFound,
	)
	ErrHolidayAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"A holiday is already defined for this date",
		http.StatusConflict,
	)
	ErrInvalidHolidayType = apperror.New(
		apperror.CodeInvalidInput,
		"Holiday type must be REGULAR or SPECIAL",
		http.StatusBadRequest,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidRange = apperror.New(
		apperror.CodeInvalidInput,
		"Range end must not be before range start",
		http.StatusBadRequest,
	)
)
