package attendanceerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrAttendanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"Attendance record not found",
		http.StatusNotFound,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrAttendanceLocked = apperror.New(
		apperror.CodeInvalidState,
		"Attendance date is covered by an approved or paid payroll entry",
		http.StatusConflict,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidInput,
		"Unknown attendance status",
		http.StatusBadRequest,
	)
	ErrHolidayTypeRequired = apperror.New(
		apperror.CodeInvalidInput,
		"Holiday type is required for a HOLIDAY record and none is defined in the calendar",
		http.StatusBadRequest,
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
	ErrNegativeDailyRate = apperror.New(
		apperror.CodeInvalidInput,
		"Daily rate must not be negative",
		http.StatusBadRequest,
	)
	ErrDuplicateInImport = apperror.New(
		apperror.CodeInvalidInput,
		"Import contains the same employee and date more than once",
		http.StatusBadRequest,
	)
	ErrAttendanceConflict = apperror.New(
		apperror.CodeConflict,
		"Attendance for this employee and date was written concurrently, retry the request",
		http.StatusConflict,
	)
	ErrImportRejected = apperror.New(
		apperror.CodeValidationError,
		"Import rejected, no records were saved",
		http.StatusUnprocessableEntity,
	)
)
