package payrollerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"period_start must be before or equal period_end",
		http.StatusBadRequest,
	)
	ErrPeriodTooLong = apperror.New(
		apperror.CodeInvalidInput,
		"payroll period is longer than the allowed maximum",
		http.StatusBadRequest,
	)
	ErrInvalidPolicy = apperror.New(
		apperror.CodeInvalidInput,
		"policy must be SKIP_EXISTING, REJECT_EXISTING or OVERWRITE_EXISTING",
		http.StatusBadRequest,
	)
	ErrInvalidStatusFilter = apperror.New(
		apperror.CodeInvalidInput,
		"invalid payroll status filter",
		http.StatusBadRequest,
	)
	ErrInvalidMoneyValue = apperror.New(
		apperror.CodeInvalidInput,
		"deduction values cannot be negative",
		http.StatusBadRequest,
	)
	ErrEmployeeNotInCompany = apperror.New(
		apperror.CodeNotFound,
		"employee does not belong to this company",
		http.StatusNotFound,
	)

	ErrPeriodNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll period not found",
		http.StatusNotFound,
	)
	ErrPeriodOverlap = apperror.New(
		apperror.CodeConflict,
		"payroll period overlaps an existing period",
		http.StatusConflict,
	)
	ErrInvalidPeriodTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid payroll period status transition",
		http.StatusBadRequest,
	)
	ErrPeriodNotGeneratable = apperror.New(
		apperror.CodeInvalidState,
		"payroll can only be generated while the period is PENDING or OPEN",
		http.StatusConflict,
	)
	ErrPeriodHasUnpaidEntries = apperror.New(
		apperror.CodeInvalidState,
		"period still has entries that are not PAID",
		http.StatusConflict,
	)

	ErrEntryNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll entry not found",
		http.StatusNotFound,
	)
	ErrEntryAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"payroll entry already exists for this employee and period",
		http.StatusConflict,
	)
	ErrEntryNotPending = apperror.New(
		apperror.CodeInvalidState,
		"payroll entry can only be changed while status is PENDING",
		http.StatusConflict,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid payroll entry status transition",
		http.StatusBadRequest,
	)
	ErrPayslipNotGenerated = apperror.New(
		apperror.CodeNotFound,
		"payslip is not generated yet",
		http.StatusNotFound,
	)
	ErrPayslipNotAvailable = apperror.New(
		apperror.CodeInvalidState,
		"payslip is only available for APPROVED or PAID entries",
		http.StatusConflict,
	)
)
