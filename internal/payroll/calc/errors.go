package calc

import "errors"

var (
	ErrUnknownStatus       = errors.New("unknown attendance status")
	ErrHolidayTypeRequired = errors.New("holiday type is required for a holiday")
	ErrUnknownHolidayType  = errors.New("unknown holiday type")
	ErrInvalidPeriod       = errors.New("period end is before period start")
	ErrNegativeGrossPay    = errors.New("gross pay is negative")
	ErrDuplicateRecord     = errors.New("more than one attendance record for the same date")
	ErrNegativeDeduction   = errors.New("manual deduction must not be negative")
	ErrUnknownPolicy       = errors.New("unknown duplicate policy")
)
