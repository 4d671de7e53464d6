package payroll

import "github.com/shopspring/decimal"

type CreatePeriodRequest struct {
	StartDate   string  `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate     string  `json:"end_date" binding:"required,datetime=2006-01-02"`
	PaymentDate *string `json:"payment_date" binding:"omitempty,datetime=2006-01-02"`
	Notes       *string `json:"notes"`
}

type TransitionPeriodRequest struct {
	Status string `json:"status" binding:"required,oneof=OPEN CLOSED COMPLETED"`
}

type PeriodFilter struct {
	Status string `form:"status" binding:"omitempty,oneof=PENDING OPEN CLOSED COMPLETED"`
	Year   int    `form:"year" binding:"omitempty,min=1"`
}

type PeriodResponse struct {
	ID          string  `json:"id"`
	CompanyID   string  `json:"company_id"`
	WeekID      string  `json:"week_id"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	PaymentDate *string `json:"payment_date,omitempty"`
	Status      string  `json:"status"`
	Notes       *string `json:"notes,omitempty"`
}

type GeneratePeriodRequest struct {
	// Policy is SKIP_EXISTING (default), REJECT_EXISTING or OVERWRITE_EXISTING.
	Policy      string   `json:"policy"`
	EmployeeIDs []string `json:"employee_ids" binding:"omitempty,dive,uuid"`
}

type GenerateEntryRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	Policy     string `json:"policy"`
}

type GenerationFailure struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name,omitempty"`
	Reason       string `json:"reason"`
}

type GenerationSummary struct {
	PeriodID    string              `json:"period_id"`
	WeekID      string              `json:"week_id"`
	Policy      string              `json:"policy"`
	Succeeded   int                 `json:"succeeded"`
	Created     int                 `json:"created"`
	Overwritten int                 `json:"overwritten"`
	Skipped     int                 `json:"skipped"`
	Failed      int                 `json:"failed"`
	NegativeNet int                 `json:"negative_net"`
	MissingRate int                 `json:"missing_rate"`
	Failures    []GenerationFailure `json:"failures"`
}

type EntryFilter struct {
	PeriodID   string `form:"period_id" binding:"omitempty,uuid"`
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	Status     string `form:"status"`
}

// UpdateDeductionsRequest sets the manual deductions of a PENDING entry. A
// nil field keeps its current value.
type UpdateDeductionsRequest struct {
	CashAdvance *decimal.Decimal `json:"cash_advance"`
	Loan        *decimal.Decimal `json:"loan"`
	Other       *decimal.Decimal `json:"other"`
	Short       *decimal.Decimal `json:"short"`
}

type EntryResponse struct {
	ID             string `json:"id"`
	CompanyID      string `json:"company_id"`
	EmployeeID     string `json:"employee_id"`
	EmployeeName   string `json:"employee_name,omitempty"`
	EmployeeNumber string `json:"employee_number,omitempty"`
	PeriodID       string `json:"period_id"`
	WeekID         string `json:"week_id,omitempty"`
	PeriodStart    string `json:"period_start,omitempty"`
	PeriodEnd      string `json:"period_end,omitempty"`

	DailyRate       *decimal.Decimal `json:"daily_rate,omitempty"`
	PaidDays        decimal.Decimal  `json:"paid_days"`
	GrossPay        decimal.Decimal  `json:"gross_pay"`
	SSS             decimal.Decimal  `json:"sss"`
	PhilHealth      decimal.Decimal  `json:"philhealth"`
	PagIBIG         decimal.Decimal  `json:"pagibig"`
	WithholdingTax  decimal.Decimal  `json:"withholding_tax"`
	CashAdvance     decimal.Decimal  `json:"cash_advance"`
	Loan            decimal.Decimal  `json:"loan"`
	OtherDeduction  decimal.Decimal  `json:"other_deduction"`
	ShortDeduction  decimal.Decimal  `json:"short_deduction"`
	TotalDeductions decimal.Decimal  `json:"total_deductions"`
	NetPay          decimal.Decimal  `json:"net_pay"`
	Shortfall       decimal.Decimal  `json:"shortfall"`
	NegativeNet     bool             `json:"negative_net"`
	MissingRate     bool             `json:"missing_rate"`

	Status             string  `json:"status"`
	ApprovedBy         *string `json:"approved_by,omitempty"`
	ApprovedAt         *string `json:"approved_at,omitempty"`
	PaidAt             *string `json:"paid_at,omitempty"`
	PayslipNumber      *string `json:"payslip_number,omitempty"`
	PayslipURL         *string `json:"payslip_url,omitempty"`
	PayslipGeneratedAt *string `json:"payslip_generated_at,omitempty"`
}

type DayResponse struct {
	Date        string          `json:"date"`
	Weekday     string          `json:"weekday"`
	Status      string          `json:"status"`
	HolidayType *string         `json:"holiday_type,omitempty"`
	Rate        decimal.Decimal `json:"rate"`
	Multiplier  decimal.Decimal `json:"multiplier"`
	Adjustment  decimal.Decimal `json:"adjustment"`
	Amount      decimal.Decimal `json:"amount"`
	Synthesized bool            `json:"synthesized"`
	MissingRate bool            `json:"missing_rate"`
}

type BreakdownResponse struct {
	Entry          EntryResponse   `json:"entry"`
	Days           []DayResponse   `json:"days"`
	StatutoryTotal decimal.Decimal `json:"statutory_total"`
	ManualTotal    decimal.Decimal `json:"manual_total"`
}
