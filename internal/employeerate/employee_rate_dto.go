package employeerate

import "github.com/shopspring/decimal"

type CreateEmployeeRateRequest struct {
	EmployeeID    string          `json:"employee_id" binding:"required,uuid"`
	DailyRate     decimal.Decimal `json:"daily_rate"`
	EffectiveDate string          `json:"effective_date" binding:"required,datetime=2006-01-02"`
	Notes         string          `json:"notes" binding:"max=255"`
}

type EmployeeRateResponse struct {
	ID            string          `json:"id"`
	EmployeeID    string          `json:"employee_id"`
	EmployeeName  string          `json:"employee_name,omitempty"`
	DailyRate     decimal.Decimal `json:"daily_rate"`
	EffectiveDate string          `json:"effective_date"`
	Notes         string          `json:"notes,omitempty"`
}
