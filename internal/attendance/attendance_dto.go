package attendance

import "github.com/shopspring/decimal"

type UpsertAttendanceRequest struct {
	EmployeeID  string           `json:"employee_id" binding:"required,uuid"`
	Date        string           `json:"date" binding:"required,datetime=2006-01-02"`
	Status      string           `json:"status" binding:"required,attendance_status"`
	HolidayType string           `json:"holiday_type"`
	DailyRate   *decimal.Decimal `json:"daily_rate"`
	Adjustment  *decimal.Decimal `json:"adjustment"`
	Notes       *string          `json:"notes"`
}

type BulkImportRequest struct {
	Records []UpsertAttendanceRequest `json:"records" binding:"required,min=1,max=1000,dive"`
}

type BulkImportResponse struct {
	Imported int `json:"imported"`
	Created  int `json:"created"`
	Updated  int `json:"updated"`
}

// RowError describes why one row of a bulk import was rejected. Row is
// zero-based.
type RowError struct {
	Row        int    `json:"row"`
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Reason     string `json:"reason"`
}

type AttendanceFilter struct {
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	From       string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To         string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Status     string `form:"status" binding:"omitempty,attendance_status"`
}

type AttendanceResponse struct {
	ID             string           `json:"id"`
	CompanyID      string           `json:"company_id"`
	EmployeeID     string           `json:"employee_id"`
	EmployeeName   string           `json:"employee_name,omitempty"`
	EmployeeNumber string           `json:"employee_number,omitempty"`
	AttendanceDate string           `json:"attendance_date"`
	Status         string           `json:"status"`
	HolidayType    *string          `json:"holiday_type,omitempty"`
	DailyRate      *decimal.Decimal `json:"daily_rate,omitempty"`
	Adjustment     decimal.Decimal  `json:"adjustment"`
	Source         string           `json:"source"`
	Notes          *string          `json:"notes,omitempty"`
}
