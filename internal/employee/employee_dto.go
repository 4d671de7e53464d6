package employee

import (
	"strings"

	"github.com/shopspring/decimal"
)

type CreateEmployeeRequest struct {
	FullName         string          `json:"full_name" binding:"required"`
	Email            string          `json:"email" binding:"required,email"`
	EmployeeNumber   string          `json:"employee_number"`
	Phone            string          `json:"phone"`
	Department       string          `json:"department"`
	Position         string          `json:"position"`
	HireDate         string          `json:"hire_date" binding:"required,datetime=2006-01-02"`
	EmploymentStatus string          `json:"employment_status" binding:"omitempty,oneof=ACTIVE INACTIVE TERMINATED"`
	DailyRate        decimal.Decimal `json:"daily_rate"`
}

type UpdateEmployeeRequest struct {
	FullName         string `json:"full_name" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	EmployeeNumber   string `json:"employee_number" binding:"required"`
	Phone            string `json:"phone"`
	Department       string `json:"department"`
	Position         string `json:"position"`
	HireDate         string `json:"hire_date" binding:"required,datetime=2006-01-02"`
	EmploymentStatus string `json:"employment_status" binding:"required,oneof=ACTIVE INACTIVE TERMINATED"`
}

type EmployeeResponse struct {
	ID               string `json:"id"`
	EmployeeNumber   string `json:"employee_number"`
	FullName         string `json:"full_name"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Department       string `json:"department,omitempty"`
	Position         string `json:"position,omitempty"`
	HireDate         string `json:"hire_date,omitempty"`
	EmploymentStatus string `json:"employment_status,omitempty"`
	CompanyID        string `json:"company_id,omitempty"`
}

// EmployeeFilter is the query string of the employee directory listing.
type EmployeeFilter struct {
	Q        string `form:"q"`
	Status   string `form:"status" binding:"omitempty,oneof=ACTIVE INACTIVE TERMINATED"`
	SortBy   string `form:"sort_by" binding:"omitempty,oneof=name email number hire_date"`
	SortDir  string `form:"sort_dir" binding:"omitempty,oneof=asc desc"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Normalize fills paging and sort defaults.
func (f *EmployeeFilter) Normalize() {
	f.Q = strings.TrimSpace(f.Q)
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 10
	}
	if f.SortBy == "" {
		f.SortBy = "name"
	}
	if f.SortDir == "" {
		f.SortDir = "asc"
	}
}
