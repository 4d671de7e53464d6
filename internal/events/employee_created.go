package events

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EmployeeCreatedTopic = "hr.employee.lifecycle.v1"

	EventTypeEmployeeCreated = "employee.created"
)

// EmployeeCreatedEvent carries the opening daily rate so the rate history can
// be seeded without the API writing to it directly.
type EmployeeCreatedEvent struct {
	EventType  string          `json:"event_type"`
	RequestID  string          `json:"request_id,omitempty"`
	EmployeeID string          `json:"employee_id"`
	CompanyID  string          `json:"company_id"`
	DailyRate  decimal.Decimal `json:"daily_rate"`
	HireDate   string          `json:"hire_date"`
	OccurredAt time.Time       `json:"occurred_at"`
}
