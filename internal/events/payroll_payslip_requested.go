package events

import "time"

const (
	PayrollPayslipRequestedTopic = "hr.payroll.payslip.requested.v1"

	EventTypePayslipRequested = "payroll.payslip.requested"
)

type PayrollPayslipRequestedEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id,omitempty"`
	EntryID     string    `json:"entry_id"`
	PeriodID    string    `json:"period_id"`
	EmployeeID  string    `json:"employee_id"`
	CompanyID   string    `json:"company_id"`
	RequestedBy string    `json:"requested_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}
