package events

import "time"

const (
	PayrollPeriodGeneratedTopic = "hr.payroll.period.generated.v1"

	EventTypePeriodGenerated = "payroll.period.generated"
)

type PayrollPeriodGeneratedEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id,omitempty"`
	PeriodID    string    `json:"period_id"`
	WeekID      string    `json:"week_id"`
	CompanyID   string    `json:"company_id"`
	Policy      string    `json:"policy"`
	Succeeded   int       `json:"succeeded"`
	Skipped     int       `json:"skipped"`
	Failed      int       `json:"failed"`
	NegativeNet int       `json:"negative_net"`
	GeneratedBy string    `json:"generated_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}
