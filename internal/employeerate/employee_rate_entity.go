package employeerate

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EmployeeRate struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID     uuid.UUID       `gorm:"type:uuid;index"`
	EmployeeID    uuid.UUID       `gorm:"type:uuid;uniqueIndex:uq_employee_rate_effective,priority:1"`
	DailyRate     decimal.Decimal `gorm:"type:numeric(14,2)"`
	EffectiveDate time.Time       `gorm:"type:date;uniqueIndex:uq_employee_rate_effective,priority:2"`
	Notes         string
	CreatedBy     *uuid.UUID `gorm:"type:uuid"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	EmployeeName string `gorm:"->;-:migration"`
}
