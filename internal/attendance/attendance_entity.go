package attendance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	SourceManual = "MANUAL"
	SourceImport = "IMPORT"
)

// Attendance is one status row per employee per work date. Status is stored
// in its normalized form.
type Attendance struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID      uuid.UUID           `gorm:"column:company_id;type:uuid;not null;index"`
	EmployeeID     uuid.UUID           `gorm:"column:employee_id;type:uuid;not null;uniqueIndex:uq_attendance_employee_date,priority:1"`
	AttendanceDate time.Time           `gorm:"column:attendance_date;type:date;not null;uniqueIndex:uq_attendance_employee_date,priority:2"`
	Status         string              `gorm:"column:status;type:varchar(20);not null;default:PRESENT"`
	HolidayType    *string             `gorm:"column:holiday_type;type:varchar(20)"`
	DailyRate      decimal.NullDecimal `gorm:"column:daily_rate;type:numeric(14,2)"`
	Adjustment     decimal.Decimal     `gorm:"column:adjustment;type:numeric(14,2);not null;default:0"`
	Source         string              `gorm:"column:source;type:varchar(30);not null;default:MANUAL"`
	Notes          *string             `gorm:"column:notes;type:text"`
	CreatedBy      *uuid.UUID          `gorm:"column:created_by;type:uuid"`
	CreatedAt      time.Time           `gorm:"column:created_at"`
	UpdatedAt      time.Time           `gorm:"column:updated_at"`
	Employee       *EmployeeRef        `gorm:"foreignKey:EmployeeID;references:ID"`
}

func (Attendance) TableName() string {
	return "attendances"
}

type EmployeeRef struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName       string    `gorm:"column:full_name"`
	EmployeeNumber string    `gorm:"column:employee_number"`
}

func (EmployeeRef) TableName() string {
	return "employees"
}
