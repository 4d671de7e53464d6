package payroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PayrollPeriod struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_payroll_period_start,priority:1;index:idx_period_company_status"`
	WeekID      string     `gorm:"type:varchar(10);not null;index"`
	StartDate   time.Time  `gorm:"type:date;not null;uniqueIndex:uq_payroll_period_start,priority:2"`
	EndDate     time.Time  `gorm:"type:date;not null"`
	PaymentDate *time.Time `gorm:"type:date"`
	Status      string     `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_period_company_status"`
	Notes       *string    `gorm:"type:text"`
	CreatedBy   *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type PayrollEntry struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID      `gorm:"type:uuid;not null;index:idx_entry_company_status"`
	EmployeeID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uq_payroll_entry_employee_period,priority:1"`
	PeriodID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uq_payroll_entry_employee_period,priority:2"`
	Employee   *EmployeeRef   `gorm:"foreignKey:EmployeeID;references:ID"`
	Period     *PayrollPeriod `gorm:"foreignKey:PeriodID;references:ID"`

	// Rate dipakai sebagai fallback untuk hari tanpa rate di attendance.
	DailyRate decimal.NullDecimal `gorm:"type:numeric(14,2)"`
	PaidDays  decimal.Decimal     `gorm:"type:numeric(6,2);not null;default:0"`

	GrossPay        decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	SSS             decimal.Decimal `gorm:"column:sss;type:numeric(14,2);not null;default:0"`
	PhilHealth      decimal.Decimal `gorm:"column:philhealth;type:numeric(14,2);not null;default:0"`
	PagIBIG         decimal.Decimal `gorm:"column:pagibig;type:numeric(14,2);not null;default:0"`
	WithholdingTax  decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	CashAdvance     decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	Loan            decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	OtherDeduction  decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	ShortDeduction  decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	TotalDeductions decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	NetPay          decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	Shortfall       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	NegativeNet     bool            `gorm:"not null;default:false"`
	MissingRate     bool            `gorm:"not null;default:false"`

	// Workflow & Audit
	Status      string     `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_entry_company_status"`
	GeneratedBy *uuid.UUID `gorm:"type:uuid"`
	ApprovedBy  *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt  *time.Time `gorm:"index"`
	PaidBy      *uuid.UUID `gorm:"type:uuid"`
	PaidAt      *time.Time `gorm:"index"`

	PayslipNumber      *string `gorm:"type:varchar(40)"`
	PayslipURL         *string
	PayslipGeneratedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	Days []PayrollEntryDay `gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE"`
}

// PayrollEntryDay is one resolved day of an entry, kept for the breakdown and
// the payslip.
type PayrollEntryDay struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EntryID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	WorkDate    time.Time       `gorm:"type:date;not null"`
	Status      string          `gorm:"type:varchar(20);not null"`
	HolidayType *string         `gorm:"type:varchar(20)"`
	Rate        decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	Multiplier  decimal.Decimal `gorm:"type:numeric(4,2);not null;default:0"`
	Adjustment  decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	Synthesized bool            `gorm:"not null;default:false"`
	MissingRate bool            `gorm:"not null;default:false"`
}

type EmployeeRef struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName       string    `gorm:"column:full_name"`
	EmployeeNumber string    `gorm:"column:employee_number"`
	Department     string    `gorm:"column:department"`
	Position       string    `gorm:"column:position"`
}

func (EmployeeRef) TableName() string {
	return "employees"
}

// Payee is an active employee with the daily rate in effect at a given date.
type Payee struct {
	EmployeeID     uuid.UUID
	EmployeeNumber string
	FullName       string
	DailyRate      decimal.NullDecimal
}
