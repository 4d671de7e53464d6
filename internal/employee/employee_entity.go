package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusActive     = "ACTIVE"
	StatusInactive   = "INACTIVE"
	StatusTerminated = "TERMINATED"
)

type Employee struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID        uuid.UUID `gorm:"type:uuid;index;uniqueIndex:uq_employee_number,priority:1"`
	EmployeeNumber   string    `gorm:"uniqueIndex:uq_employee_number,priority:2"`
	FullName         string
	Email            string `gorm:"uniqueIndex:uq_employee_email"`
	Phone            string
	Department       string
	Position         string
	HireDate         time.Time `gorm:"type:date"`
	EmploymentStatus string    `gorm:"default:ACTIVE"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (e Employee) IsActive() bool {
	return e.EmploymentStatus == "" || e.EmploymentStatus == StatusActive
}
