package holiday

import (
	"time"

	"github.com/google/uuid"
)

type Holiday struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_holiday_company_date,priority:1"`
	HolidayDate time.Time  `gorm:"type:date;not null;uniqueIndex:uq_holiday_company_date,priority:2"`
	Name        string     `gorm:"type:varchar(120);not null"`
	Type        string     `gorm:"type:varchar(20);not null"`
	CreatedBy   *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
