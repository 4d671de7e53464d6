package counter

import "time"

type CompanyCounter struct {
	CompanyID   string    `gorm:"type:uuid;primaryKey"`
	CounterType string    `gorm:"type:varchar(50);primaryKey"`
	LastValue   int64     `gorm:"not null;default:0"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (CompanyCounter) TableName() string { return "company_counters" }
