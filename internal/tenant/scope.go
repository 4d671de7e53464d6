// Package tenant scopes queries to one company. Every payroll table carries
// company_id, and no query may read across companies.
package tenant

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func Scope(companyID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Eq{Column: clause.Column{Name: "company_id"}, Value: companyID})
	}
}

// ScopeOn qualifies company_id with table (or its alias) for joined queries,
// where a bare company_id would be ambiguous.
func ScopeOn(table, companyID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Eq{Column: clause.Column{Table: table, Name: "company_id"}, Value: companyID})
	}
}
