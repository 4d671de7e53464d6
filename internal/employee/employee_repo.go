package employee

import (
	"context"
	"database/sql"

	"go-payroll/internal/shared/dbtx"
	"go-payroll/internal/tenant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EmployeeQuery is a filtered page of the company directory. OrderBy must be
// one of the sortColumns keys.
type EmployeeQuery struct {
	Search  string
	Status  string
	OrderBy string
	Desc    bool
	Limit   int
	Offset  int
}

var sortColumns = map[string]string{
	"name":      "full_name",
	"email":     "email",
	"number":    "employee_number",
	"hire_date": "hire_date",
}

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, empl *Employee) error
	FindPage(ctx context.Context, companyID string, q EmployeeQuery) ([]Employee, int64, error)
	FindOptionsByCompany(ctx context.Context, companyID string) ([]Employee, error)
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Employee, error)
	Update(ctx context.Context, empl *Employee) error
	Delete(ctx context.Context, companyID string, id string) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db: r.db,
		tx: tx,
	}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return dbtx.Conn(ctx, r.db, r.tx)
}

func (r *repository) Create(ctx context.Context, empl *Employee) error {
	return r.conn(ctx).Create(empl).Error
}

func (r *repository) FindPage(ctx context.Context, companyID string, q EmployeeQuery) ([]Employee, int64, error) {
	db := r.conn(ctx).Model(&Employee{}).Scopes(tenant.Scope(companyID))
	if q.Status != "" {
		db = db.Where("employment_status = ?", q.Status)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		db = db.Where("full_name ILIKE ? OR email ILIKE ? OR employee_number ILIKE ?", like, like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[q.OrderBy]
	if !ok {
		column = sortColumns["name"]
	}
	order := clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: q.Desc}

	var empls []Employee
	err := db.
		Order(order).
		Order("employee_number ASC").
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&empls).Error
	return empls, total, err
}

// FindOptionsByCompany hanya kolom ringan untuk dropdown.
func (r *repository) FindOptionsByCompany(ctx context.Context, companyID string) ([]Employee, error) {
	var empls []Employee
	err := r.conn(ctx).
		Select("id", "employee_number", "full_name").
		Scopes(tenant.Scope(companyID)).
		Where("employment_status = ?", StatusActive).
		Order("full_name ASC").
		Find(&empls).Error
	return empls, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Employee, error) {
	var empl Employee
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&empl, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &empl, nil
}

func (r *repository) Update(ctx context.Context, empl *Employee) error {
	return r.conn(ctx).Save(empl).Error
}

func (r *repository) Delete(ctx context.Context, companyID string, id string) error {
	res := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&Employee{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
