package employeerate

import (
	"context"
	"database/sql"
	"time"

	"go-payroll/internal/shared/dbtx"
	"go-payroll/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_rate_repo.go -destination=mock/employee_rate_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, rate *EmployeeRate) error
	FindAllByCompany(ctx context.Context, companyID string, employeeID string) ([]EmployeeRate, error)
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*EmployeeRate, error)
	FindRateAt(ctx context.Context, companyID, employeeID string, asOf time.Time) (*EmployeeRate, error)
	EmployeeExists(ctx context.Context, companyID, employeeID string) (bool, error)
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

func (r *repository) Create(ctx context.Context, rate *EmployeeRate) error {
	return r.conn(ctx).Create(rate).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string, employeeID string) ([]EmployeeRate, error) {
	var rates []EmployeeRate
	q := r.conn(ctx).
		Table("employee_rates").
		Select("employee_rates.*, employees.full_name AS employee_name").
		Joins("JOIN employees ON employees.id = employee_rates.employee_id").
		Scopes(tenant.ScopeOn("employee_rates", companyID))
	if employeeID != "" {
		q = q.Where("employee_rates.employee_id = ?", employeeID)
	}
	err := q.Order("employees.full_name ASC").
		Order("employee_rates.effective_date DESC").
		Scan(&rates).Error
	return rates, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*EmployeeRate, error) {
	var rate EmployeeRate
	err := r.conn(ctx).
		Table("employee_rates").
		Select("employee_rates.*, employees.full_name AS employee_name").
		Joins("JOIN employees ON employees.id = employee_rates.employee_id").
		Where("employee_rates.id = ?", id).
		Scopes(tenant.ScopeOn("employee_rates", companyID)).
		Take(&rate).Error
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

// FindRateAt returns the latest rate with effective_date <= asOf.
func (r *repository) FindRateAt(ctx context.Context, companyID, employeeID string, asOf time.Time) (*EmployeeRate, error) {
	var rate EmployeeRate
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("effective_date <= ?", asOf.Format("2006-01-02")).
		Order("effective_date DESC").
		Take(&rate).Error
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *repository) EmployeeExists(ctx context.Context, companyID, employeeID string) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Table("employees").
		Where("id = ?", employeeID).
		Scopes(tenant.Scope(companyID)).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count > 0, err
}

func (r *repository) Delete(ctx context.Context, companyID string, id string) error {
	res := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&EmployeeRate{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
