package payroll

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	payrollerrors "go-payroll/internal/payroll/errors"
	"go-payroll/internal/payroll/calc"
	"go-payroll/internal/shared/dbtx"
	"go-payroll/internal/tenant"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PeriodQuery struct {
	Status string
	Year   int
}

type EntryQuery struct {
	PeriodID   string
	EmployeeID string
	Status     string
}

//go:generate mockgen -source=payroll_repo.go -destination=mock/payroll_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	CreatePeriod(ctx context.Context, p *PayrollPeriod) error
	UpdatePeriod(ctx context.Context, p *PayrollPeriod) error
	FindPeriods(ctx context.Context, companyID string, q PeriodQuery) ([]PayrollPeriod, error)
	FindPeriodByID(ctx context.Context, companyID, id string) (*PayrollPeriod, error)
	LockPeriod(ctx context.Context, companyID, id string) (*PayrollPeriod, error)
	HasOverlappingPeriod(ctx context.Context, companyID string, start, end time.Time, excludePeriodID *string) (bool, error)
	CountEntriesByStatus(ctx context.Context, companyID, periodID string) (map[string]int64, error)
	ListCompaniesWithActiveEmployees(ctx context.Context) ([]string, error)

	FindPayees(ctx context.Context, companyID string, asOf time.Time, employeeIDs []string) ([]Payee, error)
	FindEntriesByPeriod(ctx context.Context, companyID, periodID string) ([]PayrollEntry, error)
	FindEntries(ctx context.Context, companyID string, q EntryQuery) ([]PayrollEntry, error)
	FindEntryByID(ctx context.Context, companyID, id string) (*PayrollEntry, error)
	FindEntryWithDays(ctx context.Context, companyID, id string) (*PayrollEntry, error)
	CreateEntry(ctx context.Context, e *PayrollEntry) error
	ReplaceEntry(ctx context.Context, e *PayrollEntry) error
	UpdateEntry(ctx context.Context, e *PayrollEntry) error
	DeleteEntry(ctx context.Context, companyID, id string) error
	EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error)
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

func (r *repository) CreatePeriod(ctx context.Context, p *PayrollPeriod) error {
	return r.conn(ctx).Create(p).Error
}

func (r *repository) UpdatePeriod(ctx context.Context, p *PayrollPeriod) error {
	return r.conn(ctx).Save(p).Error
}

func (r *repository) FindPeriods(ctx context.Context, companyID string, q PeriodQuery) ([]PayrollPeriod, error) {
	db := r.conn(ctx).Scopes(tenant.Scope(companyID))
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if q.Year > 0 {
		db = db.Where("EXTRACT(YEAR FROM start_date) = ?", q.Year)
	}

	var periods []PayrollPeriod
	err := db.Order("start_date DESC").Find(&periods).Error
	return periods, err
}

func (r *repository) FindPeriodByID(ctx context.Context, companyID, id string) (*PayrollPeriod, error) {
	var p PayrollPeriod
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// LockPeriod loads the period with a row lock so concurrent generation runs
// for the same period are serialized.
func (r *repository) LockPeriod(ctx context.Context, companyID, id string) (*PayrollPeriod, error) {
	var p PayrollPeriod
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(companyID)).
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) HasOverlappingPeriod(
	ctx context.Context,
	companyID string,
	start time.Time,
	end time.Time,
	excludePeriodID *string,
) (bool, error) {
	db := r.conn(ctx).
		Model(&PayrollPeriod{}).
		Scopes(tenant.Scope(companyID)).
		Where("NOT (end_date < ? OR start_date > ?)", start.Format(calc.DateLayout), end.Format(calc.DateLayout))

	if excludePeriodID != nil && *excludePeriodID != "" {
		db = db.Where("id <> ?", *excludePeriodID)
	}

	var count int64
	err := db.Count(&count).Error
	return count > 0, err
}

func (r *repository) CountEntriesByStatus(ctx context.Context, companyID, periodID string) (map[string]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	err := r.conn(ctx).
		Model(&PayrollEntry{}).
		Select("status, COUNT(*) AS total").
		Scopes(tenant.Scope(companyID)).
		Where("period_id = ?", periodID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func (r *repository) ListCompaniesWithActiveEmployees(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.conn(ctx).
		Table("employees").
		Distinct("company_id").
		Where("deleted_at IS NULL AND employment_status = ?", "ACTIVE").
		Pluck("company_id", &ids).Error
	return ids, err
}

// FindPayees returns employees with the latest daily rate effective on asOf.
// Without employeeIDs only ACTIVE employees are returned; with them the
// listed employees are returned whatever their status.
func (r *repository) FindPayees(ctx context.Context, companyID string, asOf time.Time, employeeIDs []string) ([]Payee, error) {
	query := `
		SELECT e.id AS employee_id, e.employee_number, e.full_name, rate.daily_rate
		FROM employees e
		LEFT JOIN LATERAL (
			SELECT er.daily_rate
			FROM employee_rates er
			WHERE er.employee_id = e.id
			  AND er.company_id = e.company_id
			  AND er.effective_date <= ?
			ORDER BY er.effective_date DESC
			LIMIT 1
		) rate ON TRUE
		WHERE e.company_id = ? AND e.deleted_at IS NULL`
	args := []any{asOf.Format(calc.DateLayout), companyID}

	if len(employeeIDs) > 0 {
		query += ` AND e.id IN ?`
		args = append(args, employeeIDs)
	} else {
		query += ` AND e.employment_status = 'ACTIVE'`
	}
	query += ` ORDER BY e.employee_number ASC`

	var payees []Payee
	err := r.conn(ctx).Raw(query, args...).Scan(&payees).Error
	return payees, err
}

func (r *repository) FindEntriesByPeriod(ctx context.Context, companyID, periodID string) ([]PayrollEntry, error) {
	var entries []PayrollEntry
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("period_id = ?", periodID).
		Find(&entries).Error
	return entries, err
}

func (r *repository) FindEntries(ctx context.Context, companyID string, q EntryQuery) ([]PayrollEntry, error) {
	db := r.conn(ctx).
		Preload("Employee").
		Preload("Period").
		Scopes(tenant.Scope(companyID))
	if q.PeriodID != "" {
		db = db.Where("period_id = ?", q.PeriodID)
	}
	if q.EmployeeID != "" {
		db = db.Where("employee_id = ?", q.EmployeeID)
	}
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}

	var entries []PayrollEntry
	err := db.Order("created_at DESC").Find(&entries).Error
	return entries, err
}

func (r *repository) FindEntryByID(ctx context.Context, companyID, id string) (*PayrollEntry, error) {
	var e PayrollEntry
	err := r.conn(ctx).
		Preload("Employee").
		Preload("Period").
		Scopes(tenant.Scope(companyID)).
		First(&e, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) FindEntryWithDays(ctx context.Context, companyID, id string) (*PayrollEntry, error) {
	var e PayrollEntry
	err := r.conn(ctx).
		Preload("Employee").
		Preload("Period").
		Preload("Days", func(db *gorm.DB) *gorm.DB {
			return db.Order("work_date ASC")
		}).
		Scopes(tenant.Scope(companyID)).
		First(&e, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateEntry inserts the entry together with its Days.
func (r *repository) CreateEntry(ctx context.Context, e *PayrollEntry) error {
	return r.conn(ctx).Omit("Employee", "Period").Create(e).Error
}

// ReplaceEntry rewrites an existing entry and swaps its day rows.
func (r *repository) ReplaceEntry(ctx context.Context, e *PayrollEntry) error {
	db := r.conn(ctx)
	if err := db.Where("entry_id = ?", e.ID).Delete(&PayrollEntryDay{}).Error; err != nil {
		return err
	}
	if err := db.Omit("Employee", "Period", "Days").Save(e).Error; err != nil {
		return err
	}
	if len(e.Days) == 0 {
		return nil
	}
	for i := range e.Days {
		e.Days[i].EntryID = e.ID
	}
	return db.Create(&e.Days).Error
}

func (r *repository) UpdateEntry(ctx context.Context, e *PayrollEntry) error {
	return r.conn(ctx).Omit("Employee", "Period", "Days").Save(e).Error
}

func (r *repository) DeleteEntry(ctx context.Context, companyID, id string) error {
	db := r.conn(ctx)
	if err := db.Where("entry_id = ?", id).Delete(&PayrollEntryDay{}).Error; err != nil {
		return err
	}

	res := db.Scopes(tenant.Scope(companyID)).Delete(&PayrollEntry{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Table("employees").
		Where("id = ?", employeeID).
		Scopes(tenant.Scope(companyID)).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count > 0, err
}

// mapRepositoryError translates storage errors; notFound is returned for a
// missing row since the caller knows whether it looked up a period or an entry.
func mapRepositoryError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "uq_payroll_period_start":
			return payrollerrors.ErrPeriodOverlap
		case "uq_payroll_entry_employee_period":
			return payrollerrors.ErrEntryAlreadyExists
		}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "duplicate key value") {
		if strings.Contains(msg, "uq_payroll_period_start") {
			return payrollerrors.ErrPeriodOverlap
		}
		if strings.Contains(msg, "uq_payroll_entry_employee_period") {
			return payrollerrors.ErrEntryAlreadyExists
		}
	}
	return err
}
