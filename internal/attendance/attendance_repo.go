package attendance

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	attendanceerrors "go-payroll/internal/attendance/errors"
	"go-payroll/internal/payroll/calc"
	"go-payroll/internal/shared/dbtx"
	"go-payroll/internal/tenant"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Query is the repository-level form of AttendanceFilter.
type Query struct {
	EmployeeID string
	From       *time.Time
	To         *time.Time
	Status     string
}

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, a *Attendance) error
	Update(ctx context.Context, a *Attendance) error
	FindByEmployeeAndDate(ctx context.Context, companyID, employeeID string, date time.Time) (*Attendance, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Attendance, error)
	FindAllByCompany(ctx context.Context, companyID string, q Query) ([]Attendance, error)
	FindByEmployeesAndRange(ctx context.Context, companyID string, employeeIDs []string, start, end time.Time) ([]Attendance, error)
	EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error)
	IsDateLocked(ctx context.Context, companyID, employeeID string, date time.Time) (bool, error)
	Delete(ctx context.Context, companyID, id string) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return dbtx.Conn(ctx, r.db, r.tx)
}

func (r *repository) Create(ctx context.Context, a *Attendance) error {
	return r.conn(ctx).Omit("Employee").Create(a).Error
}

func (r *repository) Update(ctx context.Context, a *Attendance) error {
	return r.conn(ctx).Omit("Employee").Save(a).Error
}

func (r *repository) FindByEmployeeAndDate(ctx context.Context, companyID, employeeID string, date time.Time) (*Attendance, error) {
	var a Attendance
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("attendance_date = ?", date.Format(calc.DateLayout)).
		Take(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Attendance, error) {
	var a Attendance
	err := r.conn(ctx).
		Preload("Employee").
		Scopes(tenant.Scope(companyID)).
		First(&a, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string, q Query) ([]Attendance, error) {
	db := r.conn(ctx).
		Preload("Employee").
		Scopes(tenant.Scope(companyID))
	if q.EmployeeID != "" {
		db = db.Where("employee_id = ?", q.EmployeeID)
	}
	if q.From != nil {
		db = db.Where("attendance_date >= ?", q.From.Format(calc.DateLayout))
	}
	if q.To != nil {
		db = db.Where("attendance_date <= ?", q.To.Format(calc.DateLayout))
	}
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}

	var rows []Attendance
	err := db.Order("attendance_date DESC, employee_id ASC").Find(&rows).Error
	return rows, err
}

// FindByEmployeesAndRange loads every record of the given employees dated
// within [start, end], ordered by employee then date.
func (r *repository) FindByEmployeesAndRange(ctx context.Context, companyID string, employeeIDs []string, start, end time.Time) ([]Attendance, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}

	var rows []Attendance
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id IN ?", employeeIDs).
		Where("attendance_date BETWEEN ? AND ?", start.Format(calc.DateLayout), end.Format(calc.DateLayout)).
		Order("employee_id ASC, attendance_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Table("employees").
		Scopes(tenant.Scope(companyID)).
		Where("id = ? AND deleted_at IS NULL", employeeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsDateLocked reports whether date falls inside a period where the employee
// already has an APPROVED or PAID payroll entry.
func (r *repository) IsDateLocked(ctx context.Context, companyID, employeeID string, date time.Time) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Table("payroll_entries AS pe").
		Joins("JOIN payroll_periods pp ON pp.id = pe.period_id").
		Scopes(tenant.ScopeOn("pe", companyID)).
		Where("pe.employee_id = ?", employeeID).
		Where("pe.status IN ?", []string{"APPROVED", "PAID"}).
		Where("pp.start_date <= ? AND pp.end_date >= ?", date.Format(calc.DateLayout), date.Format(calc.DateLayout)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) Delete(ctx context.Context, companyID, id string) error {
	res := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&Attendance{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return attendanceerrors.ErrAttendanceNotFound
	}

	// Two upserts of the same (employee, date) raced on insert.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "uq_attendance_employee_date" {
		return attendanceerrors.ErrAttendanceConflict
	}
	if msg := strings.ToLower(err.Error()); strings.Contains(msg, "duplicate key value") && strings.Contains(msg, "uq_attendance_employee_date") {
		return attendanceerrors.ErrAttendanceConflict
	}
	return err
}
