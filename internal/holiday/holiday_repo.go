package holiday

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	holidayerrors "go-payroll/internal/holiday/errors"
	"go-payroll/internal/shared/dbtx"
	"go-payroll/internal/tenant"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

//go:generate mockgen -source=holiday_repo.go -destination=mock/holiday_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, h *Holiday) error
	FindAllByCompany(ctx context.Context, companyID string, from, to *time.Time) ([]Holiday, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Holiday, error)
	FindByDate(ctx context.Context, companyID string, date time.Time) (*Holiday, error)
	Update(ctx context.Context, h *Holiday) error
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

func (r *repository) Create(ctx context.Context, h *Holiday) error {
	return r.conn(ctx).Create(h).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string, from, to *time.Time) ([]Holiday, error) {
	q := r.conn(ctx).Scopes(tenant.Scope(companyID))
	if from != nil {
		q = q.Where("holiday_date >= ?", from.Format("2006-01-02"))
	}
	if to != nil {
		q = q.Where("holiday_date <= ?", to.Format("2006-01-02"))
	}

	var holidays []Holiday
	err := q.Order("holiday_date ASC").Find(&holidays).Error
	return holidays, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Holiday, error) {
	var h Holiday
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&h, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *repository) FindByDate(ctx context.Context, companyID string, date time.Time) (*Holiday, error) {
	var h Holiday
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("holiday_date = ?", date.Format("2006-01-02")).
		Take(&h).Error
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *repository) Update(ctx context.Context, h *Holiday) error {
	return r.conn(ctx).Save(h).Error
}

func (r *repository) Delete(ctx context.Context, companyID, id string) error {
	res := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&Holiday{}, "id = ?", id)
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
		return holidayerrors.ErrHolidayNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "uq_holiday_company_date" {
		return holidayerrors.ErrHolidayAlreadyExists
	}
	if msg := strings.ToLower(err.Error()); strings.Contains(msg, "duplicate key value") && strings.Contains(msg, "uq_holiday_company_date") {
		return holidayerrors.ErrHolidayAlreadyExists
	}
	return err
}
