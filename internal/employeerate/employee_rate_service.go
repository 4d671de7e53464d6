package employeerate

import (
	"context"
	"database/sql"
	"errors"
	"time"

	employeerateerrors "go-payroll/internal/employeerate/errors"
	"go-payroll/internal/events"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_rate_service.go -destination=mock/employee_rate_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID, actorID string, req CreateEmployeeRateRequest) (EmployeeRateResponse, error)
	GetAll(ctx context.Context, companyID, employeeID string) ([]EmployeeRateResponse, error)
	GetByID(ctx context.Context, companyID, id string) (EmployeeRateResponse, error)
	RateAt(ctx context.Context, companyID, employeeID, asOf string) (EmployeeRateResponse, error)
	Delete(ctx context.Context, companyID, id string) error
	SeedInitialRate(ctx context.Context, event events.EmployeeCreatedEvent) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("employeerate.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employeerate.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Create(
	ctx context.Context,
	companyID, actorID string,
	req CreateEmployeeRateRequest,
) (EmployeeRateResponse, error) {
	if !req.DailyRate.IsPositive() {
		return EmployeeRateResponse{}, employeerateerrors.ErrInvalidDailyRate
	}
	effectiveDate, err := time.Parse("2006-01-02", req.EffectiveDate)
	if err != nil {
		return EmployeeRateResponse{}, employeerateerrors.ErrInvalidEffectiveDate
	}
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return EmployeeRateResponse{}, apperror.InvalidField("company_id")
	}
	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return EmployeeRateResponse{}, apperror.InvalidField("employee_id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return EmployeeRateResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	exists, err := qtx.EmployeeExists(ctx, companyID, req.EmployeeID)
	if err != nil {
		return EmployeeRateResponse{}, err
	}
	if !exists {
		return EmployeeRateResponse{}, employeerateerrors.ErrEmployeeNotFound
	}

	rate := &EmployeeRate{
		ID:            uuid.New(),
		CompanyID:     companyUUID,
		EmployeeID:    employeeUUID,
		DailyRate:     req.DailyRate.Round(2),
		EffectiveDate: effectiveDate,
		Notes:         req.Notes,
		CreatedBy:     uuidPtr(actorID),
	}

	if err := qtx.Create(ctx, rate); err != nil {
		return EmployeeRateResponse{}, mapRepositoryError(err)
	}

	created, err := qtx.FindByIDAndCompany(ctx, companyID, rate.ID.String())
	if err != nil {
		return EmployeeRateResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return EmployeeRateResponse{}, err
	}

	s.logger.Info("employee rate created",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("employee_id", req.EmployeeID),
		zap.String("effective_date", req.EffectiveDate),
	)

	return mapToResponse(*created), nil
}

func (s *service) GetAll(
	ctx context.Context,
	companyID, employeeID string,
) ([]EmployeeRateResponse, error) {
	rates, err := s.repo.FindAllByCompany(ctx, companyID, employeeID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	return mapToListResponse(rates), nil
}

func (s *service) GetByID(
	ctx context.Context,
	companyID, id string,
) (EmployeeRateResponse, error) {
	rate, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return EmployeeRateResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*rate), nil
}

func (s *service) RateAt(
	ctx context.Context,
	companyID, employeeID, asOf string,
) (EmployeeRateResponse, error) {
	date := time.Now().UTC()
	if asOf != "" {
		parsed, err := time.Parse("2006-01-02", asOf)
		if err != nil {
			return EmployeeRateResponse{}, employeerateerrors.ErrInvalidEffectiveDate
		}
		date = parsed
	}

	rate, err := s.repo.FindRateAt(ctx, companyID, employeeID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EmployeeRateResponse{}, employeerateerrors.ErrNoRateInEffect
		}
		return EmployeeRateResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*rate), nil
}

func (s *service) Delete(
	ctx context.Context,
	companyID, id string,
) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Delete(ctx, companyID, id); err != nil {
		return mapRepositoryError(err)
	}

	return tx.Commit()
}

// SeedInitialRate opens the rate history of a new hire from the
// employee_created event. A duplicate delivery yields ErrRateAlreadyExists.
func (s *service) SeedInitialRate(ctx context.Context, event events.EmployeeCreatedEvent) error {
	log := contextutil.GetLogger(ctx, s.logger)

	if !event.DailyRate.IsPositive() {
		log.Warn("employee_created event without daily rate, nothing to seed",
			zap.String("employee_id", event.EmployeeID),
		)
		return nil
	}

	effectiveDate, err := time.Parse("2006-01-02", event.HireDate)
	if err != nil {
		effectiveDate = event.OccurredAt.UTC().Truncate(24 * time.Hour)
	}

	companyID, err := uuid.Parse(event.CompanyID)
	if err != nil {
		return err
	}
	employeeID, err := uuid.Parse(event.EmployeeID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, &EmployeeRate{
		ID:            uuid.New(),
		CompanyID:     companyID,
		EmployeeID:    employeeID,
		DailyRate:     event.DailyRate.Round(2),
		EffectiveDate: effectiveDate,
		Notes:         "initial rate",
	}); err != nil {
		return mapRepositoryError(err)
	}

	return tx.Commit()
}

func mapToResponse(rate EmployeeRate) EmployeeRateResponse {
	return EmployeeRateResponse{
		ID:            rate.ID.String(),
		EmployeeID:    rate.EmployeeID.String(),
		EmployeeName:  rate.EmployeeName,
		DailyRate:     rate.DailyRate,
		EffectiveDate: rate.EffectiveDate.Format("2006-01-02"),
		Notes:         rate.Notes,
	}
}

func mapToListResponse(rates []EmployeeRate) []EmployeeRateResponse {
	res := make([]EmployeeRateResponse, len(rates))
	for i, rate := range rates {
		res[i] = mapToResponse(rate)
	}
	return res
}

func uuidPtr(v string) *uuid.UUID {
	id, err := uuid.Parse(v)
	if err != nil {
		return nil
	}
	return &id
}
