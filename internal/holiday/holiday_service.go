package holiday

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	holidayerrors "go-payroll/internal/holiday/errors"
	"go-payroll/internal/payroll/calc"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=holiday_service.go -destination=mock/holiday_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID, actorID string, req CreateHolidayRequest) (HolidayResponse, error)
	GetAll(ctx context.Context, companyID string, filter HolidayFilter) ([]HolidayResponse, error)
	GetByID(ctx context.Context, companyID, id string) (HolidayResponse, error)
	Update(ctx context.Context, companyID, id string, req UpdateHolidayRequest) (HolidayResponse, error)
	Delete(ctx context.Context, companyID, id string) error
	TypeOn(ctx context.Context, companyID string, date time.Time) (calc.HolidayType, bool, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("holiday.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("holiday.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, companyID, actorID string, req CreateHolidayRequest) (HolidayResponse, error) {
	date, holidayType, err := parseHolidayInput(req.Date, req.Type)
	if err != nil {
		return HolidayResponse{}, err
	}
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return HolidayResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create holiday begin tx failed", zap.Error(err))
		return HolidayResponse{}, err
	}
	defer tx.Rollback()

	h := &Holiday{
		ID:          uuid.New(),
		CompanyID:   companyUUID,
		HolidayDate: date,
		Name:        req.Name,
		Type:        string(holidayType),
		CreatedBy:   uuidPtr(actorID),
	}
	if err := s.repo.WithTx(tx).Create(ctx, h); err != nil {
		s.logger.Warn("create holiday persist failed", zap.String("date", req.Date), zap.Error(err))
		return HolidayResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return HolidayResponse{}, err
	}

	s.logger.Info("holiday created",
		zap.String("company_id", companyID),
		zap.String("date", req.Date),
		zap.String("type", h.Type),
	)
	return mapToResponse(*h), nil
}

func (s *service) GetAll(ctx context.Context, companyID string, filter HolidayFilter) ([]HolidayResponse, error) {
	from, to, err := resolveRange(filter)
	if err != nil {
		return nil, err
	}

	holidays, err := s.repo.FindAllByCompany(ctx, companyID, from, to)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	res := make([]HolidayResponse, len(holidays))
	for i, h := range holidays {
		res[i] = mapToResponse(h)
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (HolidayResponse, error) {
	h, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return HolidayResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*h), nil
}

func (s *service) Update(ctx context.Context, companyID, id string, req UpdateHolidayRequest) (HolidayResponse, error) {
	date, holidayType, err := parseHolidayInput(req.Date, req.Type)
	if err != nil {
		return HolidayResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return HolidayResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	h, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return HolidayResponse{}, mapRepositoryError(err)
	}

	h.HolidayDate = date
	h.Name = req.Name
	h.Type = string(holidayType)

	if err := qtx.Update(ctx, h); err != nil {
		return HolidayResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return HolidayResponse{}, err
	}

	return mapToResponse(*h), nil
}

func (s *service) Delete(ctx context.Context, companyID, id string) error {
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

// TypeOn reports the calendar holiday type of date, if any.
func (s *service) TypeOn(ctx context.Context, companyID string, date time.Time) (calc.HolidayType, bool, error) {
	h, err := s.repo.FindByDate(ctx, companyID, calc.DateOf(date))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}

	holidayType, err := calc.ParseHolidayType(h.Type)
	if err != nil {
		return "", false, fmt.Errorf("holiday %s: %w", h.ID, err)
	}
	return holidayType, true, nil
}

func parseHolidayInput(dateStr, typeStr string) (time.Time, calc.HolidayType, error) {
	date, err := time.Parse(calc.DateLayout, dateStr)
	if err != nil {
		return time.Time{}, "", holidayerrors.ErrInvalidDate
	}
	holidayType, err := calc.ParseHolidayType(typeStr)
	if err != nil {
		return time.Time{}, "", holidayerrors.ErrInvalidHolidayType
	}
	return date, holidayType, nil
}

func resolveRange(filter HolidayFilter) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if filter.Year > 0 {
		start := time.Date(filter.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(filter.Year, time.December, 31, 0, 0, 0, 0, time.UTC)
		from, to = &start, &end
	}
	if filter.From != "" {
		t, err := time.Parse(calc.DateLayout, filter.From)
		if err != nil {
			return nil, nil, holidayerrors.ErrInvalidDate
		}
		from = &t
	}
	if filter.To != "" {
		t, err := time.Parse(calc.DateLayout, filter.To)
		if err != nil {
			return nil, nil, holidayerrors.ErrInvalidDate
		}
		to = &t
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, holidayerrors.ErrInvalidRange
	}
	return from, to, nil
}

func mapToResponse(h Holiday) HolidayResponse {
	return HolidayResponse{
		ID:        h.ID.String(),
		CompanyID: h.CompanyID.String(),
		Date:      h.HolidayDate.Format(calc.DateLayout),
		Weekday:   h.HolidayDate.Weekday().String(),
		Name:      h.Name,
		Type:      h.Type,
	}
}

func uuidPtr(v string) *uuid.UUID {
	id, err := uuid.Parse(v)
	if err != nil {
		return nil
	}
	return &id
}
