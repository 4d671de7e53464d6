package payroll

import (
	"context"
	"errors"
	"time"

	"go-payroll/internal/payroll/calc"
	payrollerrors "go-payroll/internal/payroll/errors"
	"go-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// periodTransitions lists the allowed target statuses per current status.
var periodTransitions = map[string][]string{
	PeriodStatusPending: {PeriodStatusOpen, PeriodStatusCompleted},
	PeriodStatusOpen:    {PeriodStatusClosed},
	PeriodStatusClosed:  {PeriodStatusCompleted},
}

func canTransitionPeriod(from, to string) bool {
	for _, next := range periodTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s *service) CreatePeriod(
	ctx context.Context,
	companyID, actorID string,
	req CreatePeriodRequest,
) (PeriodResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return PeriodResponse{}, payrollerrors.ErrInvalidCompanyID
	}
	period, err := calc.ParsePeriod(req.StartDate, req.EndDate)
	if err != nil {
		if _, perr := time.Parse(calc.DateLayout, req.StartDate); perr != nil {
			return PeriodResponse{}, payrollerrors.ErrInvalidDateFormat
		}
		if _, perr := time.Parse(calc.DateLayout, req.EndDate); perr != nil {
			return PeriodResponse{}, payrollerrors.ErrInvalidDateFormat
		}
		return PeriodResponse{}, payrollerrors.ErrInvalidDateRange
	}
	if period.Length() > s.maxDays {
		return PeriodResponse{}, payrollerrors.ErrPeriodTooLong.WithDetails(map[string]any{
			"days":     period.Length(),
			"max_days": s.maxDays,
		})
	}

	var paymentDate *time.Time
	if req.PaymentDate != nil && *req.PaymentDate != "" {
		pd, err := time.Parse(calc.DateLayout, *req.PaymentDate)
		if err != nil {
			return PeriodResponse{}, payrollerrors.ErrInvalidDateFormat
		}
		paymentDate = &pd
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PeriodResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	overlap, err := qtx.HasOverlappingPeriod(ctx, companyID, period.Start, period.End, nil)
	if err != nil {
		return PeriodResponse{}, err
	}
	if overlap {
		return PeriodResponse{}, payrollerrors.ErrPeriodOverlap
	}

	p := &PayrollPeriod{
		ID:          uuid.New(),
		CompanyID:   companyUUID,
		WeekID:      calc.WeekID(period.Start),
		StartDate:   period.Start,
		EndDate:     period.End,
		PaymentDate: paymentDate,
		Status:      PeriodStatusPending,
		Notes:       req.Notes,
	}
	if actor, err := uuid.Parse(actorID); err == nil {
		p.CreatedBy = &actor
	}

	if err := qtx.CreatePeriod(ctx, p); err != nil {
		log.Error("create payroll period persist failed", zap.Error(err))
		return PeriodResponse{}, mapRepositoryError(err, payrollerrors.ErrPeriodNotFound)
	}
	if err := tx.Commit(); err != nil {
		return PeriodResponse{}, err
	}

	log.Info("payroll period created",
		zap.String("period_id", p.ID.String()),
		zap.String("week_id", p.WeekID),
	)
	return mapPeriodToResponse(*p), nil
}

func (s *service) GetPeriods(ctx context.Context, companyID string, filter PeriodFilter) ([]PeriodResponse, error) {
	periods, err := s.repo.FindPeriods(ctx, companyID, PeriodQuery{Status: filter.Status, Year: filter.Year})
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("get payroll periods failed", zap.Error(err))
		return nil, err
	}

	resp := make([]PeriodResponse, 0, len(periods))
	for _, p := range periods {
		resp = append(resp, mapPeriodToResponse(p))
	}
	return resp, nil
}

func (s *service) GetPeriod(ctx context.Context, companyID, id string) (PeriodResponse, error) {
	p, err := s.repo.FindPeriodByID(ctx, companyID, id)
	if err != nil {
		return PeriodResponse{}, mapRepositoryError(err, payrollerrors.ErrPeriodNotFound)
	}
	return mapPeriodToResponse(*p), nil
}

// TransitionPeriod moves a period along PENDING -> OPEN -> CLOSED -> COMPLETED.
// PENDING may jump to COMPLETED once entries exist. Completing requires every
// entry of the period to be PAID.
func (s *service) TransitionPeriod(ctx context.Context, companyID, id string, req TransitionPeriodRequest) (PeriodResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PeriodResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	p, err := qtx.LockPeriod(ctx, companyID, id)
	if err != nil {
		return PeriodResponse{}, mapRepositoryError(err, payrollerrors.ErrPeriodNotFound)
	}
	if !canTransitionPeriod(p.Status, req.Status) {
		return PeriodResponse{}, payrollerrors.ErrInvalidPeriodTransition.WithDetails(map[string]string{
			"from": p.Status,
			"to":   req.Status,
		})
	}

	if req.Status == PeriodStatusCompleted {
		counts, err := qtx.CountEntriesByStatus(ctx, companyID, id)
		if err != nil {
			return PeriodResponse{}, err
		}
		var total int64
		for _, n := range counts {
			total += n
		}
		if p.Status == PeriodStatusPending && total == 0 {
			return PeriodResponse{}, payrollerrors.ErrInvalidPeriodTransition.WithDetails("period has no generated entries")
		}
		if unpaid := total - counts[EntryStatusPaid]; unpaid > 0 {
			return PeriodResponse{}, payrollerrors.ErrPeriodHasUnpaidEntries.WithDetails(map[string]int64{"unpaid": unpaid})
		}
	}

	from := p.Status
	p.Status = req.Status
	if err := qtx.UpdatePeriod(ctx, p); err != nil {
		return PeriodResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return PeriodResponse{}, err
	}

	contextutil.GetLogger(ctx, s.logger).Info("payroll period transitioned",
		zap.String("period_id", id),
		zap.String("from", from),
		zap.String("to", p.Status),
	)
	return mapPeriodToResponse(*p), nil
}

// EnsureWeeklyPeriods creates the Monday to Sunday period containing now for
// every company with active employees that has no overlapping period yet.
// Failures of one company do not stop the others.
func (s *service) EnsureWeeklyPeriods(ctx context.Context, now time.Time) (int, error) {
	week := calc.WeekOf(now)

	companies, err := s.repo.ListCompaniesWithActiveEmployees(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	var errs []error
	for _, companyID := range companies {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		overlap, err := s.repo.HasOverlappingPeriod(ctx, companyID, week.Start, week.End, nil)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if overlap {
			continue
		}

		companyUUID, err := uuid.Parse(companyID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		p := &PayrollPeriod{
			ID:        uuid.New(),
			CompanyID: companyUUID,
			WeekID:    calc.WeekID(week.Start),
			StartDate: week.Start,
			EndDate:   week.End,
			Status:    PeriodStatusPending,
		}
		if err := s.repo.CreatePeriod(ctx, p); err != nil {
			// Another scheduler instance won the race.
			if errors.Is(mapRepositoryError(err, nil), payrollerrors.ErrPeriodOverlap) {
				continue
			}
			errs = append(errs, err)
			continue
		}
		created++
	}

	s.logger.Info("weekly payroll periods ensured",
		zap.String("week_id", calc.WeekID(week.Start)),
		zap.Int("companies", len(companies)),
		zap.Int("created", created),
		zap.Int("failed", len(errs)),
	)
	return created, errors.Join(errs...)
}
