package payroll

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/payroll/calc"
	payrollerrors "go-payroll/internal/payroll/errors"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// outcome is the result of one employee in a generation run. entry is the
// stored entry after the run (the existing one when skipped); err is the
// per-employee failure, if any.
type outcome struct {
	payee    Payee
	decision calc.Decision
	entry    *PayrollEntry
	err      error
}

type computed struct {
	pay   calc.PeriodPay
	entry calc.Entry
	err   error
}

type generation struct {
	companyID   string
	actorID     string
	period      *PayrollPeriod
	policy      calc.DuplicatePolicy
	employeeIDs []string
}

// GeneratePeriod computes entries for every active employee of the period.
// Employees that fail are reported in the summary and do not abort the run;
// storage errors roll the whole run back.
func (s *service) GeneratePeriod(
	ctx context.Context,
	companyID, actorID, periodID string,
	req GeneratePeriodRequest,
) (GenerationSummary, error) {
	policy, err := calc.ParseDuplicatePolicy(req.Policy)
	if err != nil {
		return GenerationSummary{}, payrollerrors.ErrInvalidPolicy
	}

	tracker := s.metrics.TrackBatch(string(policy))
	summary, err := s.generatePeriod(ctx, companyID, actorID, periodID, policy, req.EmployeeIDs)
	if err := tracker.End(err); err != nil {
		return GenerationSummary{}, err
	}

	s.metrics.AddEntries("created", summary.Created)
	s.metrics.AddEntries("overwritten", summary.Overwritten)
	s.metrics.AddEntries("skipped", summary.Skipped)
	s.metrics.AddEntries("failed", summary.Failed)
	s.metrics.AddEntries("negative_net", summary.NegativeNet)
	return summary, nil
}

func (s *service) generatePeriod(
	ctx context.Context,
	companyID, actorID, periodID string,
	policy calc.DuplicatePolicy,
	employeeIDs []string,
) (GenerationSummary, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	rid := contextutil.GetRequestID(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return GenerationSummary{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	period, err := qtx.LockPeriod(ctx, companyID, periodID)
	if err != nil {
		return GenerationSummary{}, mapRepositoryError(err, payrollerrors.ErrPeriodNotFound)
	}
	if period.Status != PeriodStatusPending && period.Status != PeriodStatusOpen {
		return GenerationSummary{}, payrollerrors.ErrPeriodNotGeneratable
	}

	outcomes, err := s.run(ctx, qtx, generation{
		companyID:   companyID,
		actorID:     actorID,
		period:      period,
		policy:      policy,
		employeeIDs: employeeIDs,
	})
	if err != nil {
		log.Error("payroll generation aborted",
			zap.String("request_id", rid),
			zap.String("period_id", periodID),
			zap.Error(err),
		)
		return GenerationSummary{}, err
	}

	summary := GenerationSummary{
		PeriodID: periodID,
		WeekID:   period.WeekID,
		Policy:   string(policy),
		Failures: []GenerationFailure{},
	}
	for _, o := range outcomes {
		if o.err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, GenerationFailure{
				EmployeeID:   o.payee.EmployeeID.String(),
				EmployeeName: o.payee.FullName,
				Reason:       reasonOf(o.err),
			})
			continue
		}
		switch o.decision {
		case calc.DecisionSkip:
			summary.Skipped++
			continue
		case calc.DecisionCreate:
			summary.Created++
		case calc.DecisionOverwrite:
			summary.Overwritten++
		}
		summary.Succeeded++
		if o.entry.NegativeNet {
			summary.NegativeNet++
		}
		if o.entry.MissingRate {
			summary.MissingRate++
			log.Warn("employee has no daily rate, unpaid days counted as zero",
				zap.String("period_id", periodID),
				zap.String("employee_id", o.payee.EmployeeID.String()),
			)
		}
	}

	if s.outbox != nil {
		event := events.PayrollPeriodGeneratedEvent{
			EventType:   events.EventTypePeriodGenerated,
			RequestID:   rid,
			PeriodID:    periodID,
			WeekID:      period.WeekID,
			CompanyID:   companyID,
			Policy:      string(policy),
			Succeeded:   summary.Succeeded,
			Skipped:     summary.Skipped,
			Failed:      summary.Failed,
			NegativeNet: summary.NegativeNet,
			GeneratedBy: actorID,
			OccurredAt:  s.now(),
		}
		outboxEvent, err := kafka.NewEvent(rid, "payroll_period", periodID, event.EventType, events.PayrollPeriodGeneratedTopic, event)
		if err != nil {
			return GenerationSummary{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, outboxEvent); err != nil {
			log.Error("payroll generation outbox persist failed", zap.String("period_id", periodID), zap.Error(err))
			return GenerationSummary{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return GenerationSummary{}, err
	}

	log.Info("payroll period generated",
		zap.String("request_id", rid),
		zap.String("period_id", periodID),
		zap.String("week_id", period.WeekID),
		zap.String("policy", string(policy)),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Int("negative_net", summary.NegativeNet),
	)
	s.record(ctx, "PAYROLL_PERIOD_GENERATED", "payroll period generated", map[string]any{
		"period_id": periodID,
		"week_id":   period.WeekID,
		"policy":    string(policy),
		"actor_id":  actorID,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
	})
	return summary, nil
}

// GenerateEntry computes the entry of a single employee. Unlike a batch run,
// every per-employee failure is returned as an error.
func (s *service) GenerateEntry(
	ctx context.Context,
	companyID, actorID, periodID string,
	req GenerateEntryRequest,
) (EntryResponse, error) {
	policy, err := calc.ParseDuplicatePolicy(req.Policy)
	if err != nil {
		return EntryResponse{}, payrollerrors.ErrInvalidPolicy
	}
	if _, err := uuid.Parse(req.EmployeeID); err != nil {
		return EntryResponse{}, payrollerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return EntryResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	period, err := qtx.LockPeriod(ctx, companyID, periodID)
	if err != nil {
		return EntryResponse{}, mapRepositoryError(err, payrollerrors.ErrPeriodNotFound)
	}
	if period.Status != PeriodStatusPending && period.Status != PeriodStatusOpen {
		return EntryResponse{}, payrollerrors.ErrPeriodNotGeneratable
	}

	outcomes, err := s.run(ctx, qtx, generation{
		companyID:   companyID,
		actorID:     actorID,
		period:      period,
		policy:      policy,
		employeeIDs: []string{req.EmployeeID},
	})
	if err != nil {
		return EntryResponse{}, err
	}
	if len(outcomes) == 0 {
		return EntryResponse{}, payrollerrors.ErrEmployeeNotInCompany
	}

	o := outcomes[0]
	if o.err != nil {
		return EntryResponse{}, o.err
	}
	if err := tx.Commit(); err != nil {
		return EntryResponse{}, err
	}

	o.entry.Period = period
	contextutil.GetLogger(ctx, s.logger).Info("payroll entry generated",
		zap.String("period_id", periodID),
		zap.String("employee_id", req.EmployeeID),
		zap.String("decision", o.decision.String()),
	)
	return mapEntryToResponse(*o.entry), nil
}

// run executes one generation inside the caller's transaction. Inputs are
// loaded first, entries are computed concurrently, then written one by one.
func (s *service) run(ctx context.Context, qtx Repository, g generation) ([]outcome, error) {
	calcPeriod, err := calc.NewPeriod(g.period.StartDate, g.period.EndDate)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidInput, payrollerrors.ErrInvalidDateRange.Message, payrollerrors.ErrInvalidDateRange.HTTPStatus)
	}

	payees, err := qtx.FindPayees(ctx, g.companyID, calcPeriod.Start, g.employeeIDs)
	if err != nil {
		return nil, err
	}
	if len(payees) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(payees))
	for _, p := range payees {
		ids = append(ids, p.EmployeeID.String())
	}

	records, err := s.attendance.RecordsFor(ctx, g.companyID, ids, calcPeriod)
	if err != nil {
		return nil, err
	}

	stored, err := qtx.FindEntriesByPeriod(ctx, g.companyID, g.period.ID.String())
	if err != nil {
		return nil, err
	}
	existing := make(map[string]*PayrollEntry, len(stored))
	for i := range stored {
		existing[stored[i].EmployeeID.String()] = &stored[i]
	}

	outcomes := make([]outcome, len(payees))
	var pending []int
	for i, payee := range payees {
		prev := existing[payee.EmployeeID.String()]
		decision := g.policy.Decide(prev != nil, prev != nil && prev.Status == EntryStatusPending)

		outcomes[i] = outcome{payee: payee, decision: decision, entry: prev}
		switch decision {
		case calc.DecisionReject:
			outcomes[i].err = payrollerrors.ErrEntryAlreadyExists
		case calc.DecisionLocked:
			outcomes[i].err = payrollerrors.ErrEntryNotPending
		case calc.DecisionCreate, calc.DecisionOverwrite:
			pending = append(pending, i)
		}
	}

	results := make([]computed, len(pending))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.workers)
	for j, idx := range pending {
		j, idx := j, idx
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			o := outcomes[idx]
			manual := calc.ManualDeductions{}
			// Overwrite keeps the manual deductions already entered.
			if o.entry != nil {
				manual = toCalcEntry(*o.entry).Manual
			}
			results[j] = compute(calcPeriod, o.payee, records[o.payee.EmployeeID.String()], manual)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	for j, idx := range pending {
		o := &outcomes[idx]
		res := results[j]
		if res.err != nil {
			o.err = apperror.Wrap(res.err, apperror.CodeValidationError, "payroll computation failed", http.StatusUnprocessableEntity)
			continue
		}

		entry := buildEntryModel(g, o.payee, res, o.entry)
		if o.decision == calc.DecisionOverwrite {
			err = qtx.ReplaceEntry(ctx, entry)
		} else {
			err = qtx.CreateEntry(ctx, entry)
		}
		if err != nil {
			return nil, fmt.Errorf("persist entry for employee %s: %w", o.payee.EmployeeID, mapRepositoryError(err, payrollerrors.ErrEntryNotFound))
		}
		o.entry = entry
	}

	return outcomes, nil
}

func compute(period calc.Period, payee Payee, records []calc.Record, manual calc.ManualDeductions) computed {
	pay, err := calc.Aggregate(period, payee.DailyRate, records)
	if err != nil {
		return computed{err: err}
	}
	return computed{pay: pay, entry: calc.BuildEntry(pay.Gross, manual)}
}

func buildEntryModel(g generation, payee Payee, res computed, prev *PayrollEntry) *PayrollEntry {
	entry := &PayrollEntry{
		ID:          uuid.New(),
		CompanyID:   g.period.CompanyID,
		EmployeeID:  payee.EmployeeID,
		PeriodID:    g.period.ID,
		DailyRate:   payee.DailyRate,
		PaidDays:    paidDays(res.pay.Days),
		MissingRate: res.pay.MissingRate,
		Status:      EntryStatusPending,
		Employee: &EmployeeRef{
			ID:             payee.EmployeeID,
			FullName:       payee.FullName,
			EmployeeNumber: payee.EmployeeNumber,
		},
	}
	if prev != nil {
		entry.ID = prev.ID
		entry.CreatedAt = prev.CreatedAt
	}
	if actor, err := uuid.Parse(g.actorID); err == nil {
		entry.GeneratedBy = &actor
	}
	applyCalcEntry(entry, res.entry)

	entry.Days = make([]PayrollEntryDay, 0, len(res.pay.Days))
	for _, d := range res.pay.Days {
		day := PayrollEntryDay{
			ID:          uuid.New(),
			EntryID:     entry.ID,
			WorkDate:    d.Date,
			Status:      string(d.Status),
			Rate:        d.Rate,
			Multiplier:  d.Multiplier,
			Adjustment:  d.Adjustment,
			Amount:      d.Amount,
			Synthesized: d.Synthesized,
			MissingRate: d.MissingRate,
		}
		if d.HolidayType != "" {
			ht := string(d.HolidayType)
			day.HolidayType = &ht
		}
		entry.Days = append(entry.Days, day)
	}
	return entry
}

// reasonOf is the message reported for a failed employee.
func reasonOf(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Err != nil {
		return appErr.Err.Error()
	}
	return err.Error()
}
