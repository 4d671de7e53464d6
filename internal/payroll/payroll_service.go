package payroll

import (
	"context"
	"database/sql"
	"time"

	"go-payroll/internal/bootstrap"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/observability"
	"go-payroll/internal/payroll/calc"
	payrollerrors "go-payroll/internal/payroll/errors"
	"go-payroll/internal/shared/contextutil"
	"go-payroll/internal/shared/counter"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	PeriodStatusPending   = "PENDING"
	PeriodStatusOpen      = "OPEN"
	PeriodStatusClosed    = "CLOSED"
	PeriodStatusCompleted = "COMPLETED"

	EntryStatusPending  = "PENDING"
	EntryStatusApproved = "APPROVED"
	EntryStatusPaid     = "PAID"
)

const (
	defaultWorkers        = 4
	defaultPayslipDir     = "storage/payslips"
	defaultPayslipBaseURL = "/files/payslips"
)

// AttendanceSource supplies the attendance records the resolver works on,
// keyed by employee id.
type AttendanceSource interface {
	RecordsFor(ctx context.Context, companyID string, employeeIDs []string, period calc.Period) (map[string][]calc.Record, error)
}

//go:generate mockgen -source=payroll_service.go -destination=mock/payroll_service_mock.go -package=mock
type Service interface {
	CreatePeriod(ctx context.Context, companyID, actorID string, req CreatePeriodRequest) (PeriodResponse, error)
	GetPeriods(ctx context.Context, companyID string, filter PeriodFilter) ([]PeriodResponse, error)
	GetPeriod(ctx context.Context, companyID, id string) (PeriodResponse, error)
	TransitionPeriod(ctx context.Context, companyID, id string, req TransitionPeriodRequest) (PeriodResponse, error)
	EnsureWeeklyPeriods(ctx context.Context, now time.Time) (int, error)

	GeneratePeriod(ctx context.Context, companyID, actorID, periodID string, req GeneratePeriodRequest) (GenerationSummary, error)
	GenerateEntry(ctx context.Context, companyID, actorID, periodID string, req GenerateEntryRequest) (EntryResponse, error)

	GetEntries(ctx context.Context, companyID, actorID string, canReadAll bool, filter EntryFilter) ([]EntryResponse, error)
	GetEntry(ctx context.Context, companyID, actorID string, canReadAll bool, id string) (EntryResponse, error)
	GetBreakdown(ctx context.Context, companyID, actorID string, canReadAll bool, id string) (BreakdownResponse, error)
	UpdateDeductions(ctx context.Context, companyID, id string, req UpdateDeductionsRequest) (EntryResponse, error)
	Approve(ctx context.Context, companyID, actorID, id string) (EntryResponse, error)
	MarkAsPaid(ctx context.Context, companyID, actorID, id string) (EntryResponse, error)
	Delete(ctx context.Context, companyID, id string) error

	GeneratePayslip(ctx context.Context, companyID, id string) (EntryResponse, error)
	RenderPayslip(ctx context.Context, companyID, entryID string) error
}

// Options carries the optional collaborators of the service. Zero values
// disable the matching feature (no outbox events, no payslip numbers, no
// metrics).
type Options struct {
	Outbox         kafka.OutboxRepository
	Counter        counter.Repository
	Metrics        *observability.Metrics
	Workers        int
	PayslipDir     string
	PayslipBaseURL string
	// MaxPeriodDays caps CreatePeriod; zero means calc.DefaultMaxPeriodDays.
	MaxPeriodDays  int
	Audit          bootstrap.AuditLogger
	Logger         *zap.Logger
}

type service struct {
	db         *sql.DB
	repo       Repository
	attendance AttendanceSource
	outbox     kafka.OutboxRepository
	counter    counter.Repository
	metrics    *observability.Metrics
	workers    int
	payslipDir string
	payslipURL string
	maxDays    int
	audit      bootstrap.AuditLogger
	now        func() time.Time
	logger     *zap.Logger
}

func NewService(db *sql.DB, repo Repository, attendance AttendanceSource, logger ...*zap.Logger) Service {
	opts := Options{}
	if len(logger) > 0 {
		opts.Logger = logger[0]
	}
	return NewServiceWithOptions(db, repo, attendance, opts)
}

func NewServiceWithOptions(db *sql.DB, repo Repository, attendance AttendanceSource, opts Options) Service {
	l := zap.L().Named("payroll.service")
	if opts.Logger != nil {
		l = opts.Logger.Named("payroll.service")
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	dir := opts.PayslipDir
	if dir == "" {
		dir = defaultPayslipDir
	}
	baseURL := opts.PayslipBaseURL
	if baseURL == "" {
		baseURL = defaultPayslipBaseURL
	}
	maxDays := opts.MaxPeriodDays
	if maxDays <= 0 {
		maxDays = calc.DefaultMaxPeriodDays
	}

	return &service{
		db:         db,
		repo:       repo,
		attendance: attendance,
		outbox:     opts.Outbox,
		counter:    opts.Counter,
		metrics:    opts.Metrics,
		workers:    workers,
		payslipDir: dir,
		payslipURL: baseURL,
		maxDays:    maxDays,
		audit:      opts.Audit,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     l,
	}
}

// record writes an audit entry when an audit logger is configured.
func (s *service) record(ctx context.Context, action, message string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	s.audit.Log(ctx, bootstrap.AuditLog{Action: action, Message: message, Meta: meta})
}

func (s *service) GetEntries(
	ctx context.Context,
	companyID, actorID string,
	canReadAll bool,
	filter EntryFilter,
) ([]EntryResponse, error) {
	q := EntryQuery{PeriodID: filter.PeriodID, EmployeeID: filter.EmployeeID}
	if filter.Status != "" {
		status, ok := normalizeEntryStatus(filter.Status)
		if !ok {
			return nil, payrollerrors.ErrInvalidStatusFilter
		}
		q.Status = status
	}
	// Karyawan hanya melihat slip miliknya sendiri.
	if !canReadAll {
		q.EmployeeID = actorID
	}

	entries, err := s.repo.FindEntries(ctx, companyID, q)
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("get payroll entries failed", zap.Error(err))
		return nil, err
	}

	resp := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, mapEntryToResponse(e))
	}
	return resp, nil
}

func (s *service) GetEntry(ctx context.Context, companyID, actorID string, canReadAll bool, id string) (EntryResponse, error) {
	entry, err := s.repo.FindEntryByID(ctx, companyID, id)
	if err != nil {
		return EntryResponse{}, mapRepositoryError(err, payrollerrors.ErrEntryNotFound)
	}
	if !canReadAll && entry.EmployeeID.String() != actorID {
		return EntryResponse{}, payrollerrors.ErrEntryNotFound
	}
	return mapEntryToResponse(*entry), nil
}

func (s *service) GetBreakdown(ctx context.Context, companyID, actorID string, canReadAll bool, id string) (BreakdownResponse, error) {
	entry, err := s.repo.FindEntryWithDays(ctx, companyID, id)
	if err != nil {
		return BreakdownResponse{}, mapRepositoryError(err, payrollerrors.ErrEntryNotFound)
	}
	if !canReadAll && entry.EmployeeID.String() != actorID {
		return BreakdownResponse{}, payrollerrors.ErrEntryNotFound
	}

	computed := toCalcEntry(*entry)
	days := make([]DayResponse, 0, len(entry.Days))
	for _, d := range entry.Days {
		days = append(days, mapDayToResponse(d))
	}

	return BreakdownResponse{
		Entry:          mapEntryToResponse(*entry),
		Days:           days,
		StatutoryTotal: computed.StatutoryTotal(),
		ManualTotal:    computed.Manual.Total(),
	}, nil
}

// UpdateDeductions replaces manual deductions on a PENDING entry and
// re-derives its totals.
func (s *service) UpdateDeductions(ctx context.Context, companyID, id string, req UpdateDeductionsRequest) (EntryResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return EntryResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	entry, err := qtx.FindEntryByID(ctx, companyID, id)
	if err != nil {
		return EntryResponse{}, mapRepositoryError(err, payrollerrors.ErrEntryNotFound)
	}
	if entry.Status != EntryStatusPending {
		return EntryResponse{}, payrollerrors.ErrEntryNotPending
	}

	computed := toCalcEntry(*entry)
	manual := computed.Manual
	if req.CashAdvance != nil {
		manual.CashAdvance = *req.CashAdvance
	}
	if req.Loan != nil {
		manual.Loan = *req.Loan
	}
	if req.Other != nil {
		manual.Other = *req.Other
	}
	if req.Short != nil {
		manual.Short = *req.Short
	}
	if err := manual.Validate(); err != nil {
		return EntryResponse{}, payrollerrors.ErrInvalidMoneyValue.WithDetails(err.Error())
	}

	applyCalcEntry(entry, computed.WithManual(manual))
	if err := qtx.UpdateEntry(ctx, entry); err != nil {
		log.Error("update deductions persist failed", zap.String("entry_id", id), zap.Error(err))
		return EntryResponse{}, mapRepositoryError(err, payrollerrors.ErrEntryNotFound)
	}

	if err := tx.Commit(); err != nil {
		return EntryResponse{}, err
	}

	log.Info("payroll deductions updated",
		zap.String("entry_id", id),
		zap.String("net_pay", entry.NetPay.StringFixed(2)),
		zap.Bool("negative_net", entry.NegativeNet),
	)
	return mapEntryToResponse(*entry), nil
}

func (s *service) Approve(ctx context.Context, companyID, actorID, id string) (EntryResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	rid := contextutil.GetRequestID(ctx)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return EntryResponse{}, payrollerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return EntryResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	entry, err := qtx.FindEntryByID(ctx, companyID, id)
	if err != nil {
		return EntryResponse{}, mapRepositoryError(err, payrollerrors.ErrEntryNotFound)
	}
	if entry.Status != EntryStatusPending {
		return EntryResponse{}, payrollerrors.ErrInvalidStatusTransition
	}

	now := s.now()
	entry.Status = EntryStatusApproved
	entry.ApprovedBy = &actorUUID
	entry.ApprovedAt = &now

	if err := qtx.UpdateEntry(ctx, entry); err != nil {
		log.Error("approve payroll persist failed", zap.String("entry_id", id), zap.Error(err))
		return EntryResponse{}, err
	}

	if s.outbox != nil {
		event := events.PayrollPayslipRequestedEvent{
			EventType:   events.EventTypePayslipRequested,
			RequestID:   rid,
			EntryID:     entry.ID.String(),
			PeriodID:    entry.PeriodID.String(),
			EmployeeID:  entry.EmployeeID.String(),
			CompanyID:   companyID,
			RequestedBy: actorID,
			OccurredAt:  now,
		}
		outboxEvent, err := kafka.NewEvent(rid, "payroll_entry", entry.ID.String(), event.EventType, events.PayrollPayslipRequestedTopic, event)
		if err != nil {
			return EntryResponse{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, outboxEvent); err != nil {
			log.Error("approve payroll outbox persist failed", zap.String("entry_id", id), zap.Error(err))
			return EntryResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return EntryResponse{}, err
	}

	log.Info("payroll entry approved", zap.String("request_id", rid), zap.String("entry_id", id))
	s.record(ctx, "PAYROLL_ENTRY_APPROVED", "payroll entry approved", map[string]any{
		"entry_id":    id,
		"employee_id": entry.EmployeeID.String(),
		"approved_by": actorID,
		"net_pay":     entry.NetPay.StringFixed(2),
	})
	return mapEntryToResponse(*entry), nil
}

func (s *service) MarkAsPaid(ctx context.Context, companyID, actorID, id string) (EntryResponse, error) {
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return EntryResponse{}, payrollerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return EntryResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	entry, err := qtx.FindEntryByID(ctx, companyID, id)
	if err != nil {
		return EntryResponse{}, mapRepositoryError(err, payrollerrors.ErrEntryNotFound)
	}
	if entry.Status != EntryStatusApproved {
		return EntryResponse{}, payrollerrors.ErrInvalidStatusTransition
	}

	now := s.now()
	entry.Status = EntryStatusPaid
	entry.PaidBy = &actorUUID
	entry.PaidAt = &now

	if err := qtx.UpdateEntry(ctx, entry); err != nil {
		return EntryResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return EntryResponse{}, err
	}

	contextutil.GetLogger(ctx, s.logger).Info("payroll entry paid", zap.String("entry_id", id))
	s.record(ctx, "PAYROLL_ENTRY_PAID", "payroll entry marked as paid", map[string]any{
		"entry_id": id,
		"paid_by":  actorID,
		"net_pay":  entry.NetPay.StringFixed(2),
	})
	return mapEntryToResponse(*entry), nil
}

func (s *service) Delete(ctx context.Context, companyID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	entry, err := qtx.FindEntryByID(ctx, companyID, id)
	if err != nil {
		return mapRepositoryError(err, payrollerrors.ErrEntryNotFound)
	}
	if entry.Status != EntryStatusPending {
		return payrollerrors.ErrEntryNotPending
	}

	if err := qtx.DeleteEntry(ctx, companyID, id); err != nil {
		return mapRepositoryError(err, payrollerrors.ErrEntryNotFound)
	}
	return tx.Commit()
}

func normalizeEntryStatus(v string) (string, bool) {
	switch v {
	case EntryStatusPending, "pending":
		return EntryStatusPending, true
	case EntryStatusApproved, "approved":
		return EntryStatusApproved, true
	case EntryStatusPaid, "paid":
		return EntryStatusPaid, true
	}
	return "", false
}

func toCalcEntry(e PayrollEntry) calc.Entry {
	return calc.Entry{
		Gross:           e.GrossPay,
		SocialInsurance: e.SSS,
		HealthInsurance: e.PhilHealth,
		HousingFund:     e.PagIBIG,
		IncomeTax:       e.WithholdingTax,
		Manual: calc.ManualDeductions{
			CashAdvance: e.CashAdvance,
			Loan:        e.Loan,
			Other:       e.OtherDeduction,
			Short:       e.ShortDeduction,
		},
		TotalDeductions: e.TotalDeductions,
		NetPay:          e.NetPay,
		NegativeNet:     e.NegativeNet,
		Shortfall:       e.Shortfall,
	}
}

func applyCalcEntry(e *PayrollEntry, c calc.Entry) {
	e.GrossPay = c.Gross
	e.SSS = c.SocialInsurance
	e.PhilHealth = c.HealthInsurance
	e.PagIBIG = c.HousingFund
	e.WithholdingTax = c.IncomeTax
	e.CashAdvance = c.Manual.CashAdvance
	e.Loan = c.Manual.Loan
	e.OtherDeduction = c.Manual.Other
	e.ShortDeduction = c.Manual.Short
	e.TotalDeductions = c.TotalDeductions
	e.NetPay = c.NetPay
	e.NegativeNet = c.NegativeNet
	e.Shortfall = c.Shortfall
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.UTC().Format(time.RFC3339)
	return &v
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(calc.DateLayout)
	return &v
}

func mapPeriodToResponse(p PayrollPeriod) PeriodResponse {
	return PeriodResponse{
		ID:          p.ID.String(),
		CompanyID:   p.CompanyID.String(),
		WeekID:      p.WeekID,
		StartDate:   p.StartDate.Format(calc.DateLayout),
		EndDate:     p.EndDate.Format(calc.DateLayout),
		PaymentDate: formatDate(p.PaymentDate),
		Status:      p.Status,
		Notes:       p.Notes,
	}
}

func mapEntryToResponse(e PayrollEntry) EntryResponse {
	resp := EntryResponse{
		ID:                 e.ID.String(),
		CompanyID:          e.CompanyID.String(),
		EmployeeID:         e.EmployeeID.String(),
		PeriodID:           e.PeriodID.String(),
		PaidDays:           e.PaidDays,
		GrossPay:           e.GrossPay,
		SSS:                e.SSS,
		PhilHealth:         e.PhilHealth,
		PagIBIG:            e.PagIBIG,
		WithholdingTax:     e.WithholdingTax,
		CashAdvance:        e.CashAdvance,
		Loan:               e.Loan,
		OtherDeduction:     e.OtherDeduction,
		ShortDeduction:     e.ShortDeduction,
		TotalDeductions:    e.TotalDeductions,
		NetPay:             e.NetPay,
		Shortfall:          e.Shortfall,
		NegativeNet:        e.NegativeNet,
		MissingRate:        e.MissingRate,
		Status:             e.Status,
		ApprovedAt:         formatTime(e.ApprovedAt),
		PaidAt:             formatTime(e.PaidAt),
		PayslipNumber:      e.PayslipNumber,
		PayslipURL:         e.PayslipURL,
		PayslipGeneratedAt: formatTime(e.PayslipGeneratedAt),
	}
	if e.DailyRate.Valid {
		rate := e.DailyRate.Decimal
		resp.DailyRate = &rate
	}
	if e.ApprovedBy != nil {
		v := e.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if e.Employee != nil {
		resp.EmployeeName = e.Employee.FullName
		resp.EmployeeNumber = e.Employee.EmployeeNumber
	}
	if e.Period != nil {
		resp.WeekID = e.Period.WeekID
		resp.PeriodStart = e.Period.StartDate.Format(calc.DateLayout)
		resp.PeriodEnd = e.Period.EndDate.Format(calc.DateLayout)
	}
	return resp
}

func mapDayToResponse(d PayrollEntryDay) DayResponse {
	return DayResponse{
		Date:        d.WorkDate.Format(calc.DateLayout),
		Weekday:     d.WorkDate.Weekday().String(),
		Status:      d.Status,
		HolidayType: d.HolidayType,
		Rate:        d.Rate,
		Multiplier:  d.Multiplier,
		Adjustment:  d.Adjustment,
		Amount:      d.Amount,
		Synthesized: d.Synthesized,
		MissingRate: d.MissingRate,
	}
}

// paidDays sums the multipliers of the resolved days.
func paidDays(days []calc.DayPay) decimal.Decimal {
	total := decimal.Zero
	for _, d := range days {
		total = total.Add(d.Multiplier)
	}
	return total
}
