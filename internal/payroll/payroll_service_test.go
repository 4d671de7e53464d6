package payroll_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go-payroll/internal/bootstrap"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/observability"
	"go-payroll/internal/payroll"
	"go-payroll/internal/payroll/calc"
	payrollerrors "go-payroll/internal/payroll/errors"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/counter"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeAuditLogger struct {
	entries []bootstrap.AuditLog
}

func (f *fakeAuditLogger) Log(ctx context.Context, entry bootstrap.AuditLog) {
	f.entries = append(f.entries, entry)
}

type fakePayrollRepository struct {
	createPeriodFn         func(ctx context.Context, p *payroll.PayrollPeriod) error
	updatePeriodFn         func(ctx context.Context, p *payroll.PayrollPeriod) error
	findPeriodsFn          func(ctx context.Context, companyID string, q payroll.PeriodQuery) ([]payroll.PayrollPeriod, error)
	findPeriodByIDFn       func(ctx context.Context, companyID, id string) (*payroll.PayrollPeriod, error)
	lockPeriodFn           func(ctx context.Context, companyID, id string) (*payroll.PayrollPeriod, error)
	hasOverlappingPeriodFn func(ctx context.Context, companyID string, start, end time.Time, excludePeriodID *string) (bool, error)
	countEntriesByStatusFn func(ctx context.Context, companyID, periodID string) (map[string]int64, error)
	listCompaniesFn        func(ctx context.Context) ([]string, error)
	findPayeesFn           func(ctx context.Context, companyID string, asOf time.Time, employeeIDs []string) ([]payroll.Payee, error)
	findEntriesByPeriodFn  func(ctx context.Context, companyID, periodID string) ([]payroll.PayrollEntry, error)
	findEntriesFn          func(ctx context.Context, companyID string, q payroll.EntryQuery) ([]payroll.PayrollEntry, error)
	findEntryByIDFn        func(ctx context.Context, companyID, id string) (*payroll.PayrollEntry, error)
	findEntryWithDaysFn    func(ctx context.Context, companyID, id string) (*payroll.PayrollEntry, error)
	createEntryFn          func(ctx context.Context, e *payroll.PayrollEntry) error
	replaceEntryFn         func(ctx context.Context, e *payroll.PayrollEntry) error
	updateEntryFn          func(ctx context.Context, e *payroll.PayrollEntry) error
	deleteEntryFn          func(ctx context.Context, companyID, id string) error
}

func (f *fakePayrollRepository) WithTx(tx *sql.Tx) payroll.Repository { return f }

func (f *fakePayrollRepository) CreatePeriod(ctx context.Context, p *payroll.PayrollPeriod) error {
	if f.createPeriodFn != nil {
		return f.createPeriodFn(ctx, p)
	}
	return nil
}

func (f *fakePayrollRepository) UpdatePeriod(ctx context.Context, p *payroll.PayrollPeriod) error {
	if f.updatePeriodFn != nil {
		return f.updatePeriodFn(ctx, p)
	}
	return nil
}

func (f *fakePayrollRepository) FindPeriods(ctx context.Context, companyID string, q payroll.PeriodQuery) ([]payroll.PayrollPeriod, error) {
	if f.findPeriodsFn != nil {
		return f.findPeriodsFn(ctx, companyID, q)
	}
	return nil, nil
}

func (f *fakePayrollRepository) FindPeriodByID(ctx context.Context, companyID, id string) (*payroll.PayrollPeriod, error) {
	if f.findPeriodByIDFn != nil {
		return f.findPeriodByIDFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePayrollRepository) LockPeriod(ctx context.Context, companyID, id string) (*payroll.PayrollPeriod, error) {
	if f.lockPeriodFn != nil {
		return f.lockPeriodFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePayrollRepository) HasOverlappingPeriod(ctx context.Context, companyID string, start, end time.Time, excludePeriodID *string) (bool, error) {
	if f.hasOverlappingPeriodFn != nil {
		return f.hasOverlappingPeriodFn(ctx, companyID, start, end, excludePeriodID)
	}
	return false, nil
}

func (f *fakePayrollRepository) CountEntriesByStatus(ctx context.Context, companyID, periodID string) (map[string]int64, error) {
	if f.countEntriesByStatusFn != nil {
		return f.countEntriesByStatusFn(ctx, companyID, periodID)
	}
	return map[string]int64{}, nil
}

func (f *fakePayrollRepository) ListCompaniesWithActiveEmployees(ctx context.Context) ([]string, error) {
	if f.listCompaniesFn != nil {
		return f.listCompaniesFn(ctx)
	}
	return nil, nil
}

func (f *fakePayrollRepository) FindPayees(ctx context.Context, companyID string, asOf time.Time, employeeIDs []string) ([]payroll.Payee, error) {
	if f.findPayeesFn != nil {
		return f.findPayeesFn(ctx, companyID, asOf, employeeIDs)
	}
	return nil, nil
}

func (f *fakePayrollRepository) FindEntriesByPeriod(ctx context.Context, companyID, periodID string) ([]payroll.PayrollEntry, error) {
	if f.findEntriesByPeriodFn != nil {
		return f.findEntriesByPeriodFn(ctx, companyID, periodID)
	}
	return nil, nil
}

func (f *fakePayrollRepository) FindEntries(ctx context.Context, companyID string, q payroll.EntryQuery) ([]payroll.PayrollEntry, error) {
	if f.findEntriesFn != nil {
		return f.findEntriesFn(ctx, companyID, q)
	}
	return nil, nil
}

func (f *fakePayrollRepository) FindEntryByID(ctx context.Context, companyID, id string) (*payroll.PayrollEntry, error) {
	if f.findEntryByIDFn != nil {
		return f.findEntryByIDFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePayrollRepository) FindEntryWithDays(ctx context.Context, companyID, id string) (*payroll.PayrollEntry, error) {
	if f.findEntryWithDaysFn != nil {
		return f.findEntryWithDaysFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePayrollRepository) CreateEntry(ctx context.Context, e *payroll.PayrollEntry) error {
	if f.createEntryFn != nil {
		return f.createEntryFn(ctx, e)
	}
	return nil
}

func (f *fakePayrollRepository) ReplaceEntry(ctx context.Context, e *payroll.PayrollEntry) error {
	if f.replaceEntryFn != nil {
		return f.replaceEntryFn(ctx, e)
	}
	return nil
}

func (f *fakePayrollRepository) UpdateEntry(ctx context.Context, e *payroll.PayrollEntry) error {
	if f.updateEntryFn != nil {
		return f.updateEntryFn(ctx, e)
	}
	return nil
}

func (f *fakePayrollRepository) DeleteEntry(ctx context.Context, companyID, id string) error {
	if f.deleteEntryFn != nil {
		return f.deleteEntryFn(ctx, companyID, id)
	}
	return nil
}

func (f *fakePayrollRepository) EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	return true, nil
}

type fakeOutboxRepository struct {
	createFn func(ctx context.Context, event kafka.OutboxEvent) error
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	if f.createFn != nil {
		return f.createFn(ctx, event)
	}
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error {
	return nil
}

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type fakeCounter struct {
	next int64
}

func (f *fakeCounter) WithTx(tx *sql.Tx) counter.Repository { return f }

func (f *fakeCounter) GetNextValue(ctx context.Context, companyID, counterType string) (int64, error) {
	f.next++
	return f.next, nil
}

// fakeAttendance serves records keyed by employee id.
type fakeAttendance map[string][]calc.Record

func (f fakeAttendance) RecordsFor(ctx context.Context, companyID string, employeeIDs []string, period calc.Period) (map[string][]calc.Record, error) {
	out := make(map[string][]calc.Record, len(employeeIDs))
	for _, id := range employeeIDs {
		out[id] = f[id]
	}
	return out, nil
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func date(s string) time.Time {
	d, err := time.Parse(calc.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func rate(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

// week records five PRESENT days and a DAY_OFF weekend starting Monday 2026-02-09.
func week() []calc.Record {
	var recs []calc.Record
	for i := 0; i < 7; i++ {
		status := calc.StatusPresent
		if i >= 5 {
			status = calc.StatusDayOff
		}
		recs = append(recs, calc.Record{Date: date("2026-02-09").AddDate(0, 0, i), Status: status})
	}
	return recs
}

func pendingPeriod(companyID, periodID string) *payroll.PayrollPeriod {
	return &payroll.PayrollPeriod{
		ID:        uuid.MustParse(periodID),
		CompanyID: uuid.MustParse(companyID),
		WeekID:    "2026-W07",
		StartDate: date("2026-02-09"),
		EndDate:   date("2026-02-15"),
		Status:    payroll.PeriodStatusPending,
	}
}

func TestPayrollService_GeneratePeriod_WeeklyRun(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()
	periodID := uuid.New().String()
	employeeID := uuid.New()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var stored *payroll.PayrollEntry
	repo := &fakePayrollRepository{
		lockPeriodFn: func(ctx context.Context, cid, id string) (*payroll.PayrollPeriod, error) {
			return pendingPeriod(cid, id), nil
		},
		findPayeesFn: func(ctx context.Context, cid string, asOf time.Time, ids []string) ([]payroll.Payee, error) {
			assert.Equal(t, "2026-02-09", asOf.Format(calc.DateLayout))
			assert.Empty(t, ids)
			return []payroll.Payee{{EmployeeID: employeeID, EmployeeNumber: "EMP-000001", FullName: "Juan Dela Cruz", DailyRate: rate(600)}}, nil
		},
		createEntryFn: func(ctx context.Context, e *payroll.PayrollEntry) error {
			stored = e
			return nil
		},
	}

	var published events.PayrollPeriodGeneratedEvent
	outbox := &fakeOutboxRepository{
		createFn: func(ctx context.Context, event kafka.OutboxEvent) error {
			assert.Equal(t, events.PayrollPeriodGeneratedTopic, event.Topic)
			return json.Unmarshal(event.Payload, &published)
		},
	}

	svc := payroll.NewServiceWithOptions(db, repo, fakeAttendance{employeeID.String(): week()}, payroll.Options{
		Outbox:  outbox,
		Metrics: observability.NewMetrics(prometheus.NewRegistry()),
		Workers: 2,
	})

	expectTx(t, sqlMock, true)
	summary, err := svc.GeneratePeriod(ctx, companyID, actorID, periodID, payroll.GeneratePeriodRequest{})
	require.NoError(t, err)
	assert.NoError(t, sqlMock.ExpectationsWereMet())

	assert.Equal(t, string(calc.PolicySkipExisting), summary.Policy)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 0, summary.Failed)
	assert.Empty(t, summary.Failures)

	require.NotNil(t, stored)
	assert.Equal(t, payroll.EntryStatusPending, stored.Status)
	assert.Equal(t, "3000.00", stored.GrossPay.StringFixed(2))
	assert.Equal(t, "150.00", stored.SSS.StringFixed(2))
	assert.Equal(t, "75.00", stored.PhilHealth.StringFixed(2))
	assert.Equal(t, "50.00", stored.PagIBIG.StringFixed(2))
	assert.Equal(t, "0.00", stored.WithholdingTax.StringFixed(2))
	assert.Equal(t, "275.00", stored.TotalDeductions.StringFixed(2))
	assert.Equal(t, "2725.00", stored.NetPay.StringFixed(2))
	assert.Equal(t, "5.00", stored.PaidDays.StringFixed(2))
	assert.False(t, stored.NegativeNet)
	assert.Len(t, stored.Days, 7)

	assert.Equal(t, periodID, published.PeriodID)
	assert.Equal(t, 1, published.Succeeded)
	assert.Equal(t, actorID, published.GeneratedBy)
}

func TestPayrollService_GeneratePeriod_DuplicatePolicies(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	periodID := uuid.New().String()

	fresh, pending, approved := uuid.New(), uuid.New(), uuid.New()
	pendingEntryID := uuid.New()

	cases := []struct {
		policy      string
		created     int
		overwritten int
		skipped     int
		failed      int
	}{
		{policy: "", created: 1, skipped: 2},
		{policy: "SKIP_EXISTING", created: 1, skipped: 2},
		{policy: "REJECT_EXISTING", created: 1, failed: 2},
		{policy: "overwrite", created: 1, overwritten: 1, failed: 1},
	}

	for _, tc := range cases {
		t.Run("policy="+tc.policy, func(t *testing.T) {
			db, sqlMock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			var replaced *payroll.PayrollEntry
			creates := 0
			repo := &fakePayrollRepository{
				lockPeriodFn: func(ctx context.Context, cid, id string) (*payroll.PayrollPeriod, error) {
					return pendingPeriod(cid, id), nil
				},
				findPayeesFn: func(ctx context.Context, cid string, asOf time.Time, ids []string) ([]payroll.Payee, error) {
					return []payroll.Payee{
						{EmployeeID: fresh, DailyRate: rate(600)},
						{EmployeeID: pending, DailyRate: rate(600)},
						{EmployeeID: approved, DailyRate: rate(600)},
					}, nil
				},
				findEntriesByPeriodFn: func(ctx context.Context, cid, pid string) ([]payroll.PayrollEntry, error) {
					return []payroll.PayrollEntry{
						{ID: pendingEntryID, EmployeeID: pending, Status: payroll.EntryStatusPending, CashAdvance: decimal.NewFromInt(100)},
						{ID: uuid.New(), EmployeeID: approved, Status: payroll.EntryStatusApproved},
					}, nil
				},
				createEntryFn: func(ctx context.Context, e *payroll.PayrollEntry) error {
					assert.Equal(t, fresh, e.EmployeeID)
					creates++
					return nil
				},
				replaceEntryFn: func(ctx context.Context, e *payroll.PayrollEntry) error {
					replaced = e
					return nil
				},
			}
			svc := payroll.NewService(db, repo, fakeAttendance{})

			expectTx(t, sqlMock, true)
			summary, err := svc.GeneratePeriod(ctx, companyID, uuid.New().String(), periodID, payroll.GeneratePeriodRequest{Policy: tc.policy})
			require.NoError(t, err)
			assert.NoError(t, sqlMock.ExpectationsWereMet())

			assert.Equal(t, tc.created, summary.Created)
			assert.Equal(t, tc.overwritten, summary.Overwritten)
			assert.Equal(t, tc.skipped, summary.Skipped)
			assert.Equal(t, tc.failed, summary.Failed)
			assert.Equal(t, tc.created+tc.overwritten, summary.Succeeded)
			assert.Len(t, summary.Failures, tc.failed)
			assert.Equal(t, 1, creates)

			if tc.overwritten > 0 {
				require.NotNil(t, replaced)
				assert.Equal(t, pendingEntryID, replaced.ID)
				assert.Equal(t, "100.00", replaced.CashAdvance.StringFixed(2))
				assert.Equal(t, approved.String(), summary.Failures[0].EmployeeID)
			} else {
				assert.Nil(t, replaced)
			}
		})
	}
}

func TestPayrollService_GeneratePeriod_EmployeeFailureDoesNotAbort(t *testing.T) {
	ctx := context.Background()
	good, bad := uuid.New(), uuid.New()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &fakePayrollRepository{
		lockPeriodFn: func(ctx context.Context, cid, id string) (*payroll.PayrollPeriod, error) {
			return pendingPeriod(cid, id), nil
		},
		findPayeesFn: func(ctx context.Context, cid string, asOf time.Time, ids []string) ([]payroll.Payee, error) {
			return []payroll.Payee{{EmployeeID: good, DailyRate: rate(500)}, {EmployeeID: bad, FullName: "Maria", DailyRate: rate(500)}}, nil
		},
	}
	attendance := fakeAttendance{
		bad.String(): {{Date: date("2026-02-11"), Status: calc.StatusHoliday}},
	}
	svc := payroll.NewService(db, repo, attendance)

	expectTx(t, sqlMock, true)
	summary, err := svc.GeneratePeriod(ctx, uuid.New().String(), uuid.New().String(), uuid.New().String(), payroll.GeneratePeriodRequest{})
	require.NoError(t, err)
	assert.NoError(t, sqlMock.ExpectationsWereMet())

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, bad.String(), summary.Failures[0].EmployeeID)
	assert.Equal(t, "Maria", summary.Failures[0].EmployeeName)
	assert.Contains(t, summary.Failures[0].Reason, "2026-02-11")
}

func TestPayrollService_GeneratePeriod_StorageErrorRollsBack(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &fakePayrollRepository{
		lockPeriodFn: func(ctx context.Context, cid, id string) (*payroll.PayrollPeriod, error) {
			return pendingPeriod(cid, id), nil
		},
		findPayeesFn: func(ctx context.Context, cid string, asOf time.Time, ids []string) ([]payroll.Payee, error) {
			return []payroll.Payee{{EmployeeID: uuid.New(), DailyRate: rate(600)}}, nil
		},
		createEntryFn: func(ctx context.Context, e *payroll.PayrollEntry) error {
			return errors.New("connection reset")
		},
	}
	svc := payroll.NewService(db, repo, fakeAttendance{})

	expectTx(t, sqlMock, false)
	_, err = svc.GeneratePeriod(context.Background(), uuid.New().String(), uuid.New().String(), uuid.New().String(), payroll.GeneratePeriodRequest{})
	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestPayrollService_GeneratePeriod_Guards(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown policy", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := payroll.NewService(db, &fakePayrollRepository{}, fakeAttendance{})
		_, err = svc.GeneratePeriod(ctx, uuid.New().String(), uuid.New().String(), uuid.New().String(), payroll.GeneratePeriodRequest{Policy: "merge"})
		assert.ErrorIs(t, err, payrollerrors.ErrInvalidPolicy)
	})

	t.Run("closed period", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := &fakePayrollRepository{
			lockPeriodFn: func(ctx context.Context, cid, id string) (*payroll.PayrollPeriod, error) {
				p := pendingPeriod(cid, id)
				p.Status = payroll.PeriodStatusClosed
				return p, nil
			},
		}
		svc := payroll.NewService(db, repo, fakeAttendance{})

		expectTx(t, sqlMock, false)
		_, err = svc.GeneratePeriod(ctx, uuid.New().String(), uuid.New().String(), uuid.New().String(), payroll.GeneratePeriodRequest{})
		assert.ErrorIs(t, err, payrollerrors.ErrPeriodNotGeneratable)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("period not found", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := payroll.NewService(db, &fakePayrollRepository{}, fakeAttendance{})

		expectTx(t, sqlMock, false)
		_, err = svc.GeneratePeriod(ctx, uuid.New().String(), uuid.New().String(), uuid.New().String(), payroll.GeneratePeriodRequest{})
		assert.ErrorIs(t, err, payrollerrors.ErrPeriodNotFound)
	})
}

func TestPayrollService_GenerateEntry(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()

	newRepo := func(existing []payroll.PayrollEntry) *fakePayrollRepository {
		return &fakePayrollRepository{
			lockPeriodFn: func(ctx context.Context, cid, id string) (*payroll.PayrollPeriod, error) {
				return pendingPeriod(cid, id), nil
			},
			findPayeesFn: func(ctx context.Context, cid string, asOf time.Time, ids []string) ([]payroll.Payee, error) {
				if len(ids) != 1 || ids[0] != employeeID.String() {
					return nil, nil
				}
				return []payroll.Payee{{EmployeeID: employeeID, FullName: "Ana", DailyRate: rate(600)}}, nil
			},
			findEntriesByPeriodFn: func(ctx context.Context, cid, pid string) ([]payroll.PayrollEntry, error) {
				return existing, nil
			},
		}
	}

	t.Run("creates entry", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := payroll.NewService(db, newRepo(nil), fakeAttendance{employeeID.String(): week()})

		expectTx(t, sqlMock, true)
		resp, err := svc.GenerateEntry(ctx, uuid.New().String(), uuid.New().String(), uuid.New().String(), payroll.GenerateEntryRequest{EmployeeID: employeeID.String()})
		require.NoError(t, err)
		assert.Equal(t, "2725.00", resp.NetPay.StringFixed(2))
		assert.Equal(t, "Ana", resp.EmployeeName)
		assert.Equal(t, "2026-W07", resp.WeekID)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("reject existing", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := newRepo([]payroll.PayrollEntry{{ID: uuid.New(), EmployeeID: employeeID, Status: payroll.EntryStatusPending}})
		svc := payroll.NewService(db, repo, fakeAttendance{})

		expectTx(t, sqlMock, false)
		_, err = svc.GenerateEntry(ctx, uuid.New().String(), uuid.New().String(), uuid.New().String(), payroll.GenerateEntryRequest{
			EmployeeID: employeeID.String(),
			Policy:     "REJECT_EXISTING",
		})
		assert.ErrorIs(t, err, payrollerrors.ErrEntryAlreadyExists)
	})

	t.Run("unknown employee", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := payroll.NewService(db, newRepo(nil), fakeAttendance{})

		expectTx(t, sqlMock, false)
		_, err = svc.GenerateEntry(ctx, uuid.New().String(), uuid.New().String(), uuid.New().String(), payroll.GenerateEntryRequest{EmployeeID: uuid.New().String()})
		assert.ErrorIs(t, err, payrollerrors.ErrEmployeeNotInCompany)
	})
}

func pendingEntry(companyID, id string) *payroll.PayrollEntry {
	return &payroll.PayrollEntry{
		ID:              uuid.MustParse(id),
		CompanyID:       uuid.MustParse(companyID),
		EmployeeID:      uuid.New(),
		PeriodID:        uuid.New(),
		GrossPay:        decimal.NewFromInt(3000),
		SSS:             decimal.NewFromInt(150),
		PhilHealth:      decimal.NewFromInt(75),
		PagIBIG:         decimal.NewFromInt(50),
		WithholdingTax:  decimal.Zero,
		TotalDeductions: decimal.NewFromInt(275),
		NetPay:          decimal.NewFromInt(2725),
		Status:          payroll.EntryStatusPending,
	}
}

func TestPayrollService_UpdateDeductions(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	entryID := uuid.New().String()

	t.Run("net pay floors at zero", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := &fakePayrollRepository{
			findEntryByIDFn: func(ctx context.Context, cid, id string) (*payroll.PayrollEntry, error) {
				return pendingEntry(cid, id), nil
			},
		}
		svc := payroll.NewService(db, repo, fakeAttendance{})

		advance := decimal.NewFromInt(3000)
		expectTx(t, sqlMock, true)
		resp, err := svc.UpdateDeductions(ctx, companyID, entryID, payroll.UpdateDeductionsRequest{CashAdvance: &advance})
		require.NoError(t, err)
		assert.Equal(t, "3275.00", resp.TotalDeductions.StringFixed(2))
		assert.Equal(t, "0.00", resp.NetPay.StringFixed(2))
		assert.True(t, resp.NegativeNet)
		assert.Equal(t, "275.00", resp.Shortfall.StringFixed(2))
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("negative value", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := &fakePayrollRepository{
			findEntryByIDFn: func(ctx context.Context, cid, id string) (*payroll.PayrollEntry, error) {
				return pendingEntry(cid, id), nil
			},
		}
		svc := payroll.NewService(db, repo, fakeAttendance{})

		loan := decimal.NewFromInt(-1)
		expectTx(t, sqlMock, false)
		_, err = svc.UpdateDeductions(ctx, companyID, entryID, payroll.UpdateDeductionsRequest{Loan: &loan})
		assert.ErrorIs(t, err, payrollerrors.ErrInvalidMoneyValue)
	})

	t.Run("approved entry", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := &fakePayrollRepository{
			findEntryByIDFn: func(ctx context.Context, cid, id string) (*payroll.PayrollEntry, error) {
				e := pendingEntry(cid, id)
				e.Status = payroll.EntryStatusApproved
				return e, nil
			},
		}
		svc := payroll.NewService(db, repo, fakeAttendance{})

		expectTx(t, sqlMock, false)
		_, err = svc.UpdateDeductions(ctx, companyID, entryID, payroll.UpdateDeductionsRequest{})
		assert.ErrorIs(t, err, payrollerrors.ErrEntryNotPending)
	})
}

func TestPayrollService_Approve_QueuesPayslipEvent(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()
	entryID := uuid.New().String()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &fakePayrollRepository{
		findEntryByIDFn: func(ctx context.Context, cid, id string) (*payroll.PayrollEntry, error) {
			return pendingEntry(cid, id), nil
		},
	}
	outbox := &fakeOutboxRepository{
		createFn: func(ctx context.Context, event kafka.OutboxEvent) error {
			assert.Equal(t, events.PayrollPayslipRequestedTopic, event.Topic)
			var payload events.PayrollPayslipRequestedEvent
			require.NoError(t, json.Unmarshal(event.Payload, &payload))
			assert.Equal(t, companyID, payload.CompanyID)
			assert.Equal(t, entryID, payload.EntryID)
			assert.Equal(t, actorID, payload.RequestedBy)
			return nil
		},
	}
	audit := &fakeAuditLogger{}
	svc := payroll.NewServiceWithOptions(db, repo, fakeAttendance{}, payroll.Options{Outbox: outbox, Audit: audit})

	expectTx(t, sqlMock, true)
	resp, err := svc.Approve(ctx, companyID, actorID, entryID)
	require.NoError(t, err)
	assert.Equal(t, payroll.EntryStatusApproved, resp.Status)
	require.NotNil(t, resp.ApprovedBy)
	assert.Equal(t, actorID, *resp.ApprovedBy)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, "PAYROLL_ENTRY_APPROVED", audit.entries[0].Action)
	assert.Equal(t, actorID, audit.entries[0].Meta["approved_by"])
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestPayrollService_MarkAsPaid_RequiresApproved(t *testing.T) {
	ctx := context.Background()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &fakePayrollRepository{
		findEntryByIDFn: func(ctx context.Context, cid, id string) (*payroll.PayrollEntry, error) {
			return pendingEntry(cid, id), nil
		},
	}
	svc := payroll.NewService(db, repo, fakeAttendance{})

	expectTx(t, sqlMock, false)
	_, err = svc.MarkAsPaid(ctx, uuid.New().String(), uuid.New().String(), uuid.New().String())
	assert.ErrorIs(t, err, payrollerrors.ErrInvalidStatusTransition)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestPayrollService_Delete_OnlyPending(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		status  string
		wantErr error
	}{
		{payroll.EntryStatusPending, nil},
		{payroll.EntryStatusApproved, payrollerrors.ErrEntryNotPending},
		{payroll.EntryStatusPaid, payrollerrors.ErrEntryNotPending},
	}

	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			db, sqlMock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			deleted := false
			repo := &fakePayrollRepository{
				findEntryByIDFn: func(ctx context.Context, cid, id string) (*payroll.PayrollEntry, error) {
					e := pendingEntry(cid, id)
					e.Status = tc.status
					return e, nil
				},
				deleteEntryFn: func(ctx context.Context, cid, id string) error {
					deleted = true
					return nil
				},
			}
			svc := payroll.NewService(db, repo, fakeAttendance{})

			expectTx(t, sqlMock, tc.wantErr == nil)
			err = svc.Delete(ctx, uuid.New().String(), uuid.New().String())
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.False(t, deleted)
				return
			}
			assert.NoError(t, err)
			assert.True(t, deleted)
		})
	}
}

func TestPayrollService_TransitionPeriod(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name    string
		from    string
		to      string
		counts  map[string]int64
		wantErr error
	}{
		{name: "open", from: payroll.PeriodStatusPending, to: payroll.PeriodStatusOpen},
		{name: "close", from: payroll.PeriodStatusOpen, to: payroll.PeriodStatusClosed},
		{name: "skip to closed", from: payroll.PeriodStatusPending, to: payroll.PeriodStatusClosed, wantErr: payrollerrors.ErrInvalidPeriodTransition},
		{name: "reopen", from: payroll.PeriodStatusClosed, to: payroll.PeriodStatusOpen, wantErr: payrollerrors.ErrInvalidPeriodTransition},
		{name: "complete with unpaid", from: payroll.PeriodStatusClosed, to: payroll.PeriodStatusCompleted, counts: map[string]int64{"PAID": 3, "APPROVED": 1}, wantErr: payrollerrors.ErrPeriodHasUnpaidEntries},
		{name: "complete all paid", from: payroll.PeriodStatusClosed, to: payroll.PeriodStatusCompleted, counts: map[string]int64{"PAID": 4}},
		{name: "complete empty pending", from: payroll.PeriodStatusPending, to: payroll.PeriodStatusCompleted, wantErr: payrollerrors.ErrInvalidPeriodTransition},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, sqlMock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			repo := &fakePayrollRepository{
				lockPeriodFn: func(ctx context.Context, cid, id string) (*payroll.PayrollPeriod, error) {
					p := pendingPeriod(cid, id)
					p.Status = tc.from
					return p, nil
				},
				countEntriesByStatusFn: func(ctx context.Context, cid, pid string) (map[string]int64, error) {
					return tc.counts, nil
				},
			}
			svc := payroll.NewService(db, repo, fakeAttendance{})

			expectTx(t, sqlMock, tc.wantErr == nil)
			resp, err := svc.TransitionPeriod(ctx, uuid.New().String(), uuid.New().String(), payroll.TransitionPeriodRequest{Status: tc.to})
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.to, resp.Status)
			assert.NoError(t, sqlMock.ExpectationsWereMet())
		})
	}
}

func TestPayrollService_CreatePeriod(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := payroll.NewService(db, &fakePayrollRepository{}, fakeAttendance{})

		expectTx(t, sqlMock, true)
		resp, err := svc.CreatePeriod(ctx, companyID, uuid.New().String(), payroll.CreatePeriodRequest{StartDate: "2026-02-09", EndDate: "2026-02-15"})
		require.NoError(t, err)
		assert.Equal(t, "2026-W07", resp.WeekID)
		assert.Equal(t, payroll.PeriodStatusPending, resp.Status)
	})

	t.Run("overlap", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := &fakePayrollRepository{
			hasOverlappingPeriodFn: func(ctx context.Context, cid string, start, end time.Time, exclude *string) (bool, error) {
				return true, nil
			},
		}
		svc := payroll.NewService(db, repo, fakeAttendance{})

		expectTx(t, sqlMock, false)
		_, err = svc.CreatePeriod(ctx, companyID, uuid.New().String(), payroll.CreatePeriodRequest{StartDate: "2026-02-09", EndDate: "2026-02-15"})
		assert.ErrorIs(t, err, payrollerrors.ErrPeriodOverlap)
	})

	t.Run("end before start", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := payroll.NewService(db, &fakePayrollRepository{}, fakeAttendance{})
		_, err = svc.CreatePeriod(ctx, companyID, uuid.New().String(), payroll.CreatePeriodRequest{StartDate: "2026-02-15", EndDate: "2026-02-09"})
		assert.ErrorIs(t, err, payrollerrors.ErrInvalidDateRange)
	})

	t.Run("longer than default maximum", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := payroll.NewService(db, &fakePayrollRepository{}, fakeAttendance{})
		_, err = svc.CreatePeriod(ctx, companyID, uuid.New().String(), payroll.CreatePeriodRequest{StartDate: "2026-01-01", EndDate: "2026-02-01"})
		assert.ErrorIs(t, err, payrollerrors.ErrPeriodTooLong)

		_, err = svc.CreatePeriod(ctx, companyID, uuid.New().String(), payroll.CreatePeriodRequest{StartDate: "0001-01-01", EndDate: "9999-12-31"})
		assert.ErrorIs(t, err, payrollerrors.ErrPeriodTooLong)
	})

	t.Run("full month within maximum", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := payroll.NewService(db, &fakePayrollRepository{}, fakeAttendance{})

		expectTx(t, sqlMock, true)
		_, err = svc.CreatePeriod(ctx, companyID, uuid.New().String(), payroll.CreatePeriodRequest{StartDate: "2026-01-01", EndDate: "2026-01-31"})
		require.NoError(t, err)
	})

	t.Run("configured maximum", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := payroll.NewServiceWithOptions(db, &fakePayrollRepository{}, fakeAttendance{}, payroll.Options{MaxPeriodDays: 7})
		_, err = svc.CreatePeriod(ctx, companyID, uuid.New().String(), payroll.CreatePeriodRequest{StartDate: "2026-02-09", EndDate: "2026-02-16"})
		assert.ErrorIs(t, err, payrollerrors.ErrPeriodTooLong)
		assert.Equal(t, http.StatusBadRequest, apperror.ToHTTP(err).Status)
	})
}

func TestPayrollService_EnsureWeeklyPeriods(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	covered, missing := uuid.New().String(), uuid.New().String()
	var created []*payroll.PayrollPeriod
	repo := &fakePayrollRepository{
		listCompaniesFn: func(ctx context.Context) ([]string, error) {
			return []string{covered, missing}, nil
		},
		hasOverlappingPeriodFn: func(ctx context.Context, cid string, start, end time.Time, exclude *string) (bool, error) {
			assert.Equal(t, time.Monday, start.Weekday())
			assert.Equal(t, time.Sunday, end.Weekday())
			return cid == covered, nil
		},
		createPeriodFn: func(ctx context.Context, p *payroll.PayrollPeriod) error {
			created = append(created, p)
			return nil
		},
	}
	svc := payroll.NewService(db, repo, fakeAttendance{})

	n, err := svc.EnsureWeeklyPeriods(context.Background(), time.Date(2026, 2, 12, 3, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, created, 1)
	assert.Equal(t, missing, created[0].CompanyID.String())
	assert.Equal(t, "2026-W07", created[0].WeekID)
	assert.Equal(t, "2026-02-09", created[0].StartDate.Format(calc.DateLayout))
}

func TestPayrollService_GetEntries_SelfService(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	actorID := uuid.New().String()
	repo := &fakePayrollRepository{
		findEntriesFn: func(ctx context.Context, cid string, q payroll.EntryQuery) ([]payroll.PayrollEntry, error) {
			assert.Equal(t, actorID, q.EmployeeID)
			assert.Equal(t, payroll.EntryStatusPaid, q.Status)
			return nil, nil
		},
	}
	svc := payroll.NewService(db, repo, fakeAttendance{})

	_, err = svc.GetEntries(context.Background(), uuid.New().String(), actorID, false, payroll.EntryFilter{EmployeeID: uuid.New().String(), Status: "paid"})
	assert.NoError(t, err)

	_, err = svc.GetEntries(context.Background(), uuid.New().String(), actorID, true, payroll.EntryFilter{Status: "VOID"})
	assert.ErrorIs(t, err, payrollerrors.ErrInvalidStatusFilter)
}

func TestPayrollService_GetBreakdown(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	regular := string(calc.HolidayRegular)
	repo := &fakePayrollRepository{
		findEntryWithDaysFn: func(ctx context.Context, cid, id string) (*payroll.PayrollEntry, error) {
			e := pendingEntry(cid, id)
			e.CashAdvance = decimal.NewFromInt(200)
			e.Days = []payroll.PayrollEntryDay{
				{WorkDate: date("2026-02-09"), Status: "PRESENT", Multiplier: decimal.NewFromInt(1), Amount: decimal.NewFromInt(600)},
				{WorkDate: date("2026-02-10"), Status: "HOLIDAY", HolidayType: &regular, Multiplier: decimal.RequireFromString("1.3"), Amount: decimal.NewFromInt(780)},
			}
			return e, nil
		},
	}
	svc := payroll.NewService(db, repo, fakeAttendance{})

	resp, err := svc.GetBreakdown(context.Background(), uuid.New().String(), uuid.New().String(), true, uuid.New().String())
	require.NoError(t, err)
	require.Len(t, resp.Days, 2)
	assert.Equal(t, "Tuesday", resp.Days[1].Weekday)
	assert.Equal(t, "275.00", resp.StatutoryTotal.StringFixed(2))
	assert.Equal(t, "200.00", resp.ManualTotal.StringFixed(2))

	_, err = svc.GetBreakdown(context.Background(), uuid.New().String(), uuid.New().String(), false, uuid.New().String())
	assert.ErrorIs(t, err, payrollerrors.ErrEntryNotFound)
}

func TestPayrollService_GeneratePayslip(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	entryID := uuid.New().String()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var saved *payroll.PayrollEntry
	repo := &fakePayrollRepository{
		findEntryWithDaysFn: func(ctx context.Context, cid, id string) (*payroll.PayrollEntry, error) {
			e := pendingEntry(cid, id)
			e.Status = payroll.EntryStatusApproved
			e.Employee = &payroll.EmployeeRef{FullName: "Juan Dela Cruz", EmployeeNumber: "EMP-000001"}
			e.Period = pendingPeriod(cid, uuid.New().String())
			e.Days = []payroll.PayrollEntryDay{{WorkDate: date("2026-02-09"), Status: "PRESENT", Multiplier: decimal.NewFromInt(1), Amount: decimal.NewFromInt(600)}}
			return e, nil
		},
		updateEntryFn: func(ctx context.Context, e *payroll.PayrollEntry) error {
			saved = e
			return nil
		},
	}

	tmpDir := t.TempDir()
	svc := payroll.NewServiceWithOptions(db, repo, fakeAttendance{}, payroll.Options{
		Counter:        &fakeCounter{next: 6},
		PayslipDir:     tmpDir,
		PayslipBaseURL: "/files/payslips/",
	})

	expectTx(t, sqlMock, true)
	resp, err := svc.GeneratePayslip(ctx, companyID, entryID)
	require.NoError(t, err)
	assert.NoError(t, sqlMock.ExpectationsWereMet())

	require.NotNil(t, resp.PayslipURL)
	assert.Equal(t, "/files/payslips/payslip_"+entryID+".pdf", *resp.PayslipURL)
	require.NotNil(t, resp.PayslipNumber)
	assert.Equal(t, "PS-000007", *resp.PayslipNumber)
	assert.NotNil(t, resp.PayslipGeneratedAt)
	require.NotNil(t, saved)

	content, err := os.ReadFile(filepath.Join(tmpDir, "payslip_"+entryID+".pdf"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF-1.4")))
	assert.Contains(t, string(content), "Juan Dela Cruz")
	assert.Contains(t, string(content), "2,725.00")
}

func TestPayrollService_GeneratePayslip_CommitFailureLeavesNoFile(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &fakePayrollRepository{
		findEntryWithDaysFn: func(ctx context.Context, cid, id string) (*payroll.PayrollEntry, error) {
			e := pendingEntry(cid, id)
			e.Status = payroll.EntryStatusApproved
			return e, nil
		},
		updateEntryFn: func(ctx context.Context, e *payroll.PayrollEntry) error { return nil },
	}

	tmpDir := t.TempDir()
	svc := payroll.NewServiceWithOptions(db, repo, fakeAttendance{}, payroll.Options{PayslipDir: tmpDir})

	sqlMock.ExpectBegin()
	sqlMock.ExpectCommit().WillReturnError(errors.New("connection reset"))

	_, err = svc.GeneratePayslip(context.Background(), uuid.New().String(), uuid.New().String())
	require.Error(t, err)
	assert.NoError(t, sqlMock.ExpectationsWereMet())

	files, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestPayrollService_GeneratePayslip_UpdateFailureKeepsPreviousFile(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	entryID := uuid.New().String()
	repo := &fakePayrollRepository{
		findEntryWithDaysFn: func(ctx context.Context, cid, id string) (*payroll.PayrollEntry, error) {
			e := pendingEntry(cid, id)
			e.Status = payroll.EntryStatusPaid
			return e, nil
		},
		updateEntryFn: func(ctx context.Context, e *payroll.PayrollEntry) error {
			return errors.New("deadlock detected")
		},
	}

	tmpDir := t.TempDir()
	previous := filepath.Join(tmpDir, "payslip_"+entryID+".pdf")
	require.NoError(t, os.WriteFile(previous, []byte("old"), 0o644))

	svc := payroll.NewServiceWithOptions(db, repo, fakeAttendance{}, payroll.Options{PayslipDir: tmpDir})

	expectTx(t, sqlMock, false)
	_, err = svc.GeneratePayslip(context.Background(), uuid.New().String(), entryID)
	require.Error(t, err)

	files, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	content, err := os.ReadFile(previous)
	require.NoError(t, err)
	assert.Equal(t, "old", string(content))
}

func TestPayrollService_GeneratePayslip_PendingEntry(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &fakePayrollRepository{
		findEntryWithDaysFn: func(ctx context.Context, cid, id string) (*payroll.PayrollEntry, error) {
			return pendingEntry(cid, id), nil
		},
	}
	svc := payroll.NewServiceWithOptions(db, repo, fakeAttendance{}, payroll.Options{PayslipDir: t.TempDir()})

	expectTx(t, sqlMock, false)
	err = svc.RenderPayslip(context.Background(), uuid.New().String(), uuid.New().String())
	assert.ErrorIs(t, err, payrollerrors.ErrPayslipNotAvailable)
}
