package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	attendanceerrors "go-payroll/internal/attendance/errors"
	"go-payroll/internal/payroll/calc"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HolidayCalendar supplies the holiday type of a HOLIDAY record when the
// request leaves it empty.
type HolidayCalendar interface {
	TypeOn(ctx context.Context, companyID string, date time.Time) (calc.HolidayType, bool, error)
}

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	Upsert(ctx context.Context, companyID, actorID string, req UpsertAttendanceRequest) (AttendanceResponse, bool, error)
	BulkImport(ctx context.Context, companyID, actorID string, req BulkImportRequest) (BulkImportResponse, error)
	GetAll(ctx context.Context, companyID, actorID string, canReadAll bool, filter AttendanceFilter) ([]AttendanceResponse, error)
	GetByID(ctx context.Context, companyID, actorID string, canReadAll bool, id string) (AttendanceResponse, error)
	Delete(ctx context.Context, companyID, id string) error
	RecordsFor(ctx context.Context, companyID string, employeeIDs []string, period calc.Period) (map[string][]calc.Record, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	calendar HolidayCalendar
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, calendar HolidayCalendar, logger ...*zap.Logger) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{db: db, repo: repo, calendar: calendar, logger: l}
}

// normalized is an UpsertAttendanceRequest after validation.
type normalized struct {
	employeeID  uuid.UUID
	date        time.Time
	status      calc.Status
	holidayType *string
	dailyRate   decimal.NullDecimal
	adjustment  decimal.Decimal
	notes       *string
}

func (s *service) Upsert(ctx context.Context, companyID, actorID string, req UpsertAttendanceRequest) (AttendanceResponse, bool, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("upsert attendance begin tx failed", zap.Error(err))
		return AttendanceResponse{}, false, err
	}
	defer tx.Rollback()

	row, created, err := s.upsertRow(ctx, s.repo.WithTx(tx), companyID, actorID, req, SourceManual)
	if err != nil {
		log.Warn("upsert attendance rejected",
			zap.String("employee_id", req.EmployeeID),
			zap.String("date", req.Date),
			zap.Error(err),
		)
		return AttendanceResponse{}, false, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("upsert attendance commit failed", zap.Error(err))
		return AttendanceResponse{}, false, err
	}

	log.Info("attendance saved",
		zap.String("company_id", companyID),
		zap.String("employee_id", row.EmployeeID.String()),
		zap.String("date", row.AttendanceDate.Format(calc.DateLayout)),
		zap.String("status", row.Status),
		zap.Bool("created", created),
	)
	return mapToResponse(*row), created, nil
}

// BulkImport saves every row or none. Rows that fail validation are reported
// together in the error details.
func (s *service) BulkImport(ctx context.Context, companyID, actorID string, req BulkImportRequest) (BulkImportResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("bulk import begin tx failed", zap.Error(err))
		return BulkImportResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	var (
		res     BulkImportResponse
		rowErrs []RowError
		seen    = make(map[string]int, len(req.Records))
	)
	for i, rec := range req.Records {
		key := rec.EmployeeID + "|" + rec.Date
		if first, dup := seen[key]; dup {
			rowErrs = append(rowErrs, RowError{
				Row:        i,
				EmployeeID: rec.EmployeeID,
				Date:       rec.Date,
				Reason:     fmt.Sprintf("%s (first seen at row %d)", attendanceerrors.ErrDuplicateInImport.Message, first),
			})
			continue
		}
		seen[key] = i

		_, created, err := s.upsertRow(ctx, qtx, companyID, actorID, rec, SourceImport)
		if err != nil {
			var appErr *apperror.AppError
			if !errors.As(err, &appErr) {
				log.Error("bulk import aborted", zap.Int("row", i), zap.Error(err))
				return BulkImportResponse{}, err
			}
			rowErrs = append(rowErrs, RowError{
				Row:        i,
				EmployeeID: rec.EmployeeID,
				Date:       rec.Date,
				Reason:     appErr.Message,
			})
			continue
		}

		res.Imported++
		if created {
			res.Created++
		} else {
			res.Updated++
		}
	}

	if len(rowErrs) > 0 {
		log.Warn("bulk import rejected",
			zap.Int("rows", len(req.Records)),
			zap.Int("failed", len(rowErrs)),
		)
		return BulkImportResponse{}, attendanceerrors.ErrImportRejected.WithDetails(rowErrs)
	}

	if err := tx.Commit(); err != nil {
		log.Error("bulk import commit failed", zap.Error(err))
		return BulkImportResponse{}, err
	}

	log.Info("bulk import done",
		zap.String("company_id", companyID),
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
	)
	return res, nil
}

func (s *service) upsertRow(ctx context.Context, qtx Repository, companyID, actorID string, req UpsertAttendanceRequest, source string) (*Attendance, bool, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return nil, false, apperror.InvalidField("company_id")
	}

	in, err := s.normalize(ctx, companyID, req)
	if err != nil {
		return nil, false, err
	}

	ok, err := qtx.EmployeeBelongsToCompany(ctx, companyID, in.employeeID.String())
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, attendanceerrors.ErrEmployeeNotFound
	}

	locked, err := qtx.IsDateLocked(ctx, companyID, in.employeeID.String(), in.date)
	if err != nil {
		return nil, false, err
	}
	if locked {
		return nil, false, attendanceerrors.ErrAttendanceLocked
	}

	row, err := qtx.FindByEmployeeAndDate(ctx, companyID, in.employeeID.String(), in.date)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if row == nil {
		row = &Attendance{
			ID:             uuid.New(),
			CompanyID:      companyUUID,
			EmployeeID:     in.employeeID,
			AttendanceDate: in.date,
			CreatedBy:      uuidPtr(actorID),
		}
		in.apply(row, source)
		if err := qtx.Create(ctx, row); err != nil {
			return nil, false, mapRepositoryError(err)
		}
		return row, true, nil
	}

	in.apply(row, source)
	if err := qtx.Update(ctx, row); err != nil {
		return nil, false, mapRepositoryError(err)
	}
	return row, false, nil
}

func (n normalized) apply(row *Attendance, source string) {
	row.Status = string(n.status)
	row.HolidayType = n.holidayType
	row.DailyRate = n.dailyRate
	row.Adjustment = n.adjustment
	row.Notes = n.notes
	row.Source = source
}

// normalize parses the status once and resolves the holiday type of a
// HOLIDAY record from the request or the company calendar.
func (s *service) normalize(ctx context.Context, companyID string, req UpsertAttendanceRequest) (normalized, error) {
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return normalized{}, apperror.InvalidField("employee_id")
	}
	date, err := time.Parse(calc.DateLayout, req.Date)
	if err != nil {
		return normalized{}, attendanceerrors.ErrInvalidDate
	}
	status, err := calc.ParseStatus(req.Status)
	if err != nil {
		return normalized{}, attendanceerrors.ErrInvalidStatus
	}

	out := normalized{
		employeeID: employeeID,
		date:       date,
		status:     status,
		adjustment: decimal.Zero,
		notes:      req.Notes,
	}

	if status == calc.StatusHoliday {
		holidayType, err := s.resolveHolidayType(ctx, companyID, date, req.HolidayType)
		if err != nil {
			return normalized{}, err
		}
		v := string(holidayType)
		out.holidayType = &v
	}

	if req.DailyRate != nil {
		if req.DailyRate.IsNegative() {
			return normalized{}, attendanceerrors.ErrNegativeDailyRate
		}
		out.dailyRate = decimal.NewNullDecimal(req.DailyRate.Round(2))
	}
	if req.Adjustment != nil {
		out.adjustment = req.Adjustment.Round(2)
	}
	return out, nil
}

func (s *service) resolveHolidayType(ctx context.Context, companyID string, date time.Time, requested string) (calc.HolidayType, error) {
	if strings.TrimSpace(requested) != "" {
		holidayType, err := calc.ParseHolidayType(requested)
		if err != nil {
			return "", attendanceerrors.ErrInvalidHolidayType
		}
		return holidayType, nil
	}

	if s.calendar == nil {
		return "", attendanceerrors.ErrHolidayTypeRequired
	}
	holidayType, found, err := s.calendar.TypeOn(ctx, companyID, date)
	if err != nil {
		return "", err
	}
	if !found {
		return "", attendanceerrors.ErrHolidayTypeRequired
	}
	return holidayType, nil
}

func (s *service) GetAll(ctx context.Context, companyID, actorID string, canReadAll bool, filter AttendanceFilter) ([]AttendanceResponse, error) {
	q, err := buildQuery(filter)
	if err != nil {
		return nil, err
	}

	if !canReadAll {
		if _, err := uuid.Parse(actorID); err != nil {
			return nil, apperror.New(apperror.CodeInvalidInput, "invalid actor id", 400)
		}
		q.EmployeeID = actorID
	}

	rows, err := s.repo.FindAllByCompany(ctx, companyID, q)
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("get all attendance failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	res := make([]AttendanceResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, companyID, actorID string, canReadAll bool, id string) (AttendanceResponse, error) {
	row, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return AttendanceResponse{}, mapRepositoryError(err)
	}
	if !canReadAll && row.EmployeeID.String() != actorID {
		return AttendanceResponse{}, attendanceerrors.ErrAttendanceNotFound
	}
	return mapToResponse(*row), nil
}

func (s *service) Delete(ctx context.Context, companyID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	row, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return mapRepositoryError(err)
	}

	locked, err := qtx.IsDateLocked(ctx, companyID, row.EmployeeID.String(), row.AttendanceDate)
	if err != nil {
		return err
	}
	if locked {
		return attendanceerrors.ErrAttendanceLocked
	}

	if err := qtx.Delete(ctx, companyID, id); err != nil {
		return mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	contextutil.GetLogger(ctx, s.logger).Info("attendance deleted",
		zap.String("company_id", companyID),
		zap.String("id", id),
	)
	return nil
}

// RecordsFor returns the stored records of each employee within period,
// keyed by employee id, in the form the pay resolver consumes.
func (s *service) RecordsFor(ctx context.Context, companyID string, employeeIDs []string, period calc.Period) (map[string][]calc.Record, error) {
	rows, err := s.repo.FindByEmployeesAndRange(ctx, companyID, employeeIDs, period.Start, period.End)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]calc.Record, len(employeeIDs))
	for _, row := range rows {
		key := row.EmployeeID.String()
		out[key] = append(out[key], toRecord(row))
	}
	return out, nil
}

func toRecord(a Attendance) calc.Record {
	status, err := calc.ParseStatus(a.Status)
	if err != nil {
		// Rows written outside the API keep their raw status; the resolver
		// pays those at the full rate.
		status = calc.Status(a.Status)
	}

	var holidayType calc.HolidayType
	if a.HolidayType != nil {
		if h, err := calc.ParseHolidayType(*a.HolidayType); err == nil {
			holidayType = h
		} else {
			holidayType = calc.HolidayType(*a.HolidayType)
		}
	}

	return calc.Record{
		Date:        calc.DateOf(a.AttendanceDate),
		Status:      status,
		HolidayType: holidayType,
		DailyRate:   a.DailyRate,
		Adjustment:  a.Adjustment,
	}
}

func buildQuery(filter AttendanceFilter) (Query, error) {
	q := Query{EmployeeID: filter.EmployeeID}
	if filter.From != "" {
		t, err := time.Parse(calc.DateLayout, filter.From)
		if err != nil {
			return Query{}, attendanceerrors.ErrInvalidDate
		}
		q.From = &t
	}
	if filter.To != "" {
		t, err := time.Parse(calc.DateLayout, filter.To)
		if err != nil {
			return Query{}, attendanceerrors.ErrInvalidDate
		}
		q.To = &t
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return Query{}, attendanceerrors.ErrInvalidRange
	}
	if filter.Status != "" {
		status, err := calc.ParseStatus(filter.Status)
		if err != nil {
			return Query{}, attendanceerrors.ErrInvalidStatus
		}
		q.Status = string(status)
	}
	return q, nil
}

func mapToResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:             a.ID.String(),
		CompanyID:      a.CompanyID.String(),
		EmployeeID:     a.EmployeeID.String(),
		AttendanceDate: a.AttendanceDate.Format(calc.DateLayout),
		Status:         a.Status,
		HolidayType:    a.HolidayType,
		Adjustment:     a.Adjustment,
		Source:         a.Source,
		Notes:          a.Notes,
	}
	if a.DailyRate.Valid {
		rate := a.DailyRate.Decimal
		resp.DailyRate = &rate
	}
	if a.Employee != nil {
		resp.EmployeeName = a.Employee.FullName
		resp.EmployeeNumber = a.Employee.EmployeeNumber
	}
	return resp
}

func uuidPtr(v string) *uuid.UUID {
	id, err := uuid.Parse(v)
	if err != nil {
		return nil
	}
	return &id
}
