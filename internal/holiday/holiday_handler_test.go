package holiday_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-payroll/internal/holiday"
	holidayerrors "go-payroll/internal/holiday/errors"
	"go-payroll/internal/payroll/calc"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeHolidayService struct {
	createFn func(ctx context.Context, companyID, actorID string, req holiday.CreateHolidayRequest) (holiday.HolidayResponse, error)
	getAllFn func(ctx context.Context, companyID string, filter holiday.HolidayFilter) ([]holiday.HolidayResponse, error)
}

func (f *fakeHolidayService) Create(ctx context.Context, companyID, actorID string, req holiday.CreateHolidayRequest) (holiday.HolidayResponse, error) {
	return f.createFn(ctx, companyID, actorID, req)
}
func (f *fakeHolidayService) GetAll(ctx context.Context, companyID string, filter holiday.HolidayFilter) ([]holiday.HolidayResponse, error) {
	return f.getAllFn(ctx, companyID, filter)
}
func (f *fakeHolidayService) GetByID(ctx context.Context, companyID, id string) (holiday.HolidayResponse, error) {
	return holiday.HolidayResponse{}, holidayerrors.ErrHolidayNotFound
}
func (f *fakeHolidayService) Update(ctx context.Context, companyID, id string, req holiday.UpdateHolidayRequest) (holiday.HolidayResponse, error) {
	return holiday.HolidayResponse{}, nil
}
func (f *fakeHolidayService) Delete(ctx context.Context, companyID, id string) error {
	return nil
}
func (f *fakeHolidayService) TypeOn(ctx context.Context, companyID string, date time.Time) (calc.HolidayType, bool, error) {
	return "", false, nil
}

func TestHolidayHandler_Create(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success", func(t *testing.T) {
		companyID := uuid.New().String()
		svc := &fakeHolidayService{
			createFn: func(ctx context.Context, cid, aid string, req holiday.CreateHolidayRequest) (holiday.HolidayResponse, error) {
				assert.Equal(t, companyID, cid)
				return holiday.HolidayResponse{ID: uuid.New().String(), Date: req.Date, Name: req.Name, Type: "REGULAR"}, nil
			},
		}

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		req := httptest.NewRequest(http.MethodPost, "/holidays", strings.NewReader(`{"date":"2026-06-12","name":"Independence Day","type":"regular"}`))
		req.Header.Set("Content-Type", "application/json")
		c.Request = req
		c.Set("company_id", companyID)

		holiday.NewHandler(svc).Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "Independence Day")
	})

	t.Run("bad date", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		req := httptest.NewRequest(http.MethodPost, "/holidays", strings.NewReader(`{"date":"June 12","name":"Independence Day","type":"regular"}`))
		req.Header.Set("Content-Type", "application/json")
		c.Request = req

		holiday.NewHandler(&fakeHolidayService{}).Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid type from service", func(t *testing.T) {
		svc := &fakeHolidayService{
			createFn: func(ctx context.Context, cid, aid string, req holiday.CreateHolidayRequest) (holiday.HolidayResponse, error) {
				return holiday.HolidayResponse{}, holidayerrors.ErrInvalidHolidayType
			},
		}

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		req := httptest.NewRequest(http.MethodPost, "/holidays", strings.NewReader(`{"date":"2026-06-12","name":"X","type":"floating"}`))
		req.Header.Set("Content-Type", "application/json")
		c.Request = req

		holiday.NewHandler(svc).Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "REGULAR or SPECIAL")
	})
}

func TestHolidayHandler_GetAll(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("year query", func(t *testing.T) {
		svc := &fakeHolidayService{
			getAllFn: func(ctx context.Context, cid string, filter holiday.HolidayFilter) ([]holiday.HolidayResponse, error) {
				assert.Equal(t, 2026, filter.Year)
				return []holiday.HolidayResponse{{Name: "New Year's Day"}}, nil
			},
		}

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/holidays?year=2026", nil)

		holiday.NewHandler(svc).GetAll(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("invalid year", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/holidays?year=abc", nil)

		holiday.NewHandler(&fakeHolidayService{}).GetAll(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "year is invalid")
	})
}

func TestHolidayHandler_GetByIdNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/holidays/:id", holiday.NewHandler(&fakeHolidayService{}).GetById)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/holidays/"+uuid.New().String(), nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
