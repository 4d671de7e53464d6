package payroll

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go-payroll/internal/middleware"
	payrollerrors "go-payroll/internal/payroll/errors"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RoleScope decides whether a role only sees its own payroll entries.
type RoleScope interface {
	IsSelfService(role string) bool
}

type Handler struct {
	service Service
	scope   RoleScope
	rdb     *redis.Client
	logger  *zap.Logger
}

func NewHandler(service Service, scope RoleScope, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("payroll.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.handler")
	}
	return &Handler{service: service, scope: scope, logger: l}
}

func NewHandlerWithRedis(service Service, scope RoleScope, rdb *redis.Client, logger ...*zap.Logger) *Handler {
	h := NewHandler(service, scope, logger...)
	h.rdb = rdb
	return h
}

func getActorID(c *gin.Context) string {
	actorID := c.GetString("employee_id")
	if actorID == "" {
		actorID = c.GetString("user_id_validated")
	}
	return actorID
}

func (h *Handler) canReadAll(c *gin.Context) bool {
	role := strings.ToUpper(strings.TrimSpace(c.GetString("role")))
	return h.scope != nil && !h.scope.IsSelfService(role)
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	if httpErr.Status >= http.StatusInternalServerError {
		h.logger.Error("payroll request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) cacheIdempotent(c *gin.Context, resp any) {
	if h.rdb == nil {
		return
	}
	if ck := c.GetString(middleware.IdempotencyCacheKey); ck != "" {
		if payload, err := json.Marshal(resp); err == nil {
			_ = h.rdb.Set(c.Request.Context(), ck, payload, 24*time.Hour).Err()
		}
	}
}

func (h *Handler) CreatePeriod(c *gin.Context) {
	if h.rdb != nil {
		if lk := c.GetString(middleware.IdempotencyLockKey); lk != "" {
			defer h.rdb.Del(c.Request.Context(), lk)
		}
	}

	var req CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.CreatePeriod(c.Request.Context(), c.GetString("company_id"), getActorID(c), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.cacheIdempotent(c, resp)
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetPeriods(c *gin.Context) {
	page, ok := response.BindPage(c)
	if !ok {
		return
	}
	var filter PeriodFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.GetPeriods(c.Request.Context(), c.GetString("company_id"), filter)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Paginate(c, resp, page)
}

func (h *Handler) GetPeriod(c *gin.Context) {
	resp, err := h.service.GetPeriod(c.Request.Context(), c.GetString("company_id"), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) TransitionPeriod(c *gin.Context) {
	var req TransitionPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.TransitionPeriod(c.Request.Context(), c.GetString("company_id"), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

// GeneratePeriod runs batch generation. An empty body uses the default policy.
func (h *Handler) GeneratePeriod(c *gin.Context) {
	if h.rdb != nil {
		if lk := c.GetString(middleware.IdempotencyLockKey); lk != "" {
			defer h.rdb.Del(c.Request.Context(), lk)
		}
	}

	var req GeneratePeriodRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ValidationError(c, err)
			return
		}
	}

	resp, err := h.service.GeneratePeriod(c.Request.Context(), c.GetString("company_id"), getActorID(c), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.cacheIdempotent(c, resp)
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GenerateEntry(c *gin.Context) {
	var req GenerateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.GenerateEntry(c.Request.Context(), c.GetString("company_id"), getActorID(c), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetEntries(c *gin.Context) {
	page, ok := response.BindPage(c)
	if !ok {
		return
	}
	var filter EntryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.GetEntries(c.Request.Context(), c.GetString("company_id"), getActorID(c), h.canReadAll(c), filter)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Paginate(c, resp, page)
}

func (h *Handler) GetEntry(c *gin.Context) {
	resp, err := h.service.GetEntry(c.Request.Context(), c.GetString("company_id"), getActorID(c), h.canReadAll(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetBreakdown(c *gin.Context) {
	resp, err := h.service.GetBreakdown(c.Request.Context(), c.GetString("company_id"), getActorID(c), h.canReadAll(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) UpdateDeductions(c *gin.Context) {
	var req UpdateDeductionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.UpdateDeductions(c.Request.Context(), c.GetString("company_id"), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Approve(c *gin.Context) {
	resp, err := h.service.Approve(c.Request.Context(), c.GetString("company_id"), getActorID(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) MarkAsPaid(c *gin.Context) {
	resp, err := h.service.MarkAsPaid(c.Request.Context(), c.GetString("company_id"), getActorID(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GeneratePayslip(c *gin.Context) {
	resp, err := h.service.GeneratePayslip(c.Request.Context(), c.GetString("company_id"), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) DownloadPayslip(c *gin.Context) {
	resp, err := h.service.GetEntry(c.Request.Context(), c.GetString("company_id"), getActorID(c), h.canReadAll(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	if resp.PayslipURL == nil || *resp.PayslipURL == "" {
		h.writeServiceError(c, payrollerrors.ErrPayslipNotGenerated)
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, *resp.PayslipURL)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.GetString("company_id"), c.Param("id")); err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}
