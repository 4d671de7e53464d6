package attendance

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go-payroll/internal/middleware"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RoleScope decides whether a role only sees its own attendance.
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
	l := zap.L().Named("attendance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.handler")
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
		h.logger.Error("attendance request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// releaseIdempotency drops the in-flight lock and, when resp is non-nil,
// caches it for replays of the same Idempotency-Key.
func (h *Handler) releaseIdempotency(c *gin.Context, resp any) {
	if h.rdb == nil {
		return
	}
	ctx := c.Request.Context()
	if lk := c.GetString(middleware.IdempotencyLockKey); lk != "" {
		defer h.rdb.Del(ctx, lk)
	}
	if resp == nil {
		return
	}
	if ck := c.GetString(middleware.IdempotencyCacheKey); ck != "" {
		if payload, err := json.Marshal(resp); err == nil {
			_ = h.rdb.Set(ctx, ck, payload, 24*time.Hour).Err()
		}
	}
}

func (h *Handler) Upsert(c *gin.Context) {
	var req UpsertAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.releaseIdempotency(c, nil)
		response.ValidationError(c, err)
		return
	}

	resp, created, err := h.service.Upsert(c.Request.Context(), c.GetString("company_id"), getActorID(c), req)
	if err != nil {
		h.releaseIdempotency(c, nil)
		h.writeServiceError(c, err)
		return
	}
	h.releaseIdempotency(c, resp)

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.Success(c, status, resp, nil)
}

func (h *Handler) BulkImport(c *gin.Context) {
	var req BulkImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.releaseIdempotency(c, nil)
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.BulkImport(c.Request.Context(), c.GetString("company_id"), getActorID(c), req)
	if err != nil {
		h.releaseIdempotency(c, nil)
		h.writeServiceError(c, err)
		return
	}
	h.releaseIdempotency(c, resp)

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	page, ok := response.BindPage(c)
	if !ok {
		return
	}
	var filter AttendanceFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.GetAll(c.Request.Context(), c.GetString("company_id"), getActorID(c), h.canReadAll(c), filter)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Paginate(c, resp, page)
}

func (h *Handler) GetById(c *gin.Context) {
	resp, err := h.service.GetByID(c.Request.Context(), c.GetString("company_id"), getActorID(c), h.canReadAll(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.GetString("company_id"), c.Param("id")); err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
