package response

import (
	"net/http"

	"go-payroll/internal/shared/apperror"

	"github.com/gin-gonic/gin"
)

type PaginationMeta struct {
	Total      int64 `json:"total,omitempty"`
	TotalPages int   `json:"totalPages,omitempty"`
	Page       int   `json:"page,omitempty"`
	PageSize   int   `json:"pageSize,omitempty"`
}

func NewPaginationMeta(total int64, page, limit int) PaginationMeta {
	totalPages := 0
	if limit > 0 {
		// Logika pembulatan ke atas: (total + limit - 1) / limit
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}

	return PaginationMeta{
		Total:      total,
		TotalPages: totalPages,
		Page:       page,
		PageSize:   limit,
	}
}

type ApiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  any             `json:"data,omitempty"`
	Meta  *PaginationMeta `json:"meta,omitempty"`
	Error any             `json:"error,omitempty"`
}

func Success(c *gin.Context, status int, data interface{}, meta *PaginationMeta) {
	c.JSON(status, ApiEnvelope{
		Ok:    true,
		Data:  data,
		Meta:  meta,
		Error: nil,
	})
}

func Error(c *gin.Context, status int, errorCode string, message string, details interface{}) {
	c.JSON(status, ApiEnvelope{
		Ok:   false,
		Data: nil,
		Meta: nil,
		Error: map[string]interface{}{
			"code":    errorCode,
			"message": message,
			"details": details,
		},
	})
}

// ValidationError writes the 400 envelope for a request that failed binding.
func ValidationError(c *gin.Context, err error) {
	Error(c, http.StatusBadRequest, apperror.CodeValidationError, "Input tidak valid", err.Error())
}

// PageQuery is the paging part of list query strings.
type PageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// BindPage reads page and page_size. On an out-of-range value it writes a 400
// and returns false.
func BindPage(c *gin.Context) (PageQuery, bool) {
	var q PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		ValidationError(c, err)
		return q, false
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 10
	}
	return q, true
}

// Paginate writes one page of rows with its meta. A page past the end is empty.
func Paginate[T any](c *gin.Context, rows []T, q PageQuery) {
	total := len(rows)
	start, end := total, total
	// page dibandingkan dulu supaya (page-1)*size tidak overflow
	if q.Page-1 <= total/q.PageSize {
		start = min((q.Page-1)*q.PageSize, total)
		end = min(start+q.PageSize, total)
	}

	meta := NewPaginationMeta(int64(total), q.Page, q.PageSize)
	Success(c, http.StatusOK, rows[start:end], &meta)
}
