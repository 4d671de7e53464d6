package apperror

import (
	"reflect"
	"strings"

	"go-payroll/internal/payroll/calc"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func Init() {
	// Daftarkan fungsi kustom ke validator bawaan Gin
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			// Mengambil nama dari tag json (contoh: `json:"work_date"`)
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("attendance_status", validAttendanceStatus)
	}
}

// validAttendanceStatus accepts any spelling calc.ParseStatus understands.
func validAttendanceStatus(fl validator.FieldLevel) bool {
	_, err := calc.ParseStatus(fl.Field().String())
	return err == nil
}
