package employeerate

import (
	"errors"
	"strings"

	employeerateerrors "go-payroll/internal/employeerate/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeerateerrors.ErrRateNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "uq_employee_rate_effective" {
			return employeerateerrors.ErrRateAlreadyExists
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_employee_rate_effective") {
		return employeerateerrors.ErrRateAlreadyExists
	}

	return err
}
