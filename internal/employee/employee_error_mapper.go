package employee

import (
	"errors"
	"strings"

	employeeerrors "go-payroll/internal/employee/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation      = "23505"
	pgInvalidTextRepresent = "22P02"
)

// uniqueConstraintErrors maps the employees table unique indexes to the
// conflict returned to the client.
var uniqueConstraintErrors = map[string]error{
	"uq_employee_number": employeeerrors.ErrEmployeeNumberAlreadyExists,
	"uq_employee_email":  employeeerrors.ErrEmployeeAlreadyExists,
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			if mapped, ok := uniqueConstraintErrors[pgErr.ConstraintName]; ok {
				return mapped
			}
		case pgInvalidTextRepresent:
			// id di path bukan uuid
			return employeeerrors.ErrInvalidEmployeeID
		}
		return err
	}

	// driver lain hanya memberi pesan teks
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "duplicate key value") {
		for constraint, mapped := range uniqueConstraintErrors {
			if strings.Contains(msg, constraint) {
				return mapped
			}
		}
	}
	return err
}
