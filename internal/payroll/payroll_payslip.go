package payroll

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go-payroll/internal/payroll/calc"
	payrollerrors "go-payroll/internal/payroll/errors"
	"go-payroll/internal/shared/contextutil"
	"go-payroll/internal/shared/counter"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// GeneratePayslip renders the PDF payslip of an APPROVED or PAID entry, stores
// it under the payslip directory and records its public URL. A payslip number
// is assigned on first render and kept afterwards.
func (s *service) GeneratePayslip(ctx context.Context, companyID, id string) (EntryResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return EntryResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	entry, err := qtx.FindEntryWithDays(ctx, companyID, id)
	if err != nil {
		return EntryResponse{}, mapRepositoryError(err, payrollerrors.ErrEntryNotFound)
	}
	if entry.Status != EntryStatusApproved && entry.Status != EntryStatusPaid {
		return EntryResponse{}, payrollerrors.ErrPayslipNotAvailable
	}

	if entry.PayslipNumber == nil && s.counter != nil {
		next, err := s.counter.WithTx(tx).GetNextValue(ctx, companyID, counter.TypePayslipNumber)
		if err != nil {
			log.Error("payslip number allocation failed", zap.String("entry_id", id), zap.Error(err))
			return EntryResponse{}, err
		}
		number := fmt.Sprintf("PS-%06d", next)
		entry.PayslipNumber = &number
	}

	content, err := buildSimplePayslipPDF(payslipLines(*entry))
	if err != nil {
		return EntryResponse{}, err
	}

	filename := "payslip_" + entry.ID.String() + ".pdf"
	tmpPath, err := writePayslipTemp(s.payslipDir, content)
	if err != nil {
		log.Error("payslip write failed", zap.String("entry_id", id), zap.Error(err))
		return EntryResponse{}, err
	}
	// file sementara dihapus kalau transaksi gagal; setelah rename tidak ada lagi
	defer os.Remove(tmpPath)

	url := strings.TrimRight(s.payslipURL, "/") + "/" + filename
	now := s.now()
	entry.PayslipURL = &url
	entry.PayslipGeneratedAt = &now

	if err := qtx.UpdateEntry(ctx, entry); err != nil {
		return EntryResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return EntryResponse{}, err
	}

	// The final name only appears once the row pointing at it is committed.
	if err := os.Rename(tmpPath, filepath.Join(s.payslipDir, filename)); err != nil {
		log.Error("payslip publish failed", zap.String("entry_id", id), zap.Error(err))
		return EntryResponse{}, err
	}

	log.Info("payslip generated",
		zap.String("entry_id", id),
		zap.String("payslip_url", url),
	)
	return mapEntryToResponse(*entry), nil
}

// writePayslipTemp writes content next to its final location so the later
// rename stays on one filesystem.
func writePayslipTemp(dir string, content []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	f, err := os.CreateTemp(dir, ".payslip-*.pdf.tmp")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// RenderPayslip is the consumer entry point for payslip requests.
func (s *service) RenderPayslip(ctx context.Context, companyID, entryID string) error {
	_, err := s.GeneratePayslip(ctx, companyID, entryID)
	return err
}

var payslipPrinter = message.NewPrinter(language.English)

func peso(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return payslipPrinter.Sprintf("PHP %.2f", f)
}

func payslipLines(e PayrollEntry) []string {
	lines := []string{"PAYSLIP"}
	if e.PayslipNumber != nil {
		lines = append(lines, "No: "+*e.PayslipNumber)
	}
	if e.Employee != nil {
		lines = append(lines,
			fmt.Sprintf("Employee: %s (%s)", e.Employee.FullName, e.Employee.EmployeeNumber),
		)
		if e.Employee.Department != "" || e.Employee.Position != "" {
			lines = append(lines, fmt.Sprintf("Department: %s  Position: %s", e.Employee.Department, e.Employee.Position))
		}
	}
	if e.Period != nil {
		lines = append(lines, fmt.Sprintf("Period: %s (%s to %s)",
			e.Period.WeekID,
			e.Period.StartDate.Format(calc.DateLayout),
			e.Period.EndDate.Format(calc.DateLayout),
		))
	}
	if e.DailyRate.Valid {
		lines = append(lines, "Daily rate: "+peso(e.DailyRate.Decimal))
	}

	lines = append(lines, "", "Days")
	for _, d := range e.Days {
		line := fmt.Sprintf("%s %-3s %-9s x%s  %s",
			d.WorkDate.Format(calc.DateLayout),
			d.WorkDate.Weekday().String()[:3],
			d.Status,
			d.Multiplier.StringFixed(2),
			peso(d.Amount),
		)
		if d.HolidayType != nil {
			line += " (" + *d.HolidayType + ")"
		}
		lines = append(lines, line)
	}

	lines = append(lines,
		"",
		"Paid days: "+e.PaidDays.StringFixed(2),
		"Gross pay: "+peso(e.GrossPay),
		"SSS: "+peso(e.SSS),
		"PhilHealth: "+peso(e.PhilHealth),
		"Pag-IBIG: "+peso(e.PagIBIG),
		"Withholding tax: "+peso(e.WithholdingTax),
		"Cash advance: "+peso(e.CashAdvance),
		"Loan: "+peso(e.Loan),
		"Other deduction: "+peso(e.OtherDeduction),
		"Short: "+peso(e.ShortDeduction),
		"Total deductions: "+peso(e.TotalDeductions),
		"Net pay: "+peso(e.NetPay),
	)
	if e.NegativeNet {
		lines = append(lines, "Shortfall carried: "+peso(e.Shortfall))
	}
	lines = append(lines, "Status: "+e.Status)
	return lines
}
