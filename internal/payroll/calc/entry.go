package calc

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

type ManualDeductions struct {
	CashAdvance decimal.Decimal
	Loan        decimal.Decimal
	Other       decimal.Decimal
	Short       decimal.Decimal
}

func (m ManualDeductions) Validate() error {
	fields := []struct {
		name  string
		value decimal.Decimal
	}{
		{"cash_advance", m.CashAdvance},
		{"loan", m.Loan},
		{"other", m.Other},
		{"short", m.Short},
	}
	for _, f := range fields {
		if f.value.IsNegative() {
			return fmt.Errorf("%w: %s", ErrNegativeDeduction, f.name)
		}
	}
	return nil
}

func (m ManualDeductions) rounded() ManualDeductions {
	return ManualDeductions{
		CashAdvance: roundMoney(m.CashAdvance),
		Loan:        roundMoney(m.Loan),
		Other:       roundMoney(m.Other),
		Short:       roundMoney(m.Short),
	}
}

func (m ManualDeductions) Total() decimal.Decimal {
	return m.CashAdvance.Add(m.Loan).Add(m.Other).Add(m.Short)
}

// Entry is a computed payroll line. TotalDeductions, NetPay, NegativeNet and
// Shortfall are derived; only BuildEntry and Recompute set them.
type Entry struct {
	Gross           decimal.Decimal
	SocialInsurance decimal.Decimal
	HealthInsurance decimal.Decimal
	HousingFund     decimal.Decimal
	IncomeTax       decimal.Decimal
	Manual          ManualDeductions

	TotalDeductions decimal.Decimal
	NetPay          decimal.Decimal
	NegativeNet     bool
	Shortfall       decimal.Decimal
}

// BuildEntry computes the statutory deductions of gross and derives totals.
// Every itemized amount is rounded to centavos before it is summed.
func BuildEntry(gross decimal.Decimal, manual ManualDeductions) Entry {
	g := roundMoney(gross)
	s := ComputeStatutory(g)

	return Recompute(Entry{
		Gross:           g,
		SocialInsurance: roundMoney(s.SocialInsurance),
		HealthInsurance: roundMoney(s.HealthInsurance),
		HousingFund:     roundMoney(s.HousingFund),
		IncomeTax:       roundMoney(s.IncomeTax),
		Manual:          manual,
	})
}

// Recompute re-derives the totals of e from its itemized amounts. Net pay is
// floored at 0; a deficit sets NegativeNet and is reported as Shortfall.
func Recompute(e Entry) Entry {
	e.Gross = roundMoney(e.Gross)
	e.SocialInsurance = roundMoney(e.SocialInsurance)
	e.HealthInsurance = roundMoney(e.HealthInsurance)
	e.HousingFund = roundMoney(e.HousingFund)
	e.IncomeTax = roundMoney(e.IncomeTax)
	e.Manual = e.Manual.rounded()

	e.TotalDeductions = e.StatutoryTotal().Add(e.Manual.Total())

	diff := e.Gross.Sub(e.TotalDeductions)
	if diff.IsNegative() {
		e.NetPay = decimal.Zero
		e.NegativeNet = true
		e.Shortfall = diff.Neg()
	} else {
		e.NetPay = diff
		e.NegativeNet = false
		e.Shortfall = decimal.Zero
	}
	return e
}

func (e Entry) StatutoryTotal() decimal.Decimal {
	return e.SocialInsurance.Add(e.HealthInsurance).Add(e.HousingFund).Add(e.IncomeTax)
}

// WithManual replaces the manual deductions and re-derives totals.
func (e Entry) WithManual(m ManualDeductions) Entry {
	e.Manual = m
	return Recompute(e)
}
