package calc_test

import (
	"testing"

	"go-payroll/internal/payroll/calc"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEntry_EndToEndWeek(t *testing.T) {
	records := []calc.Record{}
	for _, d := range week.Days() {
		status := calc.StatusPresent
		if calc.IsWeekend(d) {
			status = calc.StatusDayOff
		}
		records = append(records, calc.Record{Date: d, Status: status})
	}

	pay, err := calc.Aggregate(week, rate("600"), records)
	require.NoError(t, err)
	assertDecimal(t, "3000", pay.Gross)

	e := calc.BuildEntry(pay.Gross, calc.ManualDeductions{})

	assertDecimal(t, "150", e.SocialInsurance)
	assertDecimal(t, "75", e.HealthInsurance)
	assertDecimal(t, "50", e.HousingFund)
	assertDecimal(t, "0", e.IncomeTax)
	assertDecimal(t, "275", e.TotalDeductions)
	assertDecimal(t, "2725", e.NetPay)
	assert.False(t, e.NegativeNet)
}

func TestBuildEntry_ZeroGross(t *testing.T) {
	e := calc.BuildEntry(decimal.Zero, calc.ManualDeductions{})

	assert.True(t, e.TotalDeductions.IsZero())
	assert.True(t, e.NetPay.IsZero())
	assert.False(t, e.NegativeNet)
}

func TestBuildEntry_NegativeNetIsClamped(t *testing.T) {
	e := calc.BuildEntry(dec("1000"), calc.ManualDeductions{CashAdvance: dec("2000")})

	// statutory on 1000: 50 + 62.5 + 20 + 0
	assertDecimal(t, "2132.5", e.TotalDeductions)
	assertDecimal(t, "0", e.NetPay)
	assert.True(t, e.NegativeNet)
	assertDecimal(t, "1132.5", e.Shortfall)
}

func TestBuildEntry_RoundsItemsBeforeSumming(t *testing.T) {
	// weekly tax on 6000 is 40.3846...
	e := calc.BuildEntry(dec("6000.004"), calc.ManualDeductions{Loan: dec("10.005")})

	assertDecimal(t, "6000", e.Gross)
	assertDecimal(t, "40.38", e.IncomeTax)
	assertDecimal(t, "10.01", e.Manual.Loan)

	sum := e.SocialInsurance.Add(e.HealthInsurance).Add(e.HousingFund).Add(e.IncomeTax).
		Add(e.Manual.CashAdvance).Add(e.Manual.Loan).Add(e.Manual.Other).Add(e.Manual.Short)
	assert.True(t, sum.Equal(e.TotalDeductions))
	assert.True(t, e.Gross.Sub(e.TotalDeductions).Equal(e.NetPay))
}

func TestRecompute_TotalsFollowItems(t *testing.T) {
	e := calc.BuildEntry(dec("3000"), calc.ManualDeductions{})

	for _, m := range []calc.ManualDeductions{
		{CashAdvance: dec("100")},
		{CashAdvance: dec("100"), Loan: dec("250.50"), Other: dec("12"), Short: dec("3.25")},
		{},
	} {
		updated := e.WithManual(m)

		want := updated.StatutoryTotal().Add(updated.Manual.Total())
		assert.True(t, want.Equal(updated.TotalDeductions))
		assert.True(t, decimal.Max(decimal.Zero, updated.Gross.Sub(updated.TotalDeductions)).Equal(updated.NetPay))
	}
}

func TestManualDeductions_Validate(t *testing.T) {
	assert.NoError(t, calc.ManualDeductions{Loan: dec("1")}.Validate())

	err := calc.ManualDeductions{Short: dec("-0.01")}.Validate()
	assert.ErrorIs(t, err, calc.ErrNegativeDeduction)
	assert.Contains(t, err.Error(), "short")
}
