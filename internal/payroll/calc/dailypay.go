package calc

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is one attendance row as the resolver sees it. DailyRate is optional;
// the employee rate applies when it is null or zero.
type Record struct {
	Date        time.Time
	Status      Status
	HolidayType HolidayType
	DailyRate   decimal.NullDecimal
	Adjustment  decimal.Decimal
}

type DayPay struct {
	Date        time.Time
	Status      Status
	HolidayType HolidayType
	Rate        decimal.Decimal
	Multiplier  decimal.Decimal
	Adjustment  decimal.Decimal
	Amount      decimal.Decimal
	Synthesized bool
	// MissingRate is set when the day earns a share of the rate but no rate
	// was available, so the base pay counted as 0.
	MissingRate bool
}

// DailyPay = multiplier(status) x rate + adjustment.
func DailyPay(status Status, holiday HolidayType, rate, adjustment decimal.Decimal) (decimal.Decimal, error) {
	m, err := status.Multiplier(holiday)
	if err != nil {
		return decimal.Zero, err
	}
	return m.Mul(rate).Add(adjustment), nil
}

// Synthesize builds the default record for a date without attendance:
// DAY_OFF on weekends, PRESENT otherwise, at the employee rate.
func Synthesize(date time.Time, employeeRate decimal.NullDecimal) Record {
	status := StatusPresent
	if IsWeekend(date) {
		status = StatusDayOff
	}
	return Record{
		Date:       DateOf(date),
		Status:     status,
		DailyRate:  employeeRate,
		Adjustment: decimal.Zero,
	}
}

// Resolve computes the pay of one record.
func Resolve(rec Record, employeeRate decimal.NullDecimal) (DayPay, error) {
	rate, ok := effectiveRate(rec.DailyRate, employeeRate)

	m, err := rec.Status.Multiplier(rec.HolidayType)
	if err != nil {
		return DayPay{}, err
	}

	return DayPay{
		Date:        DateOf(rec.Date),
		Status:      rec.Status,
		HolidayType: rec.HolidayType,
		Rate:        rate,
		Multiplier:  m,
		Adjustment:  rec.Adjustment,
		Amount:      m.Mul(rate).Add(rec.Adjustment),
		MissingRate: !ok && !m.IsZero(),
	}, nil
}

func effectiveRate(recordRate, employeeRate decimal.NullDecimal) (decimal.Decimal, bool) {
	if recordRate.Valid && recordRate.Decimal.IsPositive() {
		return recordRate.Decimal, true
	}
	if employeeRate.Valid && employeeRate.Decimal.IsPositive() {
		return employeeRate.Decimal, true
	}
	return decimal.Zero, false
}
