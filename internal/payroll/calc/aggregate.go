package calc

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type PeriodPay struct {
	Period      Period
	Gross       decimal.Decimal
	Days        []DayPay
	MissingRate bool
}

// Aggregate walks every date of period, resolving the matching record or a
// synthesized default, and sums the daily amounts into gross pay. Records
// outside the period are ignored.
func Aggregate(period Period, employeeRate decimal.NullDecimal, records []Record) (PeriodPay, error) {
	if err := period.Validate(); err != nil {
		return PeriodPay{}, err
	}

	byDate := make(map[string]Record, len(records))
	for _, rec := range records {
		if !period.Contains(rec.Date) {
			continue
		}
		key := DateKey(rec.Date)
		if _, dup := byDate[key]; dup {
			return PeriodPay{}, fmt.Errorf("%w: %s", ErrDuplicateRecord, key)
		}
		byDate[key] = rec
	}

	days := period.Days()
	result := PeriodPay{
		Period: Period{Start: DateOf(period.Start), End: DateOf(period.End)},
		Gross:  decimal.Zero,
		Days:   make([]DayPay, 0, len(days)),
	}

	for _, day := range days {
		key := DateKey(day)
		rec, found := byDate[key]
		if !found {
			rec = Synthesize(day, employeeRate)
		}

		pay, err := Resolve(rec, employeeRate)
		if err != nil {
			return PeriodPay{}, fmt.Errorf("%s: %w", key, err)
		}
		pay.Synthesized = !found

		result.Gross = result.Gross.Add(pay.Amount)
		result.MissingRate = result.MissingRate || pay.MissingRate
		result.Days = append(result.Days, pay)
	}

	if result.Gross.IsNegative() {
		return PeriodPay{}, fmt.Errorf("%w: %s", ErrNegativeGrossPay, result.Gross.StringFixed(2))
	}

	return result, nil
}
