// Package calc is the pure payroll computation core: statutory deduction
// calculators, the daily pay resolver, the period aggregator and the payroll
// entry builder. Nothing in this package performs I/O or logs; callers load
// the inputs, call in here, and persist or log the results.
//
// All amounts are decimal.Decimal. Deductions follow a weekly pay cadence:
// a weekly gross is converted to a monthly basis (x4), the monthly schedule is
// applied, and the result is converted back (/4).
package calc
