package calc

import "github.com/shopspring/decimal"

var (
	weeksPerMonth = decimal.NewFromInt(4)
	monthsPerYear = decimal.NewFromInt(12)
	weeksPerYear  = decimal.NewFromInt(52)

	sssFloorBasis  = decimal.NewFromInt(4000)
	sssCapBasis    = decimal.NewFromInt(30000)
	sssBracketStep = decimal.NewFromInt(500)
	sssRate        = decimal.RequireFromString("0.05")

	philHealthFloorBasis = decimal.NewFromInt(10000)
	philHealthCapBasis   = decimal.NewFromInt(100000)
	philHealthRate       = decimal.RequireFromString("0.025")

	pagIBIGRate = decimal.RequireFromString("0.02")
	pagIBIGCap  = decimal.NewFromInt(200)
)

type taxBracket struct {
	over decimal.Decimal
	base decimal.Decimal
	rate decimal.Decimal
}

// Annual withholding table, highest bracket first. Income up to 250,000 is exempt.
var taxBrackets = []taxBracket{
	{over: decimal.NewFromInt(8000000), base: decimal.NewFromInt(2202500), rate: decimal.RequireFromString("0.35")},
	{over: decimal.NewFromInt(2000000), base: decimal.NewFromInt(402500), rate: decimal.RequireFromString("0.30")},
	{over: decimal.NewFromInt(800000), base: decimal.NewFromInt(102500), rate: decimal.RequireFromString("0.25")},
	{over: decimal.NewFromInt(400000), base: decimal.NewFromInt(22500), rate: decimal.RequireFromString("0.20")},
	{over: decimal.NewFromInt(250000), base: decimal.Zero, rate: decimal.RequireFromString("0.15")},
}

func monthlyBasis(gross decimal.Decimal) decimal.Decimal {
	return gross.Mul(weeksPerMonth)
}

func monthlySocialInsurance(monthly decimal.Decimal) decimal.Decimal {
	var basis decimal.Decimal
	switch {
	case monthly.LessThanOrEqual(sssFloorBasis):
		basis = sssFloorBasis
	case monthly.GreaterThan(sssCapBasis):
		basis = sssCapBasis
	default:
		basis = monthly.Div(sssBracketStep).Ceil().Mul(sssBracketStep)
	}
	return basis.Mul(sssRate)
}

func monthlyHealthInsurance(monthly decimal.Decimal) decimal.Decimal {
	basis := monthly
	switch {
	case monthly.LessThan(philHealthFloorBasis):
		basis = philHealthFloorBasis
	case monthly.GreaterThan(philHealthCapBasis):
		basis = philHealthCapBasis
	}
	return basis.Mul(philHealthRate)
}

func monthlyHousingFund(monthly decimal.Decimal) decimal.Decimal {
	return decimal.Min(monthly.Mul(pagIBIGRate), pagIBIGCap)
}

// SocialInsurance is the weekly SSS contribution for gross.
func SocialInsurance(gross decimal.Decimal) decimal.Decimal {
	if !gross.IsPositive() {
		return decimal.Zero
	}
	return monthlySocialInsurance(monthlyBasis(gross)).Div(weeksPerMonth)
}

// HealthInsurance is the weekly PhilHealth contribution for gross.
func HealthInsurance(gross decimal.Decimal) decimal.Decimal {
	if !gross.IsPositive() {
		return decimal.Zero
	}
	return monthlyHealthInsurance(monthlyBasis(gross)).Div(weeksPerMonth)
}

// HousingFund is the weekly Pag-IBIG contribution for gross.
func HousingFund(gross decimal.Decimal) decimal.Decimal {
	if !gross.IsPositive() {
		return decimal.Zero
	}
	return monthlyHousingFund(monthlyBasis(gross)).Div(weeksPerMonth)
}

// AnnualTax applies the progressive table to an annual taxable income.
func AnnualTax(taxable decimal.Decimal) decimal.Decimal {
	for _, b := range taxBrackets {
		if taxable.GreaterThan(b.over) {
			return b.base.Add(taxable.Sub(b.over).Mul(b.rate))
		}
	}
	return decimal.Zero
}

// IncomeTax is the weekly withholding for gross. Taxable income is the
// annualized gross minus the annualized SSS, PhilHealth and Pag-IBIG
// contributions.
func IncomeTax(gross decimal.Decimal) decimal.Decimal {
	if !gross.IsPositive() {
		return decimal.Zero
	}
	monthly := monthlyBasis(gross)
	contributions := monthlySocialInsurance(monthly).
		Add(monthlyHealthInsurance(monthly)).
		Add(monthlyHousingFund(monthly))
	annual := monthly.Mul(monthsPerYear).Sub(contributions.Mul(monthsPerYear))
	return AnnualTax(annual).Div(weeksPerYear)
}

type Statutory struct {
	SocialInsurance decimal.Decimal
	HealthInsurance decimal.Decimal
	HousingFund     decimal.Decimal
	IncomeTax       decimal.Decimal
}

func ComputeStatutory(gross decimal.Decimal) Statutory {
	return Statutory{
		SocialInsurance: SocialInsurance(gross),
		HealthInsurance: HealthInsurance(gross),
		HousingFund:     HousingFund(gross),
		IncomeTax:       IncomeTax(gross),
	}
}
