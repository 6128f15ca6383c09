package payroll

import (
	"time"

	"go-payroll/internal/payrule"
	payrollerrors "go-payroll/internal/payroll/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	one    = decimal.NewFromInt(1)
	twelve = decimal.NewFromInt(12)
)

// CalcInput is everything the calculator needs for one allocation line.
// The orchestrator assembles it; nothing here touches storage or clocks.
type CalcInput struct {
	EmploymentID uuid.UUID
	AllocationID uuid.UUID
	PayPeriod    time.Time // month-end date

	GrossSalary decimal.Decimal // resolved full salary, unapportioned
	SalaryType  string
	FTE         decimal.Decimal

	ProvidentFund bool
	SavingFund    bool

	EmploymentEndDate *time.Time

	// Cumulative thirteenth-month accrual already recorded for this
	// allocation in the current fiscal year, excluding this period.
	PriorThirteenMonthAccrued decimal.Decimal

	Bonus              decimal.Decimal
	Refund             decimal.Decimal
	CompensationAdjust decimal.Decimal
}

// Line is one computed payroll line. Amounts stay unrounded until
// Rounded() so bracket iteration never compounds rounding error.
type Line struct {
	EmploymentID uuid.UUID
	AllocationID uuid.UUID
	PayPeriod    time.Time
	SalaryType   string
	FTE          decimal.Decimal

	GrossSalary      decimal.Decimal
	GrossSalaryByFTE decimal.Decimal

	Tax                    decimal.Decimal
	SocialSecurityEmployee decimal.Decimal
	SocialSecurityEmployer decimal.Decimal
	HealthWelfareEmployee  decimal.Decimal
	HealthWelfareEmployer  decimal.Decimal
	ProvidentFund          decimal.Decimal
	SavingFund             decimal.Decimal

	ThirteenMonthAccrual decimal.Decimal
	ThirteenMonthPaid    decimal.Decimal

	Bonus              decimal.Decimal
	Refund             decimal.Decimal
	CompensationAdjust decimal.Decimal

	TotalIncome          decimal.Decimal
	TotalDeduction       decimal.Decimal
	EmployerContribution decimal.Decimal
	NetSalary            decimal.Decimal

	NeedsAdvance bool
}

// Calculate computes one payroll line as a pure function of the input and
// the rule set. Configuration lookups happen before this point; the only
// error here is a malformed FTE.
func Calculate(in CalcInput, rules payrule.RuleSet) (Line, error) {
	if in.FTE.IsNegative() || in.FTE.GreaterThan(one) {
		return Line{}, payrollerrors.ErrInvalidFTE
	}

	grossByFTE := in.GrossSalary.Mul(in.FTE)

	tax := rules.ProgressiveTax(grossByFTE)
	ss := rules.SocialSecurity(grossByFTE)
	hw := rules.HealthWelfare(grossByFTE)

	pvd := decimal.Zero
	if in.ProvidentFund {
		pvd = grossByFTE.Mul(rules.ProvidentFundRate)
	}

	saving := decimal.Zero
	if in.SavingFund {
		saving = grossByFTE.Mul(rules.SavingFundRate)
	}

	accrual := grossByFTE.Div(twelve)
	paid := decimal.Zero
	if thirteenMonthPayout(in.PayPeriod, in.EmploymentEndDate) {
		paid = in.PriorThirteenMonthAccrued.Add(accrual)
	}

	totalIncome := grossByFTE.
		Add(in.Bonus).
		Add(in.Refund).
		Add(paid).
		Sub(in.CompensationAdjust)

	totalDeduction := tax.Add(ss).Add(hw)

	employerContribution := ss.Add(hw).Add(pvd).Add(saving)

	return Line{
		EmploymentID: in.EmploymentID,
		AllocationID: in.AllocationID,
		PayPeriod:    in.PayPeriod,
		SalaryType:   in.SalaryType,
		FTE:          in.FTE,

		GrossSalary:      in.GrossSalary,
		GrossSalaryByFTE: grossByFTE,

		Tax:                    tax,
		SocialSecurityEmployee: ss,
		SocialSecurityEmployer: ss,
		HealthWelfareEmployee:  hw,
		HealthWelfareEmployer:  hw,
		ProvidentFund:          pvd,
		SavingFund:             saving,

		ThirteenMonthAccrual: accrual,
		ThirteenMonthPaid:    paid,

		Bonus:              in.Bonus,
		Refund:             in.Refund,
		CompensationAdjust: in.CompensationAdjust,

		TotalIncome:          totalIncome,
		TotalDeduction:       totalDeduction,
		EmployerContribution: employerContribution,
		NetSalary:            totalIncome.Sub(totalDeduction),
	}, nil
}

// thirteenMonthPayout: the accrued thirteenth-month salary pays out in the
// December period, or in the period whose month contains the employment
// end date (resignation mid-year), whichever comes first.
func thirteenMonthPayout(payPeriod time.Time, employmentEnd *time.Time) bool {
	if payPeriod.Month() == time.December {
		return true
	}
	if employmentEnd != nil &&
		employmentEnd.Year() == payPeriod.Year() &&
		employmentEnd.Month() == payPeriod.Month() {
		return true
	}
	return false
}

// Rounded returns a copy with every monetary figure rounded to 2 decimal
// places. Called exactly once, at the point of persistence or response.
func (l Line) Rounded() Line {
	r := l
	r.GrossSalary = l.GrossSalary.Round(2)
	r.GrossSalaryByFTE = l.GrossSalaryByFTE.Round(2)
	r.Tax = l.Tax.Round(2)
	r.SocialSecurityEmployee = l.SocialSecurityEmployee.Round(2)
	r.SocialSecurityEmployer = l.SocialSecurityEmployer.Round(2)
	r.HealthWelfareEmployee = l.HealthWelfareEmployee.Round(2)
	r.HealthWelfareEmployer = l.HealthWelfareEmployer.Round(2)
	r.ProvidentFund = l.ProvidentFund.Round(2)
	r.SavingFund = l.SavingFund.Round(2)
	r.ThirteenMonthAccrual = l.ThirteenMonthAccrual.Round(2)
	r.ThirteenMonthPaid = l.ThirteenMonthPaid.Round(2)
	r.Bonus = l.Bonus.Round(2)
	r.Refund = l.Refund.Round(2)
	r.CompensationAdjust = l.CompensationAdjust.Round(2)
	r.TotalIncome = l.TotalIncome.Round(2)
	r.TotalDeduction = l.TotalDeduction.Round(2)
	r.EmployerContribution = l.EmployerContribution.Round(2)
	r.NetSalary = l.NetSalary.Round(2)
	return r
}
