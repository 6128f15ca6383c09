package allocation

import (
	"fmt"
	"time"

	"go-payroll/internal/employment"

	"github.com/shopspring/decimal"
)

// Resolved is one allocation with the salary figure that applies for the
// pay period (probation vs pass-probation, resolved against the employment).
type Resolved struct {
	Allocation FundingAllocation
	Salary     decimal.Decimal
	SalaryType string
}

// Resolution carries the resolved allocations plus advisory warnings.
// Zero active allocations and FTE sums above 1.0 are warnings, never
// errors: transitional overlap during funding transfers is tolerated.
type Resolution struct {
	Allocations []Resolved
	Warnings    []string
}

var maxFTE = decimal.NewFromInt(1)

// Resolve is a pure read: it selects the allocations active on the pay
// period date and picks the applicable salary figure for each.
func Resolve(emp employment.View, allocs []FundingAllocation, payPeriodDate time.Time) Resolution {
	var res Resolution

	salary, salaryType := resolveSalary(emp, payPeriodDate)

	fteSum := decimal.Zero
	for _, a := range allocs {
		if !a.ActiveOn(payPeriodDate) {
			continue
		}

		res.Allocations = append(res.Allocations, Resolved{
			Allocation: a,
			Salary:     salary,
			SalaryType: salaryType,
		})
		fteSum = fteSum.Add(a.FTE)
	}

	if len(res.Allocations) == 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"employment %s has no active funding allocations as of %s",
			emp.ID, payPeriodDate.Format("2006-01-02"),
		))
		return res
	}

	if fteSum.GreaterThan(maxFTE) {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"employment %s total FTE %s exceeds 1.0 as of %s",
			emp.ID, fteSum.String(), payPeriodDate.Format("2006-01-02"),
		))
	}

	return res
}

// resolveSalary applies the probation rule: before the pass date the
// probation salary applies, falling back to the pass-probation figure
// when no probation salary is set. A null pass date means probation has
// not ended yet.
func resolveSalary(emp employment.View, payPeriodDate time.Time) (decimal.Decimal, string) {
	inProbation := emp.PassProbationDate == nil || payPeriodDate.Before(*emp.PassProbationDate)

	if inProbation {
		if emp.ProbationSalary != nil {
			return *emp.ProbationSalary, SalaryTypeProbation
		}
		return emp.PassProbationSalary, SalaryTypeProbation
	}

	return emp.PassProbationSalary, SalaryTypePassProbation
}
