package payroll

import (
	"context"
	"time"

	"go-payroll/internal/advance"
	"go-payroll/internal/allocation"
	"go-payroll/internal/employment"
	"go-payroll/internal/grant"
	"go-payroll/internal/payrule"

	"github.com/google/uuid"
)

// LineResult is the outcome for one allocation: either a computed line or
// the error that aborted it. One failing allocation never aborts the rest.
type LineResult struct {
	AllocationID uuid.UUID
	Line         Line
	Err          error
}

// Engine expands one employment into computed payroll lines for a pay
// period: resolve allocations, compute each line, tag cross-organization
// advances. It never persists; callers decide what to do with the results.
type Engine struct {
	employments employment.Repository
	allocations allocation.Repository
	grants      grant.Repository
	payrolls    Repository
}

func NewEngine(
	employments employment.Repository,
	allocations allocation.Repository,
	grants grant.Repository,
	payrolls Repository,
) *Engine {
	return &Engine{
		employments: employments,
		allocations: allocations,
		grants:      grants,
		payrolls:    payrolls,
	}
}

// BuildLines computes all allocation lines for one employment. The
// returned error is employment-level (load failure); per-allocation
// failures land in the corresponding LineResult.
func (e *Engine) BuildLines(
	ctx context.Context,
	employmentID uuid.UUID,
	payPeriod time.Time,
	rules payrule.RuleSet,
) (employment.View, []LineResult, []string, error) {
	emp, err := e.employments.FindViewByID(ctx, employmentID)
	if err != nil {
		return employment.View{}, nil, nil, err
	}

	allocs, err := e.allocations.FindActiveByEmployment(ctx, employmentID, payPeriod)
	if err != nil {
		return emp, nil, nil, err
	}

	res := allocation.Resolve(emp, allocs, payPeriod)

	results := make([]LineResult, 0, len(res.Allocations))
	for _, resolved := range res.Allocations {
		line, err := e.buildLine(ctx, emp, resolved, payPeriod, rules)
		results = append(results, LineResult{
			AllocationID: resolved.Allocation.ID,
			Line:         line,
			Err:          err,
		})
	}

	return emp, results, res.Warnings, nil
}

func (e *Engine) buildLine(
	ctx context.Context,
	emp employment.View,
	resolved allocation.Resolved,
	payPeriod time.Time,
	rules payrule.RuleSet,
) (Line, error) {
	funderOrg, err := e.funderOrganization(ctx, resolved.Allocation)
	if err != nil {
		return Line{}, err
	}

	priorAccrued, err := e.payrolls.SumThirteenMonthAccrued(ctx, resolved.Allocation.ID, payPeriod)
	if err != nil {
		return Line{}, err
	}

	line, err := Calculate(CalcInput{
		EmploymentID: emp.ID,
		AllocationID: resolved.Allocation.ID,
		PayPeriod:    payPeriod,

		GrossSalary: resolved.Salary,
		SalaryType:  resolved.SalaryType,
		FTE:         resolved.Allocation.FTE,

		ProvidentFund: emp.ProvidentFund,
		SavingFund:    emp.SavingFund,

		EmploymentEndDate:         emp.EndDate,
		PriorThirteenMonthAccrued: priorAccrued,
	}, rules)
	if err != nil {
		return Line{}, err
	}

	line.NeedsAdvance = advance.NeedsAdvance(emp.Subsidiary, funderOrg)
	return line, nil
}

func (e *Engine) funderOrganization(ctx context.Context, a allocation.FundingAllocation) (string, error) {
	if a.GrantItemID != nil {
		return e.grants.OrganizationByGrantItem(ctx, *a.GrantItemID)
	}
	if a.OrgFundedGrantID != nil {
		return e.grants.OrganizationByGrant(ctx, *a.OrgFundedGrantID)
	}
	// Neither ref set: treat as same-organization funding, no advance.
	return "", nil
}

// Persist writes one computed line by its natural key.
func (e *Engine) Persist(ctx context.Context, line Line) (Payroll, error) {
	row := fromLine(line)
	if err := e.payrolls.Upsert(ctx, &row); err != nil {
		return Payroll{}, err
	}
	return row, nil
}
