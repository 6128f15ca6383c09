package allocation_test

import (
	"testing"
	"time"

	"go-payroll/internal/allocation"
	"go-payroll/internal/employment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func testEmployment() employment.View {
	return employment.View{
		ID:                  uuid.New(),
		EmployeeID:          uuid.New(),
		StartDate:           date(2025, 1, 1),
		PassProbationSalary: dec("50000"),
	}
}

func activeAllocation(employmentID uuid.UUID, fte string) allocation.FundingAllocation {
	grantItemID := uuid.New()
	return allocation.FundingAllocation{
		ID:             uuid.New(),
		EmploymentID:   employmentID,
		GrantItemID:    &grantItemID,
		AllocationType: allocation.TypeGrant,
		FTE:            dec(fte),
		SalaryType:     allocation.SalaryTypePassProbation,
		Status:         allocation.StatusActive,
		StartDate:      date(2025, 1, 1),
	}
}

func TestResolveSelectsAllocationsActiveOnPeriodDate(t *testing.T) {
	emp := testEmployment()
	emp.PassProbationDate = datePtr(2025, 4, 1)

	current := activeAllocation(emp.ID, "0.6")
	expired := activeAllocation(emp.ID, "0.4")
	expired.EndDate = datePtr(2026, 1, 31)
	notYet := activeAllocation(emp.ID, "0.4")
	notYet.StartDate = date(2026, 6, 1)
	historical := activeAllocation(emp.ID, "0.4")
	historical.Status = allocation.StatusHistorical

	res := allocation.Resolve(
		emp,
		[]allocation.FundingAllocation{current, expired, notYet, historical},
		date(2026, 3, 31),
	)

	assert.Len(t, res.Allocations, 1)
	assert.Equal(t, current.ID, res.Allocations[0].Allocation.ID)
	assert.Empty(t, res.Warnings)
}

func TestResolveWindowBoundariesAreInclusive(t *testing.T) {
	emp := testEmployment()
	emp.PassProbationDate = datePtr(2025, 4, 1)

	alloc := activeAllocation(emp.ID, "1")
	alloc.StartDate = date(2026, 3, 31)
	alloc.EndDate = datePtr(2026, 3, 31)

	res := allocation.Resolve(emp, []allocation.FundingAllocation{alloc}, date(2026, 3, 31))

	assert.Len(t, res.Allocations, 1)
}

func TestResolveProbationSalaryBeforePassDate(t *testing.T) {
	emp := testEmployment()
	emp.ProbationSalary = decimalPtr("40000")
	emp.PassProbationDate = datePtr(2026, 4, 1)

	alloc := activeAllocation(emp.ID, "1")

	res := allocation.Resolve(emp, []allocation.FundingAllocation{alloc}, date(2026, 3, 31))

	assert.Len(t, res.Allocations, 1)
	assert.True(t, res.Allocations[0].Salary.Equal(dec("40000")))
	assert.Equal(t, allocation.SalaryTypeProbation, res.Allocations[0].SalaryType)
}

func TestResolvePassProbationSalaryOnAndAfterPassDate(t *testing.T) {
	emp := testEmployment()
	emp.ProbationSalary = decimalPtr("40000")
	emp.PassProbationDate = datePtr(2026, 3, 31)

	alloc := activeAllocation(emp.ID, "1")

	res := allocation.Resolve(emp, []allocation.FundingAllocation{alloc}, date(2026, 3, 31))

	assert.True(t, res.Allocations[0].Salary.Equal(dec("50000")))
	assert.Equal(t, allocation.SalaryTypePassProbation, res.Allocations[0].SalaryType)
}

func TestResolveProbationFallsBackToPassProbationSalary(t *testing.T) {
	emp := testEmployment()
	// No probation salary configured, probation still running.
	alloc := activeAllocation(emp.ID, "1")

	res := allocation.Resolve(emp, []allocation.FundingAllocation{alloc}, date(2026, 3, 31))

	assert.True(t, res.Allocations[0].Salary.Equal(dec("50000")))
	assert.Equal(t, allocation.SalaryTypeProbation, res.Allocations[0].SalaryType)
}

func TestResolveZeroActiveAllocationsWarns(t *testing.T) {
	emp := testEmployment()

	res := allocation.Resolve(emp, nil, date(2026, 3, 31))

	assert.Empty(t, res.Allocations)
	assert.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "no active funding allocations")
}

func TestResolveFTEAboveOneWarnsButResolves(t *testing.T) {
	emp := testEmployment()

	a := activeAllocation(emp.ID, "0.7")
	b := activeAllocation(emp.ID, "0.6")

	res := allocation.Resolve(emp, []allocation.FundingAllocation{a, b}, date(2026, 3, 31))

	assert.Len(t, res.Allocations, 2)
	assert.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "exceeds 1.0")
}

func decimalPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}
