package payroll

type FilterRequest struct {
	Subsidiaries    []string `json:"subsidiaries" form:"subsidiaries"`
	DepartmentIDs   []string `json:"department_ids" form:"department_ids"`
	GrantIDs        []string `json:"grant_ids" form:"grant_ids"`
	EmploymentTypes []string `json:"employment_types" form:"employment_types"`
}

type CalculateRequest struct {
	EmploymentID string `json:"employment_id" binding:"required"`
	PayPeriod    string `json:"pay_period" binding:"required"`
}

type PreviewRequest struct {
	PayPeriod string        `json:"pay_period" binding:"required"`
	Filters   FilterRequest `json:"filters"`
}

type LineResponse struct {
	EmploymentID string `json:"employment_id"`
	AllocationID string `json:"allocation_id"`
	PayPeriod    string `json:"pay_period"`
	SalaryType   string `json:"salary_type"`
	FTE          string `json:"fte"`

	GrossSalary      string `json:"gross_salary"`
	GrossSalaryByFTE string `json:"gross_salary_by_fte"`

	Tax                    string `json:"tax"`
	SocialSecurityEmployee string `json:"social_security_employee"`
	SocialSecurityEmployer string `json:"social_security_employer"`
	HealthWelfareEmployee  string `json:"health_welfare_employee"`
	HealthWelfareEmployer  string `json:"health_welfare_employer"`
	ProvidentFund          string `json:"provident_fund"`
	SavingFund             string `json:"saving_fund"`

	ThirteenMonthAccrual string `json:"thirteen_month_accrual"`
	ThirteenMonthPaid    string `json:"thirteen_month_paid"`

	TotalIncome          string `json:"total_income"`
	TotalDeduction       string `json:"total_deduction"`
	EmployerContribution string `json:"employer_contribution"`
	NetSalary            string `json:"net_salary"`

	NeedsAdvance bool `json:"needs_advance"`
}

type EmployeeBreakdown struct {
	EmploymentID string         `json:"employment_id"`
	StaffID      string         `json:"staff_id"`
	EmployeeName string         `json:"employee_name"`
	Lines        []LineResponse `json:"lines"`
	Errors       []string       `json:"errors,omitempty"`
}

type PreviewSummary struct {
	Employments  int    `json:"employments"`
	Lines        int    `json:"lines"`
	TotalGross   string `json:"total_gross"`
	TotalNet     string `json:"total_net"`
	AdvanceCount int    `json:"advance_count"`
	ErrorCount   int    `json:"error_count"`
}

type PreviewResponse struct {
	PayPeriod string              `json:"pay_period"`
	Summary   PreviewSummary      `json:"summary"`
	Warnings  []string            `json:"warnings,omitempty"`
	Breakdown []EmployeeBreakdown `json:"per_employee_breakdown"`
}

type CalculateResponse struct {
	EmploymentID string         `json:"employment_id"`
	PayPeriod    string         `json:"pay_period"`
	Lines        []LineResponse `json:"lines"`
	Warnings     []string       `json:"warnings,omitempty"`
}

func mapLineToResponse(l Line) LineResponse {
	r := l.Rounded()
	return LineResponse{
		EmploymentID: r.EmploymentID.String(),
		AllocationID: r.AllocationID.String(),
		PayPeriod:    r.PayPeriod.Format("2006-01-02"),
		SalaryType:   r.SalaryType,
		FTE:          r.FTE.String(),

		GrossSalary:      r.GrossSalary.StringFixed(2),
		GrossSalaryByFTE: r.GrossSalaryByFTE.StringFixed(2),

		Tax:                    r.Tax.StringFixed(2),
		SocialSecurityEmployee: r.SocialSecurityEmployee.StringFixed(2),
		SocialSecurityEmployer: r.SocialSecurityEmployer.StringFixed(2),
		HealthWelfareEmployee:  r.HealthWelfareEmployee.StringFixed(2),
		HealthWelfareEmployer:  r.HealthWelfareEmployer.StringFixed(2),
		ProvidentFund:          r.ProvidentFund.StringFixed(2),
		SavingFund:             r.SavingFund.StringFixed(2),

		ThirteenMonthAccrual: r.ThirteenMonthAccrual.StringFixed(2),
		ThirteenMonthPaid:    r.ThirteenMonthPaid.StringFixed(2),

		TotalIncome:          r.TotalIncome.StringFixed(2),
		TotalDeduction:       r.TotalDeduction.StringFixed(2),
		EmployerContribution: r.EmployerContribution.StringFixed(2),
		NetSalary:            r.NetSalary.StringFixed(2),

		NeedsAdvance: r.NeedsAdvance,
	}
}

func mapRowToResponse(row Payroll) LineResponse {
	return LineResponse{
		EmploymentID: row.EmploymentID.String(),
		AllocationID: row.AllocationID.String(),
		PayPeriod:    row.PayPeriod.Format("2006-01-02"),
		SalaryType:   row.SalaryType,
		FTE:          row.FTE.String(),

		GrossSalary:      row.GrossSalary.StringFixed(2),
		GrossSalaryByFTE: row.GrossSalaryByFTE.StringFixed(2),

		Tax:                    row.Tax.StringFixed(2),
		SocialSecurityEmployee: row.SocialSecurityEmployee.StringFixed(2),
		SocialSecurityEmployer: row.SocialSecurityEmployer.StringFixed(2),
		HealthWelfareEmployee:  row.HealthWelfareEmployee.StringFixed(2),
		HealthWelfareEmployer:  row.HealthWelfareEmployer.StringFixed(2),
		ProvidentFund:          row.ProvidentFund.StringFixed(2),
		SavingFund:             row.SavingFund.StringFixed(2),

		ThirteenMonthAccrual: row.ThirteenMonthAccrual.StringFixed(2),
		ThirteenMonthPaid:    row.ThirteenMonthPaid.StringFixed(2),

		TotalIncome:          row.TotalIncome.StringFixed(2),
		TotalDeduction:       row.TotalDeduction.StringFixed(2),
		EmployerContribution: row.EmployerContribution.StringFixed(2),
		NetSalary:            row.NetSalary.StringFixed(2),

		NeedsAdvance: row.NeedsAdvance,
	}
}
