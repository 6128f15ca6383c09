package payroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payroll is one persisted line per (employment, allocation, pay period).
// The triple is a unique natural key; batch re-runs upsert against it.
// Rows are never mutated outside that upsert.
type Payroll struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmploymentID uuid.UUID `gorm:"type:uuid;not null;index:idx_payroll_natural,unique"`
	AllocationID uuid.UUID `gorm:"type:uuid;not null;index:idx_payroll_natural,unique"`
	PayPeriod    time.Time `gorm:"type:date;not null;index:idx_payroll_natural,unique"`

	SalaryType string          `gorm:"type:varchar(30);not null"`
	FTE        decimal.Decimal `gorm:"type:decimal(5,4);not null"`

	GrossSalary      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	GrossSalaryByFTE decimal.Decimal `gorm:"type:decimal(14,2);not null"`

	Tax                    decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	SocialSecurityEmployee decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	SocialSecurityEmployer decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	HealthWelfareEmployee  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	HealthWelfareEmployer  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	ProvidentFund          decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	SavingFund             decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`

	ThirteenMonthAccrual decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	ThirteenMonthPaid    decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`

	Bonus              decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Refund             decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	CompensationAdjust decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`

	TotalIncome          decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	TotalDeduction       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	EmployerContribution decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	NetSalary            decimal.Decimal `gorm:"type:decimal(14,2);not null"`

	NeedsAdvance bool `gorm:"not null;default:false;index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func fromLine(l Line) Payroll {
	r := l.Rounded()
	return Payroll{
		ID:           uuid.New(),
		EmploymentID: r.EmploymentID,
		AllocationID: r.AllocationID,
		PayPeriod:    r.PayPeriod,

		SalaryType: r.SalaryType,
		FTE:        r.FTE,

		GrossSalary:      r.GrossSalary,
		GrossSalaryByFTE: r.GrossSalaryByFTE,

		Tax:                    r.Tax,
		SocialSecurityEmployee: r.SocialSecurityEmployee,
		SocialSecurityEmployer: r.SocialSecurityEmployer,
		HealthWelfareEmployee:  r.HealthWelfareEmployee,
		HealthWelfareEmployer:  r.HealthWelfareEmployer,
		ProvidentFund:          r.ProvidentFund,
		SavingFund:             r.SavingFund,

		ThirteenMonthAccrual: r.ThirteenMonthAccrual,
		ThirteenMonthPaid:    r.ThirteenMonthPaid,

		Bonus:              r.Bonus,
		Refund:             r.Refund,
		CompensationAdjust: r.CompensationAdjust,

		TotalIncome:          r.TotalIncome,
		TotalDeduction:       r.TotalDeduction,
		EmployerContribution: r.EmployerContribution,
		NetSalary:            r.NetSalary,

		NeedsAdvance: r.NeedsAdvance,
	}
}
