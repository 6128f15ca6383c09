package allocation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TypeGrant     = "grant"
	TypeOrgFunded = "org_funded"

	SalaryTypeProbation     = "probation_salary"
	SalaryTypePassProbation = "pass_probation_salary"

	StatusActive     = "active"
	StatusHistorical = "historical"
	StatusTerminated = "terminated"
)

// FundingAllocation splits an employment's salary cost to a grant item or
// an organizational fund by fractional FTE. Exactly one of GrantItemID /
// OrgFundedGrantID is set, matching AllocationType. Once a payroll row
// references an allocation it is never mutated; corrections and probation
// transitions create a superseding row and mark this one historical.
type FundingAllocation struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID   uuid.UUID `gorm:"type:uuid;not null;index"`
	EmploymentID uuid.UUID `gorm:"type:uuid;not null;index"`

	GrantItemID      *uuid.UUID `gorm:"type:uuid;index"`
	OrgFundedGrantID *uuid.UUID `gorm:"type:uuid;index"`
	AllocationType   string     `gorm:"type:varchar(20);not null"`

	FTE             decimal.Decimal `gorm:"type:decimal(5,4);not null"`
	SalaryType      string          `gorm:"type:varchar(30);not null"`
	AllocatedAmount decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`

	Status    string     `gorm:"type:varchar(20);not null;default:'active';index"`
	StartDate time.Time  `gorm:"type:date;not null"`
	EndDate   *time.Time `gorm:"type:date"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ActiveOn reports whether the allocation window covers the given date.
func (a FundingAllocation) ActiveOn(date time.Time) bool {
	if a.Status != StatusActive {
		return false
	}
	if a.StartDate.After(date) {
		return false
	}
	if a.EndDate != nil && a.EndDate.Before(date) {
		return false
	}
	return true
}
