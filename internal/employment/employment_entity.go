package employment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Employment is one active contract per employee. Owned by the HR system;
// this service only reads it (plus pass_probation_date for the sweep).
type Employment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index"`
	Employee   *Employee `gorm:"foreignKey:EmployeeID;references:ID"`

	DepartmentID   *uuid.UUID `gorm:"type:uuid;index"`
	EmploymentType string     `gorm:"type:varchar(30);not null;index"`

	StartDate time.Time  `gorm:"type:date;not null"`
	EndDate   *time.Time `gorm:"type:date"`

	PassProbationSalary decimal.Decimal  `gorm:"type:decimal(14,2);not null"`
	ProbationSalary     *decimal.Decimal `gorm:"type:decimal(14,2)"`
	PassProbationDate   *time.Time       `gorm:"type:date;index"`

	ProvidentFund bool `gorm:"not null;default:false"`
	SavingFund    bool `gorm:"not null;default:false"`

	Active    bool `gorm:"not null;default:true;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

type Employee struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	StaffID    string    `gorm:"column:staff_id"`
	FullName   string    `gorm:"column:full_name"`
	Subsidiary string    `gorm:"column:subsidiary"` // home organization code
}

func (Employee) TableName() string {
	return "employees"
}

// View is the flat, read-only shape handed to the pure resolver and
// calculator layers. No gorm, no lazy loading.
type View struct {
	ID           uuid.UUID
	EmployeeID   uuid.UUID
	StaffID      string
	EmployeeName string
	Subsidiary   string

	StartDate time.Time
	EndDate   *time.Time

	PassProbationSalary decimal.Decimal
	ProbationSalary     *decimal.Decimal
	PassProbationDate   *time.Time

	ProvidentFund bool
	SavingFund    bool
}

func (e Employment) ToView() View {
	v := View{
		ID:                  e.ID,
		EmployeeID:          e.EmployeeID,
		StartDate:           e.StartDate,
		EndDate:             e.EndDate,
		PassProbationSalary: e.PassProbationSalary,
		ProbationSalary:     e.ProbationSalary,
		PassProbationDate:   e.PassProbationDate,
		ProvidentFund:       e.ProvidentFund,
		SavingFund:          e.SavingFund,
	}
	if e.Employee != nil {
		v.StaffID = e.Employee.StaffID
		v.EmployeeName = e.Employee.FullName
		v.Subsidiary = e.Employee.Subsidiary
	}
	return v
}
