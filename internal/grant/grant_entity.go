package grant

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Grant and GrantItem are read-only from the engine's perspective: they
// are owned by the grants-management side of the HR system.
type Grant struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code         string    `gorm:"type:varchar(30);not null"`
	Name         string    `gorm:"type:varchar(120);not null"`
	Organization string    `gorm:"type:varchar(30);not null;index"`
	EndDate      *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type GrantItem struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	GrantID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Grant          *Grant    `gorm:"foreignKey:GrantID;references:ID"`
	BudgetLineCode string    `gorm:"type:varchar(30)"`
	BudgetedSalary decimal.Decimal `gorm:"type:decimal(14,2)"`
	LevelOfEffort  decimal.Decimal `gorm:"type:decimal(5,4)"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
