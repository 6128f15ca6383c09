package probation

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventInitial   = "initial"
	EventExtension = "extension"
	EventPassed    = "passed"
	EventFailed    = "failed"
)

// ProbationRecord is append-only history. Exactly one record per
// employment carries is_active = true, enforced by the partial unique
// index uq_probation_record_active; transitions deactivate the prior
// record and insert the next one instead of mutating it.
type ProbationRecord struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmploymentID uuid.UUID `gorm:"type:uuid;not null;index"`

	EventType       string `gorm:"type:varchar(20);not null"`
	ExtensionNumber int    `gorm:"not null;default:0"`

	StartDate time.Time  `gorm:"type:date;not null"`
	EndDate   *time.Time `gorm:"type:date"`

	IsActive bool    `gorm:"column:is_active;not null;default:true;index"`
	Notes    *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ProbationRecord) TableName() string {
	return "probation_records"
}
