package probation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=probation_repo.go -destination=mock/probation_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindActiveByEmployment(ctx context.Context, employmentID uuid.UUID) (*ProbationRecord, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Create(ctx context.Context, record *ProbationRecord) error
	// ShiftPassDate moves the employment's expected pass date, used when
	// an extension pushes probation out.
	ShiftPassDate(ctx context.Context, employmentID uuid.UUID, newDate time.Time) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) FindActiveByEmployment(ctx context.Context, employmentID uuid.UUID) (*ProbationRecord, error) {
	var record ProbationRecord
	err := r.db.WithContext(ctx).
		Where("employment_id = ?", employmentID).
		Where("is_active = true").
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&ProbationRecord{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

func (r *repository) Create(ctx context.Context, record *ProbationRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) ShiftPassDate(ctx context.Context, employmentID uuid.UUID, newDate time.Time) error {
	return r.db.WithContext(ctx).
		Table("employments").
		Where("id = ?", employmentID).
		Update("pass_probation_date", newDate.Format("2006-01-02")).Error
}
