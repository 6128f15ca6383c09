package allocation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=allocation_repo.go -destination=mock/allocation_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindActiveByEmployment(ctx context.Context, employmentID uuid.UUID, onDate time.Time) ([]FundingAllocation, error)
	FindActiveProbationSalary(ctx context.Context, employmentID uuid.UUID) ([]FundingAllocation, error)
	MarkHistorical(ctx context.Context, ids []uuid.UUID, endDate time.Time) error
	Create(ctx context.Context, alloc *FundingAllocation) error
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

func (r *repository) FindActiveByEmployment(ctx context.Context, employmentID uuid.UUID, onDate time.Time) ([]FundingAllocation, error) {
	var allocs []FundingAllocation
	day := onDate.Format("2006-01-02")
	err := r.db.WithContext(ctx).
		Where("employment_id = ?", employmentID).
		Where("status = ?", StatusActive).
		Where("start_date <= ?", day).
		Where("end_date IS NULL OR end_date >= ?", day).
		Order("created_at ASC").
		Find(&allocs).Error
	return allocs, err
}

func (r *repository) FindActiveProbationSalary(ctx context.Context, employmentID uuid.UUID) ([]FundingAllocation, error) {
	var allocs []FundingAllocation
	err := r.db.WithContext(ctx).
		Where("employment_id = ?", employmentID).
		Where("status = ?", StatusActive).
		Where("salary_type = ?", SalaryTypeProbation).
		Find(&allocs).Error
	return allocs, err
}

func (r *repository) MarkHistorical(ctx context.Context, ids []uuid.UUID, endDate time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&FundingAllocation{}).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"status":   StatusHistorical,
			"end_date": endDate.Format("2006-01-02"),
		}).Error
}

func (r *repository) Create(ctx context.Context, alloc *FundingAllocation) error {
	return r.db.WithContext(ctx).Create(alloc).Error
}
