package employment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Filter is the batch/preview filter specification: dimensions are ANDed,
// values within a dimension are ORed. All dimensions optional.
type Filter struct {
	Subsidiaries    []string
	DepartmentIDs   []uuid.UUID
	GrantIDs        []uuid.UUID
	EmploymentTypes []string
}

//go:generate mockgen -source=employment_repo.go -destination=mock/employment_repo_mock.go -package=mock
type Repository interface {
	FindViewByID(ctx context.Context, id uuid.UUID) (View, error)
	ResolveIDs(ctx context.Context, filter Filter) ([]uuid.UUID, error)
	FindDueProbation(ctx context.Context, onDate time.Time) ([]View, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindViewByID(ctx context.Context, id uuid.UUID) (View, error) {
	var emp Employment
	err := r.db.WithContext(ctx).
		Preload("Employee").
		First(&emp, "id = ?", id).Error
	if err != nil {
		return View{}, err
	}
	return emp.ToView(), nil
}

func (r *repository) ResolveIDs(ctx context.Context, filter Filter) ([]uuid.UUID, error) {
	db := r.db.WithContext(ctx).
		Table("employments").
		Select("employments.id").
		Joins("JOIN employees ON employees.id = employments.employee_id").
		Where("employments.active = true").
		Where("employments.deleted_at IS NULL")

	if len(filter.Subsidiaries) > 0 {
		db = db.Where("employees.subsidiary IN ?", filter.Subsidiaries)
	}
	if len(filter.DepartmentIDs) > 0 {
		db = db.Where("employments.department_id IN ?", filter.DepartmentIDs)
	}
	if len(filter.EmploymentTypes) > 0 {
		db = db.Where("employments.employment_type IN ?", filter.EmploymentTypes)
	}
	if len(filter.GrantIDs) > 0 {
		// Grant dimension goes through the allocations: an employment matches
		// when any active allocation draws on one of the grants.
		db = db.Where(`EXISTS (
			SELECT 1 FROM funding_allocations fa
			LEFT JOIN grant_items gi ON gi.id = fa.grant_item_id
			WHERE fa.employment_id = employments.id
				AND fa.status = 'active'
				AND (fa.org_funded_grant_id IN ? OR gi.grant_id IN ?)
		)`, filter.GrantIDs, filter.GrantIDs)
	}

	var ids []uuid.UUID
	err := db.Order("employments.created_at ASC").Scan(&ids).Error
	return ids, err
}

func (r *repository) FindDueProbation(ctx context.Context, onDate time.Time) ([]View, error) {
	var emps []Employment
	// Due when the pass date has arrived and no terminal probation event
	// (passed/failed) has been recorded yet. Using <= rather than = lets
	// the next sweep pick up anything a missed run left behind.
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("employments.active = true").
		Where("employments.pass_probation_date <= ?", onDate.Format("2006-01-02")).
		Where(`NOT EXISTS (
			SELECT 1 FROM probation_records pr
			WHERE pr.employment_id = employments.id
				AND pr.is_active = true
				AND pr.event_type IN ('passed', 'failed')
		)`).
		Find(&emps).Error
	if err != nil {
		return nil, err
	}

	views := make([]View, len(emps))
	for i, emp := range emps {
		views[i] = emp.ToView()
	}
	return views, nil
}
