package payroll

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=payroll_repo.go -destination=mock/payroll_repo_mock.go -package=mock
type Repository interface {
	// Upsert writes a line by its natural key (employment, allocation,
	// period). Re-running a batch refreshes rows instead of duplicating.
	Upsert(ctx context.Context, row *Payroll) error
	FindByPeriod(ctx context.Context, payPeriod time.Time) ([]Payroll, error)
	FindByEmploymentAndPeriod(ctx context.Context, employmentID uuid.UUID, payPeriod time.Time) ([]Payroll, error)
	// SumThirteenMonthAccrued totals the accruals recorded for an
	// allocation in the fiscal year up to (excluding) the pay period.
	SumThirteenMonthAccrued(ctx context.Context, allocationID uuid.UUID, payPeriod time.Time) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Upsert(ctx context.Context, row *Payroll) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "employment_id"},
				{Name: "allocation_id"},
				{Name: "pay_period"},
			},
			UpdateAll: true,
		}).
		Create(row).Error
}

func (r *repository) FindByPeriod(ctx context.Context, payPeriod time.Time) ([]Payroll, error) {
	var rows []Payroll
	err := r.db.WithContext(ctx).
		Where("pay_period = ?", payPeriod.Format("2006-01-02")).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByEmploymentAndPeriod(ctx context.Context, employmentID uuid.UUID, payPeriod time.Time) ([]Payroll, error) {
	var rows []Payroll
	err := r.db.WithContext(ctx).
		Where("employment_id = ?", employmentID).
		Where("pay_period = ?", payPeriod.Format("2006-01-02")).
		Find(&rows).Error
	return rows, err
}

func (r *repository) SumThirteenMonthAccrued(ctx context.Context, allocationID uuid.UUID, payPeriod time.Time) (decimal.Decimal, error) {
	fiscalYearStart := time.Date(payPeriod.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)

	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&Payroll{}).
		Select("SUM(thirteen_month_accrual)").
		Where("allocation_id = ?", allocationID).
		Where("pay_period >= ?", fiscalYearStart.Format("2006-01-02")).
		Where("pay_period < ?", payPeriod.Format("2006-01-02")).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
