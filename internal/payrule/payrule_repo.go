package payrule

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

//go:generate mockgen -source=payrule_repo.go -destination=mock/payrule_repo_mock.go -package=mock
type Repository interface {
	FindBracketsByYear(ctx context.Context, year int) ([]TaxBracket, error)
	FindActiveSettings(ctx context.Context, onDate time.Time) (map[string]decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindBracketsByYear(ctx context.Context, year int) ([]TaxBracket, error) {
	var brackets []TaxBracket
	err := r.db.WithContext(ctx).
		Where("effective_year = ?", year).
		Order("bracket_order ASC").
		Find(&brackets).Error
	return brackets, err
}

func (r *repository) FindActiveSettings(ctx context.Context, onDate time.Time) (map[string]decimal.Decimal, error) {
	// Latest active row per key effective on or before the pay period
	query := `
SELECT DISTINCT ON (setting_key)
	setting_key,
	setting_value
FROM benefit_settings
WHERE is_active = true
	AND effective_date <= ?
ORDER BY setting_key, effective_date DESC, created_at DESC
`

	var rows []BenefitSetting
	if err := r.db.WithContext(ctx).Raw(query, onDate).Scan(&rows).Error; err != nil {
		return nil, err
	}

	settings := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		settings[row.SettingKey] = row.SettingValue
	}

	return settings, nil
}
