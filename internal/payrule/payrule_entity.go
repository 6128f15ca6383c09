package payrule

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxBracket is one marginal income range for a fiscal year. Brackets for
// a year must be contiguous and ordered by BracketOrder; the top bracket
// has a null MaxIncome (unbounded).
type TaxBracket struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EffectiveYear int              `gorm:"not null;index:idx_tax_year_order,unique"`
	BracketOrder  int              `gorm:"not null;index:idx_tax_year_order,unique"`
	MinIncome     decimal.Decimal  `gorm:"type:decimal(14,2);not null"`
	MaxIncome     *decimal.Decimal `gorm:"type:decimal(14,2)"`
	Rate          decimal.Decimal  `gorm:"type:decimal(10,4);not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BenefitSetting is a keyed numeric setting with temporal validity.
// Multiple rows may exist per key over time; the provider picks the latest
// active one effective on or before the pay period.
type BenefitSetting struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SettingKey    string          `gorm:"type:varchar(60);not null;index"`
	SettingValue  decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	EffectiveDate time.Time       `gorm:"type:date;not null;index"`
	IsActive      bool            `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Setting keys the calculator depends on.
const (
	KeySocialSecurityRate         = "social_security_rate"
	KeySocialSecurityCap          = "social_security_cap"
	KeyHealthWelfareThresholdHigh = "health_welfare_threshold_high"
	KeyHealthWelfareThresholdMed  = "health_welfare_threshold_medium"
	KeyHealthWelfareAmountHigh    = "health_welfare_amount_high"
	KeyHealthWelfareAmountMed     = "health_welfare_amount_medium"
	KeyHealthWelfareAmountLow     = "health_welfare_amount_low"
	KeyProvidentFundRate          = "pvd_rate"
	KeySavingFundRate             = "saving_fund_rate"
)

func requiredKeys() []string {
	return []string{
		KeySocialSecurityRate,
		KeySocialSecurityCap,
		KeyHealthWelfareThresholdHigh,
		KeyHealthWelfareThresholdMed,
		KeyHealthWelfareAmountHigh,
		KeyHealthWelfareAmountMed,
		KeyHealthWelfareAmountLow,
		KeyProvidentFundRate,
		KeySavingFundRate,
	}
}
