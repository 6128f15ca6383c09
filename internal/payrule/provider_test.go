package payrule_test

import (
	"context"
	"testing"
	"time"

	"go-payroll/internal/payrule"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type fakeRuleRepository struct {
	findBracketsByYearFn func(ctx context.Context, year int) ([]payrule.TaxBracket, error)
	findActiveSettingsFn func(ctx context.Context, onDate time.Time) (map[string]decimal.Decimal, error)
}

func (f *fakeRuleRepository) FindBracketsByYear(ctx context.Context, year int) ([]payrule.TaxBracket, error) {
	if f.findBracketsByYearFn != nil {
		return f.findBracketsByYearFn(ctx, year)
	}
	return nil, nil
}

func (f *fakeRuleRepository) FindActiveSettings(ctx context.Context, onDate time.Time) (map[string]decimal.Decimal, error) {
	if f.findActiveSettingsFn != nil {
		return f.findActiveSettingsFn(ctx, onDate)
	}
	return nil, nil
}

func fullSettings() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		payrule.KeySocialSecurityRate:         dec("0.05"),
		payrule.KeySocialSecurityCap:          dec("15000"),
		payrule.KeyHealthWelfareThresholdHigh: dec("30000"),
		payrule.KeyHealthWelfareThresholdMed:  dec("15000"),
		payrule.KeyHealthWelfareAmountHigh:    dec("300"),
		payrule.KeyHealthWelfareAmountMed:     dec("200"),
		payrule.KeyHealthWelfareAmountLow:     dec("100"),
		payrule.KeyProvidentFundRate:          dec("0.03"),
		payrule.KeySavingFundRate:             dec("0.02"),
	}
}

func TestForPeriodBuildsRuleSet(t *testing.T) {
	repo := &fakeRuleRepository{
		findBracketsByYearFn: func(ctx context.Context, year int) ([]payrule.TaxBracket, error) {
			assert.Equal(t, 2026, year)
			return testRuleSet().Brackets, nil
		},
		findActiveSettingsFn: func(ctx context.Context, onDate time.Time) (map[string]decimal.Decimal, error) {
			return fullSettings(), nil
		},
	}

	provider := payrule.NewProvider(repo)
	rs, err := provider.ForPeriod(context.Background(), time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC))

	assert.NoError(t, err)
	assert.Equal(t, 2026, rs.Year)
	assert.Len(t, rs.Brackets, 3)
	assert.True(t, rs.SocialSecurityRate.Equal(dec("0.05")))
	assert.True(t, rs.HealthWelfareAmountLow.Equal(dec("100")))
}

func TestForPeriodMissingBracketsIsConfigMissing(t *testing.T) {
	repo := &fakeRuleRepository{
		findBracketsByYearFn: func(ctx context.Context, year int) ([]payrule.TaxBracket, error) {
			return nil, nil
		},
	}

	provider := payrule.NewProvider(repo)
	_, err := provider.ForPeriod(context.Background(), time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC))

	assert.Error(t, err)
	assert.True(t, payrule.IsConfigMissing(err))
}

func TestForPeriodMissingSettingIsConfigMissing(t *testing.T) {
	repo := &fakeRuleRepository{
		findBracketsByYearFn: func(ctx context.Context, year int) ([]payrule.TaxBracket, error) {
			return testRuleSet().Brackets, nil
		},
		findActiveSettingsFn: func(ctx context.Context, onDate time.Time) (map[string]decimal.Decimal, error) {
			settings := fullSettings()
			delete(settings, payrule.KeyProvidentFundRate)
			return settings, nil
		},
	}

	provider := payrule.NewProvider(repo)
	_, err := provider.ForPeriod(context.Background(), time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC))

	assert.Error(t, err)
	assert.True(t, payrule.IsConfigMissing(err))
	assert.Contains(t, err.Error(), payrule.KeyProvidentFundRate)
}
