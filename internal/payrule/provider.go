package payrule

import (
	"context"
	"time"

	payruleerrors "go-payroll/internal/payrule/errors"

	"go.uber.org/zap"
)

//go:generate mockgen -source=provider.go -destination=mock/provider_mock.go -package=mock
type Provider interface {
	ForPeriod(ctx context.Context, payPeriod time.Time) (RuleSet, error)
}

type provider struct {
	repo   Repository
	logger *zap.Logger
}

func NewProvider(repo Repository, logger ...*zap.Logger) Provider {
	l := zap.L().Named("payrule.provider")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payrule.provider")
	}
	return &provider{repo: repo, logger: l}
}

func (p *provider) ForPeriod(ctx context.Context, payPeriod time.Time) (RuleSet, error) {
	year := payPeriod.Year()

	brackets, err := p.repo.FindBracketsByYear(ctx, year)
	if err != nil {
		return RuleSet{}, err
	}
	if len(brackets) == 0 {
		p.logger.Warn("no tax brackets configured", zap.Int("year", year))
		return RuleSet{}, payruleerrors.MissingTaxBrackets(year)
	}

	settings, err := p.repo.FindActiveSettings(ctx, payPeriod)
	if err != nil {
		return RuleSet{}, err
	}

	for _, key := range requiredKeys() {
		if _, ok := settings[key]; !ok {
			p.logger.Warn("benefit setting missing",
				zap.String("key", key),
				zap.String("pay_period", payPeriod.Format("2006-01-02")),
			)
			return RuleSet{}, payruleerrors.MissingBenefitSetting(key)
		}
	}

	rs := RuleSet{
		Year:     year,
		Brackets: brackets,

		SocialSecurityRate: settings[KeySocialSecurityRate],
		SocialSecurityCap:  settings[KeySocialSecurityCap],

		HealthWelfareThresholdHigh: settings[KeyHealthWelfareThresholdHigh],
		HealthWelfareThresholdMed:  settings[KeyHealthWelfareThresholdMed],
		HealthWelfareAmountHigh:    settings[KeyHealthWelfareAmountHigh],
		HealthWelfareAmountMed:     settings[KeyHealthWelfareAmountMed],
		HealthWelfareAmountLow:     settings[KeyHealthWelfareAmountLow],

		ProvidentFundRate: settings[KeyProvidentFundRate],
		SavingFundRate:    settings[KeySavingFundRate],
	}

	if err := rs.Validate(); err != nil {
		return RuleSet{}, err
	}

	return rs, nil
}
