package payrule

import (
	"errors"

	payruleerrors "go-payroll/internal/payrule/errors"
	"go-payroll/internal/shared/apperror"

	"github.com/shopspring/decimal"
)

// RuleSet is the full rate/threshold configuration for one pay period.
// It is a plain value so the calculator stays a pure function of its inputs.
type RuleSet struct {
	Year     int
	Brackets []TaxBracket

	SocialSecurityRate decimal.Decimal
	SocialSecurityCap  decimal.Decimal

	HealthWelfareThresholdHigh decimal.Decimal
	HealthWelfareThresholdMed  decimal.Decimal
	HealthWelfareAmountHigh    decimal.Decimal
	HealthWelfareAmountMed     decimal.Decimal
	HealthWelfareAmountLow     decimal.Decimal

	ProvidentFundRate decimal.Decimal
	SavingFundRate    decimal.Decimal
}

// Validate checks the bracket invariant: ordered by BracketOrder,
// contiguous ranges, exactly one unbounded top bracket.
func (rs RuleSet) Validate() error {
	if len(rs.Brackets) == 0 {
		return payruleerrors.MissingTaxBrackets(rs.Year)
	}

	for i, b := range rs.Brackets {
		if i > 0 {
			prev := rs.Brackets[i-1]
			if b.BracketOrder <= prev.BracketOrder {
				return payruleerrors.ErrInvalidBrackets
			}
			if prev.MaxIncome == nil || !prev.MaxIncome.Equal(b.MinIncome) {
				return payruleerrors.ErrInvalidBrackets
			}
		}
		if i == len(rs.Brackets)-1 && b.MaxIncome != nil {
			return payruleerrors.ErrInvalidBrackets
		}
	}

	return nil
}

// ProgressiveTax computes marginal tax over the ordered brackets. Each
// bracket contributes (min(income, max) - min) * rate, clamped at zero.
// No rounding here; callers round once at persistence.
func (rs RuleSet) ProgressiveTax(income decimal.Decimal) decimal.Decimal {
	tax := decimal.Zero

	for _, b := range rs.Brackets {
		upper := income
		if b.MaxIncome != nil && b.MaxIncome.LessThan(income) {
			upper = *b.MaxIncome
		}

		taxable := upper.Sub(b.MinIncome)
		if taxable.IsNegative() {
			continue
		}

		tax = tax.Add(taxable.Mul(b.Rate))
	}

	return tax
}

// SocialSecurity returns the employee-side contribution on the
// FTE-adjusted gross, capped. The employer side matches it.
func (rs RuleSet) SocialSecurity(grossByFTE decimal.Decimal) decimal.Decimal {
	base := grossByFTE
	if rs.SocialSecurityCap.IsPositive() && base.GreaterThan(rs.SocialSecurityCap) {
		base = rs.SocialSecurityCap
	}
	return base.Mul(rs.SocialSecurityRate)
}

// HealthWelfare selects the flat tier amount for the FTE-adjusted gross.
// Three discrete tiers, not a formula.
func (rs RuleSet) HealthWelfare(grossByFTE decimal.Decimal) decimal.Decimal {
	switch {
	case grossByFTE.GreaterThanOrEqual(rs.HealthWelfareThresholdHigh):
		return rs.HealthWelfareAmountHigh
	case grossByFTE.GreaterThanOrEqual(rs.HealthWelfareThresholdMed):
		return rs.HealthWelfareAmountMed
	default:
		return rs.HealthWelfareAmountLow
	}
}

// IsConfigMissing reports whether err is a missing rules configuration
// error. Such errors abort a single payroll line, never the whole batch.
func IsConfigMissing(err error) bool {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Code == apperror.CodeConfigMissing
	}
	return false
}
