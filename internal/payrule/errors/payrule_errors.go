package payruleerrors

import (
	"fmt"
	"net/http"

	"go-payroll/internal/shared/apperror"
)

func MissingTaxBrackets(year int) *apperror.AppError {
	return apperror.Wrap(
		fmt.Errorf("no tax brackets configured for year %d", year),
		apperror.CodeConfigMissing,
		"Tax brackets are not configured for the requested year",
		http.StatusUnprocessableEntity,
	)
}

func MissingBenefitSetting(key string) *apperror.AppError {
	return apperror.Wrap(
		fmt.Errorf("benefit setting %q has no active value", key),
		apperror.CodeConfigMissing,
		"A required benefit setting is not configured for the requested period",
		http.StatusUnprocessableEntity,
	)
}

var ErrInvalidBrackets = apperror.New(
	apperror.CodeInvalidState,
	"Configured tax brackets are not contiguous and ordered",
	http.StatusUnprocessableEntity,
)
