package probationerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrInvalidEmploymentID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employment id",
		http.StatusBadRequest,
	)
	ErrInvalidEndDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid probation end date",
		http.StatusBadRequest,
	)
	ErrProbationNotFound = apperror.New(
		apperror.CodeNotFound,
		"no active probation record for this employment",
		http.StatusNotFound,
	)
	ErrProbationClosed = apperror.New(
		apperror.CodeInvalidState,
		"probation has already been decided",
		http.StatusConflict,
	)
)
