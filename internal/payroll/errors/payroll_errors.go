package payrollerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrInvalidPayPeriod = apperror.New(
		apperror.CodeInvalidInput,
		"invalid pay period, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidEmploymentID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employment id",
		http.StatusBadRequest,
	)
	ErrInvalidDepartmentID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid department id",
		http.StatusBadRequest,
	)
	ErrInvalidGrantID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid grant id",
		http.StatusBadRequest,
	)
	ErrInvalidFTE = apperror.New(
		apperror.CodeInvalidState,
		"allocation FTE must be between 0 and 1",
		http.StatusUnprocessableEntity,
	)
	ErrEmploymentNotFound = apperror.New(
		apperror.CodeNotFound,
		"employment not found",
		http.StatusNotFound,
	)
	ErrPayrollNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll not found",
		http.StatusNotFound,
	)
)
