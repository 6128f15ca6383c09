package payrollbatcherrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrInvalidBatchID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid batch id",
		http.StatusBadRequest,
	)
	ErrBatchNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll batch not found",
		http.StatusNotFound,
	)
	ErrNoEmploymentsMatched = apperror.New(
		apperror.CodeInvalidInput,
		"no employments match the given filters",
		http.StatusBadRequest,
	)
	ErrBatchAlreadyTerminal = apperror.New(
		apperror.CodeInvalidState,
		"batch has already finished",
		http.StatusConflict,
	)
)
