package recalcerrors

import (
	"net/http"

	"go-attend/internal/shared/apperror"
)

var (
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrRangeTooLarge = apperror.New(
		apperror.CodeInvalidInput,
		"recalculation range exceeds 92 days",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeFilter = apperror.New(
		apperror.CodeInvalidInput,
		"employee_ids contains an invalid id",
		http.StatusBadRequest,
	)
	ErrBatchNotFound = apperror.New(
		apperror.CodeNotFound,
		"calculation batch not found",
		http.StatusNotFound,
	)
	ErrPollTimeout = apperror.New(
		apperror.CodeTimeout,
		"calculation batch did not reach a terminal status in time",
		http.StatusGatewayTimeout,
	)
)
