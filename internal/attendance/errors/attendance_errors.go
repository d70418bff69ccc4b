package attendanceerrors

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
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidClockTime = apperror.New(
		apperror.CodeInvalidInput,
		"invalid clock time, expected ISO-8601 timestamp",
		http.StatusBadRequest,
	)
	ErrInvalidDirection = apperror.New(
		apperror.CodeInvalidInput,
		"punch direction must be CHECK_IN or CHECK_OUT",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrRecordNotFound = apperror.New(
		apperror.CodeNotFound,
		"daily record not found",
		http.StatusNotFound,
	)
	ErrNoSessionsConfigured = apperror.New(
		apperror.CodeConfiguration,
		"no usable session configuration for this record",
		http.StatusUnprocessableEntity,
	)
)
