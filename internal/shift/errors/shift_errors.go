package shifterrors

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
	ErrInvalidClockFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid clock time, expected HH:mm",
		http.StatusBadRequest,
	)
	ErrNegativeWindowOffset = apperror.New(
		apperror.CodeInvalidInput,
		"window offsets and grace minutes must be non-negative",
		http.StatusBadRequest,
	)
	ErrZeroDurationPeriod = apperror.New(
		apperror.CodeInvalidInput,
		"time period start and end must differ",
		http.StatusBadRequest,
	)
	ErrInvalidCycleDays = apperror.New(
		apperror.CodeInvalidInput,
		"cycle_days must be at least 1",
		http.StatusBadRequest,
	)
	ErrDayOutsideCycle = apperror.New(
		apperror.CodeInvalidInput,
		"day_of_cycle must be within [0, cycle_days)",
		http.StatusBadRequest,
	)
	ErrPeriodsOverlap = apperror.New(
		apperror.CodeConflict,
		"expanded punch windows overlap within one cycle day",
		http.StatusConflict,
	)
	ErrPeriodNotFound = apperror.New(
		apperror.CodeNotFound,
		"time period not found",
		http.StatusNotFound,
	)
	ErrShiftNotFound = apperror.New(
		apperror.CodeNotFound,
		"shift not found",
		http.StatusNotFound,
	)
	ErrShiftHasNoPeriods = apperror.New(
		apperror.CodeInvalidInput,
		"a shift needs at least one period",
		http.StatusBadRequest,
	)
	ErrNoShiftAssignment = apperror.New(
		apperror.CodeConfiguration,
		"employee has no shift assignment for this date",
		http.StatusUnprocessableEntity,
	)
	ErrMalformedPeriodConfig = apperror.New(
		apperror.CodeConfiguration,
		"time period configuration cannot produce punch windows",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidAnchorDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid anchor date, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
)
