package shift

import (
	"testing"
	"time"

	shifterrors "go-attend/internal/shift/errors"

	"github.com/stretchr/testify/assert"
)

var workDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func clockAt(day time.Time, h, m int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func daySpec() SessionSpec {
	return SessionSpec{
		ID:       "day",
		Name:     "Day",
		StartMin: 9 * 60,
		EndMin:   18 * 60,
		Rules: WindowRules{
			CheckInStartOffset:     60,
			CheckInEndOffset:       60,
			CheckOutStartOffset:    60,
			CheckOutEndOffset:      60,
			LateGraceMinutes:       10,
			EarlyLeaveGraceMinutes: 10,
		},
	}
}

func nightSpec() SessionSpec {
	return SessionSpec{
		ID:       "night",
		Name:     "Night",
		StartMin: 22 * 60,
		EndMin:   6 * 60,
		Rules: WindowRules{
			CheckInStartOffset:  60,
			CheckInEndOffset:    60,
			CheckOutStartOffset: 60,
			CheckOutEndOffset:   120,
		},
	}
}

func TestParseClock(t *testing.T) {
	min, err := ParseClock("09:30")
	assert.NoError(t, err)
	assert.Equal(t, 570, min)

	min, err = ParseClock("00:00")
	assert.NoError(t, err)
	assert.Equal(t, 0, min)

	for _, bad := range []string{"9:30", "0930", "24:00", "09:60", "ab:cd", ""} {
		_, err := ParseClock(bad)
		assert.ErrorIs(t, err, shifterrors.ErrInvalidClockFormat, bad)
	}
}

func TestFormatClockRoundTrip(t *testing.T) {
	assert.Equal(t, "07:05", FormatClock(7*60+5))
	min, err := ParseClock(FormatClock(22 * 60))
	assert.NoError(t, err)
	assert.Equal(t, 22*60, min)
}

func TestSpecValidate(t *testing.T) {
	assert.NoError(t, daySpec().Validate())

	sp := daySpec()
	sp.Rules.LateGraceMinutes = -1
	assert.ErrorIs(t, sp.Validate(), shifterrors.ErrNegativeWindowOffset)

	sp = daySpec()
	sp.EndMin = sp.StartMin
	assert.ErrorIs(t, sp.Validate(), shifterrors.ErrZeroDurationPeriod)

	sp = daySpec()
	sp.StartMin = minutesPerDay
	assert.ErrorIs(t, sp.Validate(), shifterrors.ErrInvalidClockFormat)
}

func TestCheckInWindowBoundariesInclusive(t *testing.T) {
	sp := daySpec() // nominal 09:00, window 08:00-10:00
	start, end := sp.CheckInWindow(workDate)

	assert.Equal(t, clockAt(workDate, 8, 0), start)
	assert.Equal(t, clockAt(workDate, 10, 0), end)

	assert.True(t, InWindow(start, start, end))
	assert.True(t, InWindow(end, start, end))
	assert.False(t, InWindow(start.Add(-time.Minute), start, end))
	assert.False(t, InWindow(end.Add(time.Minute), start, end))
}

func TestZeroOffsetsCollapseToNominalInstant(t *testing.T) {
	sp := daySpec()
	sp.Rules.CheckInStartOffset = 0
	sp.Rules.CheckInEndOffset = 0

	start, end := sp.CheckInWindow(workDate)

	assert.Equal(t, sp.NominalIn(workDate), start)
	assert.Equal(t, start, end)
	assert.True(t, InWindow(start, start, end))
	assert.False(t, InWindow(start.Add(time.Minute), start, end))
}

func TestOvernightCheckOutAnchoredToWorkDate(t *testing.T) {
	sp := nightSpec() // 22:00-06:00
	assert.True(t, sp.Overnight())
	assert.Equal(t, 480, sp.DurationMinutes())

	next := workDate.AddDate(0, 0, 1)
	assert.Equal(t, clockAt(next, 6, 0), sp.NominalOut(workDate))

	// Check-out window falls on workDate+1 but still belongs to workDate.
	start, end := sp.CheckOutWindow(workDate)
	assert.Equal(t, clockAt(next, 5, 0), start)
	assert.Equal(t, clockAt(next, 8, 0), end)
	assert.True(t, InWindow(clockAt(next, 6, 10), start, end))
}

func TestLateMinutesGraceIsClassificationOnly(t *testing.T) {
	sp := daySpec() // grace 10

	assert.Equal(t, 0, sp.LateMinutes(workDate, clockAt(workDate, 8, 45)))
	assert.Equal(t, 0, sp.LateMinutes(workDate, clockAt(workDate, 9, 8)))
	assert.Equal(t, 0, sp.LateMinutes(workDate, clockAt(workDate, 9, 10)))
	assert.Equal(t, 15, sp.LateMinutes(workDate, clockAt(workDate, 9, 15)))

	// Zero grace means any deviation counts.
	sp.Rules.LateGraceMinutes = 0
	assert.Equal(t, 1, sp.LateMinutes(workDate, clockAt(workDate, 9, 1)))
}

func TestLateMinutesGraceMonotonic(t *testing.T) {
	punch := clockAt(workDate, 9, 15)
	var prev int
	for grace := 0; grace <= 30; grace++ {
		sp := daySpec()
		sp.Rules.LateGraceMinutes = grace
		late := sp.LateMinutes(workDate, punch)
		if grace > 0 {
			assert.LessOrEqual(t, late, prev)
		}
		prev = late
	}
	sp := daySpec()
	sp.Rules.LateGraceMinutes = 30
	assert.Equal(t, 0, sp.LateMinutes(workDate, punch))
}

func TestEarlyLeaveMinutes(t *testing.T) {
	sp := daySpec() // nominal out 18:00, grace 10

	assert.Equal(t, 0, sp.EarlyLeaveMinutes(workDate, clockAt(workDate, 18, 5)))
	assert.Equal(t, 0, sp.EarlyLeaveMinutes(workDate, clockAt(workDate, 17, 50)))
	assert.Equal(t, 30, sp.EarlyLeaveMinutes(workDate, clockAt(workDate, 17, 30)))
}
