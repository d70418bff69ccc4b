package attendance

import (
	"testing"
	"time"

	attendanceerrors "go-attend/internal/attendance/errors"
	"go-attend/internal/shift"

	"github.com/stretchr/testify/assert"
)

var testDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(day time.Time, h, m int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func daySpec() shift.SessionSpec {
	return shift.SessionSpec{
		ID:       "day",
		Name:     "Day",
		StartMin: 9 * 60,
		EndMin:   18 * 60,
		Rules: shift.WindowRules{
			CheckInStartOffset:     120,
			CheckInEndOffset:       120,
			CheckOutStartOffset:    120,
			CheckOutEndOffset:      240,
			LateGraceMinutes:       10,
			EarlyLeaveGraceMinutes: 10,
		},
	}
}

func nightSpec() shift.SessionSpec {
	return shift.SessionSpec{
		ID:       "night",
		Name:     "Night",
		StartMin: 22 * 60,
		EndMin:   6 * 60,
		Rules: shift.WindowRules{
			CheckInStartOffset:     60,
			CheckInEndOffset:       60,
			CheckOutStartOffset:    60,
			CheckOutEndOffset:      120,
			LateGraceMinutes:       5,
			EarlyLeaveGraceMinutes: 5,
		},
	}
}

func devicePunch(t time.Time, direction string) PunchInput {
	return PunchInput{ClockTime: t, Direction: direction, Source: SourceDevice, RecordedAt: t}
}

func TestDeriveNormalDay(t *testing.T) {
	d, err := Derive(testDate, []shift.SessionSpec{daySpec()}, []PunchInput{
		devicePunch(at(testDate, 8, 55), DirectionCheckIn),
		devicePunch(at(testDate, 18, 3), DirectionCheckOut),
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, StatusNormal, d.Status)
	assert.Equal(t, 0, d.LateMinutes)
	assert.Equal(t, 0, d.EarlyLeaveMinutes)
	assert.Equal(t, 0, d.AbsentMinutes)
	// Early arrival does not count: work runs from 09:00 to 18:03.
	assert.Equal(t, 543, d.WorkMinutes)
}

func TestDeriveLateWithinGraceIsNormal(t *testing.T) {
	d, err := Derive(testDate, []shift.SessionSpec{daySpec()}, []PunchInput{
		devicePunch(at(testDate, 9, 10), DirectionCheckIn),
		devicePunch(at(testDate, 18, 0), DirectionCheckOut),
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, StatusNormal, d.Status)
	assert.Equal(t, 0, d.LateMinutes)
}

func TestDeriveLateBeyondGraceCountsFullMinutes(t *testing.T) {
	d, err := Derive(testDate, []shift.SessionSpec{daySpec()}, []PunchInput{
		devicePunch(at(testDate, 9, 15), DirectionCheckIn),
		devicePunch(at(testDate, 18, 0), DirectionCheckOut),
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, StatusLate, d.Status)
	// Grace classifies, it does not deduct: 15 minutes late, not 5.
	assert.Equal(t, 15, d.LateMinutes)
}

func TestDeriveEarlyLeave(t *testing.T) {
	d, err := Derive(testDate, []shift.SessionSpec{daySpec()}, []PunchInput{
		devicePunch(at(testDate, 9, 0), DirectionCheckIn),
		devicePunch(at(testDate, 17, 30), DirectionCheckOut),
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, StatusEarlyLeave, d.Status)
	assert.Equal(t, 30, d.EarlyLeaveMinutes)
	assert.Equal(t, 510, d.WorkMinutes)
}

func TestDeriveLateWinsOverEarlyLeave(t *testing.T) {
	d, err := Derive(testDate, []shift.SessionSpec{daySpec()}, []PunchInput{
		devicePunch(at(testDate, 9, 20), DirectionCheckIn),
		devicePunch(at(testDate, 17, 30), DirectionCheckOut),
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, StatusLate, d.Status)
	assert.Equal(t, 20, d.LateMinutes)
	assert.Equal(t, 30, d.EarlyLeaveMinutes)
}

func TestDeriveOvernightSession(t *testing.T) {
	next := testDate.AddDate(0, 0, 1)
	d, err := Derive(testDate, []shift.SessionSpec{nightSpec()}, []PunchInput{
		devicePunch(at(testDate, 21, 30), DirectionCheckIn),
		devicePunch(at(next, 6, 10), DirectionCheckOut),
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, StatusNormal, d.Status)
	// 22:00 through 06:10 next day; the half hour before start is unpaid.
	assert.Equal(t, 490, d.WorkMinutes)
}

func TestDeriveMissingCheckOutIsAbsent(t *testing.T) {
	d, err := Derive(testDate, []shift.SessionSpec{daySpec()}, []PunchInput{
		devicePunch(at(testDate, 9, 0), DirectionCheckIn),
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, StatusAbsent, d.Status)
	assert.Equal(t, 540, d.AbsentMinutes)
	assert.Equal(t, 0, d.WorkMinutes)
	if assert.Len(t, d.Sessions, 1) {
		assert.NotNil(t, d.Sessions[0].CheckIn)
		assert.Nil(t, d.Sessions[0].CheckOut)
	}
}

func TestDeriveNoPunchesIsAbsent(t *testing.T) {
	d, err := Derive(testDate, []shift.SessionSpec{daySpec()}, nil, nil)

	assert.NoError(t, err)
	assert.Equal(t, StatusAbsent, d.Status)
	assert.Equal(t, 540, d.AbsentMinutes)
}

func TestDerivePunchOutsideWindowIgnored(t *testing.T) {
	// 06:30 is before the 07:00 window opening; grace never widens windows.
	d, err := Derive(testDate, []shift.SessionSpec{daySpec()}, []PunchInput{
		devicePunch(at(testDate, 6, 30), DirectionCheckIn),
		devicePunch(at(testDate, 18, 0), DirectionCheckOut),
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, StatusAbsent, d.Status)
}

func TestDeriveWindowBoundariesInclusive(t *testing.T) {
	d, err := Derive(testDate, []shift.SessionSpec{daySpec()}, []PunchInput{
		devicePunch(at(testDate, 7, 0), DirectionCheckIn),   // earliest allowed
		devicePunch(at(testDate, 22, 0), DirectionCheckOut), // latest allowed
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, StatusNormal, d.Status)
}

func TestDeriveEarliestDevicePunchWins(t *testing.T) {
	d, err := Derive(testDate, []shift.SessionSpec{daySpec()}, []PunchInput{
		devicePunch(at(testDate, 9, 30), DirectionCheckIn),
		devicePunch(at(testDate, 8, 58), DirectionCheckIn),
		devicePunch(at(testDate, 18, 0), DirectionCheckOut),
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, StatusNormal, d.Status)
	assert.Equal(t, at(testDate, 8, 58), *d.Sessions[0].CheckIn)
}

func TestDeriveCorrectionSupersedesDevicePunch(t *testing.T) {
	d, err := Derive(testDate, []shift.SessionSpec{daySpec()}, []PunchInput{
		devicePunch(at(testDate, 9, 40), DirectionCheckIn),
		{
			ClockTime:  at(testDate, 9, 0),
			Direction:  DirectionCheckIn,
			Source:     SourceCorrection,
			RecordedAt: at(testDate, 11, 0),
		},
		devicePunch(at(testDate, 18, 0), DirectionCheckOut),
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, StatusNormal, d.Status)
	assert.Equal(t, at(testDate, 9, 0), *d.Sessions[0].CheckIn)
}

func TestDeriveLatestCorrectionWins(t *testing.T) {
	d, err := Derive(testDate, []shift.SessionSpec{daySpec()}, []PunchInput{
		{
			ClockTime:  at(testDate, 9, 30),
			Direction:  DirectionCheckIn,
			Source:     SourceCorrection,
			RecordedAt: at(testDate, 10, 0),
		},
		{
			ClockTime:  at(testDate, 9, 0),
			Direction:  DirectionCheckIn,
			Source:     SourceCorrection,
			RecordedAt: at(testDate, 12, 0),
		},
		devicePunch(at(testDate, 18, 0), DirectionCheckOut),
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, StatusNormal, d.Status)
	assert.Equal(t, at(testDate, 9, 0), *d.Sessions[0].CheckIn)
}

func TestDeriveFullDayLeave(t *testing.T) {
	d, err := Derive(testDate, []shift.SessionSpec{daySpec()}, nil, []LeaveSpan{
		{Type: "ANNUAL", Start: testDate, End: testDate.AddDate(0, 0, 1)},
	})

	assert.NoError(t, err)
	assert.Equal(t, StatusLeave, d.Status)
	assert.Equal(t, 540, d.LeaveMinutes)
	assert.Equal(t, 0, d.AbsentMinutes)
}

func TestDeriveBusinessTrip(t *testing.T) {
	d, err := Derive(testDate, []shift.SessionSpec{daySpec()}, nil, []LeaveSpan{
		{Type: StatusBusinessTrip, Start: testDate, End: testDate.AddDate(0, 0, 1)},
	})

	assert.NoError(t, err)
	assert.Equal(t, StatusBusinessTrip, d.Status)
	assert.Equal(t, 540, d.LeaveMinutes)
}

func TestDerivePartialLeaveDoesNotCoverSession(t *testing.T) {
	// Leave ends at 12:00, so the 09:00-18:00 session is not fully covered
	// and a missing punch pair still counts absent.
	d, err := Derive(testDate, []shift.SessionSpec{daySpec()}, nil, []LeaveSpan{
		{Type: "ANNUAL", Start: testDate, End: at(testDate, 12, 0)},
	})

	assert.NoError(t, err)
	assert.Equal(t, StatusAbsent, d.Status)
	assert.Equal(t, 0, d.LeaveMinutes)
}

func TestDeriveMultiSessionWorstCaseAggregation(t *testing.T) {
	morning := shift.SessionSpec{
		ID: "am", StartMin: 9 * 60, EndMin: 12 * 60,
		Rules: shift.WindowRules{CheckInStartOffset: 60, CheckInEndOffset: 60, CheckOutStartOffset: 30, CheckOutEndOffset: 30},
	}
	afternoon := shift.SessionSpec{
		ID: "pm", StartMin: 14 * 60, EndMin: 18 * 60,
		Rules: shift.WindowRules{CheckInStartOffset: 60, CheckInEndOffset: 60, CheckOutStartOffset: 30, CheckOutEndOffset: 60},
	}

	d, err := Derive(testDate, []shift.SessionSpec{morning, afternoon}, []PunchInput{
		devicePunch(at(testDate, 9, 0), DirectionCheckIn),
		devicePunch(at(testDate, 12, 0), DirectionCheckOut),
		// Afternoon has no punches at all.
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, StatusAbsent, d.Status)
	assert.Equal(t, 240, d.AbsentMinutes)
	assert.Equal(t, 180, d.WorkMinutes)
}

func TestDeriveIsDeterministic(t *testing.T) {
	punches := []PunchInput{
		devicePunch(at(testDate, 9, 20), DirectionCheckIn),
		devicePunch(at(testDate, 17, 40), DirectionCheckOut),
	}

	first, err := Derive(testDate, []shift.SessionSpec{daySpec()}, punches, nil)
	assert.NoError(t, err)
	second, err := Derive(testDate, []shift.SessionSpec{daySpec()}, punches, nil)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDeriveNoSpecs(t *testing.T) {
	d, err := Derive(testDate, nil, nil, nil)

	assert.ErrorIs(t, err, attendanceerrors.ErrNoSessionsConfigured)
	assert.Equal(t, StatusUncalculated, d.Status)
}

func TestDeriveInvalidSpec(t *testing.T) {
	bad := shift.SessionSpec{ID: "broken", StartMin: 600, EndMin: 600}

	_, err := Derive(testDate, []shift.SessionSpec{bad}, nil, nil)
	assert.ErrorIs(t, err, attendanceerrors.ErrNoSessionsConfigured)
}
