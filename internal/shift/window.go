package shift

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	shifterrors "go-attend/internal/shift/errors"
)

const minutesPerDay = 24 * 60

// WindowRules holds the punch-window offsets and grace tolerances of one
// time period, all expressed as non-negative minute counts.
type WindowRules struct {
	CheckInStartOffset     int `json:"check_in_start_offset"`
	CheckInEndOffset       int `json:"check_in_end_offset"`
	CheckOutStartOffset    int `json:"check_out_start_offset"`
	CheckOutEndOffset      int `json:"check_out_end_offset"`
	LateGraceMinutes       int `json:"late_grace_minutes"`
	EarlyLeaveGraceMinutes int `json:"early_leave_grace_minutes"`
}

// SessionSpec is the calculation form of a TimePeriod: nominal clock-in/out
// as minutes from midnight plus window rules. Specs are snapshotted onto
// daily records so later period edits do not rewrite history.
//
// EndMin numerically smaller than StartMin denotes an overnight period whose
// clock-out falls on the day after the work date.
type SessionSpec struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	StartMin int         `json:"start_min"`
	EndMin   int         `json:"end_min"`
	Rules    WindowRules `json:"rules"`
}

// ParseClock converts "HH:mm" to minutes from midnight.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, shifterrors.ErrInvalidClockFormat
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, shifterrors.ErrInvalidClockFormat
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, shifterrors.ErrInvalidClockFormat
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, shifterrors.ErrInvalidClockFormat
	}
	return h*60 + m, nil
}

func FormatClock(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// Midnight normalizes t to 00:00 of its calendar day, keeping the location.
// All window arithmetic is anchored here so overnight periods cannot pick up
// midnight-wrap bugs from bare time-of-day comparisons.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (sp SessionSpec) Validate() error {
	if sp.StartMin < 0 || sp.StartMin >= minutesPerDay || sp.EndMin < 0 || sp.EndMin >= minutesPerDay {
		return shifterrors.ErrInvalidClockFormat
	}
	if sp.StartMin == sp.EndMin {
		return shifterrors.ErrZeroDurationPeriod
	}
	r := sp.Rules
	if r.CheckInStartOffset < 0 || r.CheckInEndOffset < 0 ||
		r.CheckOutStartOffset < 0 || r.CheckOutEndOffset < 0 ||
		r.LateGraceMinutes < 0 || r.EarlyLeaveGraceMinutes < 0 {
		return shifterrors.ErrNegativeWindowOffset
	}
	return nil
}

func (sp SessionSpec) Overnight() bool {
	return sp.EndMin < sp.StartMin
}

// NominalIn is the scheduled clock-in instant on the given work date.
func (sp SessionSpec) NominalIn(workDate time.Time) time.Time {
	return Midnight(workDate).Add(time.Duration(sp.StartMin) * time.Minute)
}

// NominalOut is the scheduled clock-out instant; for overnight periods it
// lands on workDate+1.
func (sp SessionSpec) NominalOut(workDate time.Time) time.Time {
	endMin := sp.EndMin
	if sp.Overnight() {
		endMin += minutesPerDay
	}
	return Midnight(workDate).Add(time.Duration(endMin) * time.Minute)
}

// CheckInWindow is the inclusive interval in which a check-in punch is
// accepted. With zero offsets it collapses to the nominal instant.
func (sp SessionSpec) CheckInWindow(workDate time.Time) (time.Time, time.Time) {
	in := sp.NominalIn(workDate)
	return in.Add(-time.Duration(sp.Rules.CheckInStartOffset) * time.Minute),
		in.Add(time.Duration(sp.Rules.CheckInEndOffset) * time.Minute)
}

// CheckOutWindow is the inclusive interval in which a check-out punch is
// accepted, anchored to the same work date as the check-in window.
func (sp SessionSpec) CheckOutWindow(workDate time.Time) (time.Time, time.Time) {
	out := sp.NominalOut(workDate)
	return out.Add(-time.Duration(sp.Rules.CheckOutStartOffset) * time.Minute),
		out.Add(time.Duration(sp.Rules.CheckOutEndOffset) * time.Minute)
}

// DurationMinutes is the scheduled length of the period.
func (sp SessionSpec) DurationMinutes() int {
	if sp.Overnight() {
		return sp.EndMin + minutesPerDay - sp.StartMin
	}
	return sp.EndMin - sp.StartMin
}

// InWindow reports whether t falls inside [start, end]. Both boundaries are
// inclusive.
func InWindow(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// LateMinutes classifies a matched check-in punch. A punch at or before the
// nominal instant, or within the late grace, is on time (returns 0). Grace
// only affects classification, never window matching.
func (sp SessionSpec) LateMinutes(workDate time.Time, punch time.Time) int {
	late := int(punch.Sub(sp.NominalIn(workDate)) / time.Minute)
	if late <= sp.Rules.LateGraceMinutes {
		return 0
	}
	return late
}

// EarlyLeaveMinutes is the symmetric classification for a matched check-out.
func (sp SessionSpec) EarlyLeaveMinutes(workDate time.Time, punch time.Time) int {
	early := int(sp.NominalOut(workDate).Sub(punch) / time.Minute)
	if early <= sp.Rules.EarlyLeaveGraceMinutes {
		return 0
	}
	return early
}
