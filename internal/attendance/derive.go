package attendance

import (
	"time"

	attendanceerrors "go-attend/internal/attendance/errors"
	"go-attend/internal/shift"
)

// PunchInput is the derivation view of a punch. RecordedAt orders competing
// corrections: when two corrections target the same session and direction,
// the one entered last wins.
type PunchInput struct {
	ClockTime  time.Time
	Direction  string
	Source     string
	RecordedAt time.Time
}

// LeaveSpan is an approved absence interval. End is exclusive.
type LeaveSpan struct {
	Type  string // leave.TypeAnnual etc.; BUSINESS_TRIP gets its own status
	Start time.Time
	End   time.Time
}

type SessionOutcome struct {
	SessionID         string     `json:"session_id"`
	Status            string     `json:"status"`
	CheckIn           *time.Time `json:"check_in,omitempty"`
	CheckOut          *time.Time `json:"check_out,omitempty"`
	LateMinutes       int        `json:"late_minutes"`
	EarlyLeaveMinutes int        `json:"early_leave_minutes"`
	AbsentMinutes     int        `json:"absent_minutes"`
	WorkMinutes       int        `json:"work_minutes"`
	CoveredBy         string     `json:"covered_by,omitempty"`
}

type Derivation struct {
	Status            string
	LateMinutes       int
	EarlyLeaveMinutes int
	AbsentMinutes     int
	LeaveMinutes      int
	WorkMinutes       int
	Sessions          []SessionOutcome
}

// Derive recomputes a daily record's status and minute tallies from scratch.
// It is a pure function of its inputs: callers re-run it on every punch or
// leave change rather than patching previous results incrementally.
//
// Rules, per session:
//  1. an approved leave covering the whole session excludes it from absence
//     and lateness accounting;
//  2. the authoritative punch per direction is the earliest one inside the
//     inclusive window, except that correction punches supersede device
//     punches and the latest-entered correction supersedes earlier ones;
//  3. a missing check-in or check-out makes the whole session count as
//     absent;
//  4. grace only reclassifies a matched punch, it never widens the window.
//
// The aggregate status is the worst case across sessions
// (ABSENT > LATE / EARLY_LEAVE > NORMAL). A record that is both late and
// early-leaving reports LATE; both tallies are still kept.
func Derive(workDate time.Time, specs []shift.SessionSpec, punches []PunchInput, leaves []LeaveSpan) (Derivation, error) {
	if len(specs) == 0 {
		return Derivation{Status: StatusUncalculated}, attendanceerrors.ErrNoSessionsConfigured
	}
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return Derivation{Status: StatusUncalculated}, attendanceerrors.ErrNoSessionsConfigured
		}
	}

	d := Derivation{Sessions: make([]SessionOutcome, 0, len(specs))}
	covered := 0
	businessTripOnly := true

	for _, spec := range specs {
		nominalIn := spec.NominalIn(workDate)
		nominalOut := spec.NominalOut(workDate)

		if span, ok := coveringSpan(leaves, nominalIn, nominalOut); ok {
			d.LeaveMinutes += spec.DurationMinutes()
			d.Sessions = append(d.Sessions, SessionOutcome{
				SessionID: spec.ID,
				Status:    leaveStatus(span.Type),
				CoveredBy: span.Type,
			})
			covered++
			if leaveStatus(span.Type) != StatusBusinessTrip {
				businessTripOnly = false
			}
			continue
		}

		outcome := deriveSession(workDate, spec, punches)
		d.LateMinutes += outcome.LateMinutes
		d.EarlyLeaveMinutes += outcome.EarlyLeaveMinutes
		d.AbsentMinutes += outcome.AbsentMinutes
		d.WorkMinutes += outcome.WorkMinutes
		d.Sessions = append(d.Sessions, outcome)
	}

	d.Status = aggregateStatus(d, covered, len(specs), businessTripOnly)
	return d, nil
}

func deriveSession(workDate time.Time, spec shift.SessionSpec, punches []PunchInput) SessionOutcome {
	outcome := SessionOutcome{SessionID: spec.ID}

	ciStart, ciEnd := spec.CheckInWindow(workDate)
	coStart, coEnd := spec.CheckOutWindow(workDate)

	in := matchPunch(punches, DirectionCheckIn, ciStart, ciEnd)
	out := matchPunch(punches, DirectionCheckOut, coStart, coEnd)

	if in == nil || out == nil {
		// A half-attended session still counts absent for its full span.
		outcome.Status = StatusAbsent
		outcome.AbsentMinutes = spec.DurationMinutes()
		if in != nil {
			t := in.ClockTime
			outcome.CheckIn = &t
		}
		if out != nil {
			t := out.ClockTime
			outcome.CheckOut = &t
		}
		return outcome
	}

	inTime, outTime := in.ClockTime, out.ClockTime
	outcome.CheckIn = &inTime
	outcome.CheckOut = &outTime
	outcome.LateMinutes = spec.LateMinutes(workDate, inTime)
	outcome.EarlyLeaveMinutes = spec.EarlyLeaveMinutes(workDate, outTime)

	// Arriving inside the early check-in window is not extra work time:
	// worked minutes run from the later of punch-in and nominal start.
	effectiveIn := inTime
	if nominalIn := spec.NominalIn(workDate); effectiveIn.Before(nominalIn) {
		effectiveIn = nominalIn
	}
	if work := int(outTime.Sub(effectiveIn) / time.Minute); work > 0 {
		outcome.WorkMinutes = work
	}

	switch {
	case outcome.LateMinutes > 0:
		outcome.Status = StatusLate
	case outcome.EarlyLeaveMinutes > 0:
		outcome.Status = StatusEarlyLeave
	default:
		outcome.Status = StatusNormal
	}
	return outcome
}

// matchPunch picks the authoritative punch for one direction and window.
// Correction punches beat device punches, and the latest-entered correction
// beats earlier ones; among device punches the first inside the window wins.
func matchPunch(punches []PunchInput, direction string, start, end time.Time) *PunchInput {
	var correction *PunchInput
	var device *PunchInput

	for i := range punches {
		p := &punches[i]
		if p.Direction != direction || !shift.InWindow(p.ClockTime, start, end) {
			continue
		}
		if p.Source == SourceCorrection {
			if correction == nil || p.RecordedAt.After(correction.RecordedAt) {
				correction = p
			}
			continue
		}
		if device == nil || p.ClockTime.Before(device.ClockTime) {
			device = p
		}
	}

	if correction != nil {
		return correction
	}
	return device
}

func coveringSpan(leaves []LeaveSpan, start, end time.Time) (LeaveSpan, bool) {
	for _, span := range leaves {
		if !span.Start.After(start) && !span.End.Before(end) {
			return span, true
		}
	}
	return LeaveSpan{}, false
}

func leaveStatus(leaveType string) string {
	if leaveType == StatusBusinessTrip {
		return StatusBusinessTrip
	}
	return StatusLeave
}

func aggregateStatus(d Derivation, covered, total int, businessTripOnly bool) string {
	if covered == total {
		if businessTripOnly {
			return StatusBusinessTrip
		}
		return StatusLeave
	}

	if d.AbsentMinutes > 0 {
		return StatusAbsent
	}
	if d.LateMinutes > 0 {
		return StatusLate
	}
	if d.EarlyLeaveMinutes > 0 {
		return StatusEarlyLeave
	}
	return StatusNormal
}
