package leave

import (
	"context"
	"time"

	"go-attend/internal/attendance"
)

// SpanSource adapts the leave repository to attendance derivation. It
// exposes approved leaves as half-open [start, end) instants; the stored
// end date is an inclusive calendar day, so one day is added.
type SpanSource struct {
	repo Repository
}

func NewSpanSource(repo Repository) *SpanSource {
	return &SpanSource{repo: repo}
}

func (s *SpanSource) ApprovedSpans(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]attendance.LeaveSpan, error) {
	rows, err := s.repo.FindApprovedOverlapping(ctx, companyID, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	spans := make([]attendance.LeaveSpan, len(rows))
	for i, l := range rows {
		spans[i] = attendance.LeaveSpan{
			Type:  l.LeaveType,
			Start: l.StartDate,
			End:   l.EndDate.AddDate(0, 0, 1),
		}
	}
	return spans, nil
}
