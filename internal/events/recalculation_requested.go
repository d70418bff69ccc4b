package events

import "time"

const RecalculationRequestedTopic = "attend.recalculation.requested.v1"

type RecalculationRequestedEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id,omitempty"`
	BatchID     string    `json:"batch_id"`
	CompanyID   string    `json:"company_id"`
	RequestedBy string    `json:"requested_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}
