package events

import "time"

const PayrollBatchRequestedTopic = "hr.payroll.batch.requested.v1"

type PayrollBatchRequestedEvent struct {
	EventType     string    `json:"event_type"`
	BatchID       string    `json:"batch_id"`
	PayPeriod     string    `json:"pay_period"` // YYYY-MM-DD, month-end
	EmploymentIDs []string  `json:"employment_ids"`
	RequestedBy   string    `json:"requested_by"`
	OccurredAt    time.Time `json:"occurred_at"`
}
