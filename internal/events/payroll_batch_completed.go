package events

import "time"

const PayrollBatchCompletedTopic = "hr.payroll.batch.completed.v1"

type PayrollBatchCompletedEvent struct {
	EventType  string    `json:"event_type"`
	BatchID    string    `json:"batch_id"`
	PayPeriod  string    `json:"pay_period"`
	Status     string    `json:"status"`
	Total      int       `json:"total"`
	Successful int       `json:"successful"`
	Failed     int       `json:"failed"`
	OccurredAt time.Time `json:"occurred_at"`
}
