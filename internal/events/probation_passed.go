package events

import "time"

const ProbationPassedTopic = "hr.employment.probation.passed.v1"

type ProbationPassedEvent struct {
	EventType    string    `json:"event_type"`
	EmploymentID string    `json:"employment_id"`
	EmployeeID   string    `json:"employee_id"`
	PassedOn     string    `json:"passed_on"` // YYYY-MM-DD
	OccurredAt   time.Time `json:"occurred_at"`
}
