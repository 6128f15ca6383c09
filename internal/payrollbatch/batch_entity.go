package payrollbatch

import "time"

// Batch state machine: pending → processing → one of the terminal states.
const (
	StatusPending             = "pending"
	StatusProcessing          = "processing"
	StatusCompleted           = "completed"
	StatusCompletedWithErrors = "completed_with_errors"
	StatusFailed              = "failed"
)

func isTerminal(status string) bool {
	switch status {
	case StatusCompleted, StatusCompletedWithErrors, StatusFailed:
		return true
	}
	return false
}

// Batch is one bulk payroll run. The row is the single mutable shared
// resource of a run; counters only move through atomic SQL increments.
type Batch struct {
	ID         string
	PayPeriod  time.Time
	FilterJSON []byte

	TotalCount      int
	ProcessedCount  int
	SuccessfulCount int
	FailedCount     int

	Status        string
	FailureReason *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BatchError is one structured per-allocation (or per-employment)
// failure. The batch keeps going; these are for the error report.
type BatchError struct {
	ID           string
	BatchID      string
	EmploymentID string
	StaffID      string
	EmployeeName string
	AllocationID *string
	Message      string
	CreatedAt    time.Time
}
