package payrollbatch

import (
	"go-payroll/internal/payroll"
)

type CreateBatchRequest struct {
	PayPeriod string                `json:"pay_period" binding:"required"`
	Filters   payroll.FilterRequest `json:"filters"`
}

type CreateBatchResponse struct {
	BatchID   string `json:"batch_id"`
	PayPeriod string `json:"pay_period"`
	Total     int    `json:"total"`
	Status    string `json:"status"`
}

type StatusResponse struct {
	BatchID       string  `json:"batch_id"`
	PayPeriod     string  `json:"pay_period"`
	Status        string  `json:"status"`
	Total         int     `json:"total"`
	Processed     int     `json:"processed"`
	Successful    int     `json:"successful"`
	Failed        int     `json:"failed"`
	FailureReason *string `json:"failure_reason,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

type ErrorResponse struct {
	EmploymentID string  `json:"employment_id"`
	StaffID      string  `json:"staff_id"`
	EmployeeName string  `json:"employee_name"`
	AllocationID *string `json:"allocation_id,omitempty"`
	Message      string  `json:"message"`
}

func mapBatchToStatus(b *Batch) StatusResponse {
	return StatusResponse{
		BatchID:       b.ID,
		PayPeriod:     b.PayPeriod.Format("2006-01-02"),
		Status:        b.Status,
		Total:         b.TotalCount,
		Processed:     b.ProcessedCount,
		Successful:    b.SuccessfulCount,
		Failed:        b.FailedCount,
		FailureReason: b.FailureReason,
		CreatedAt:     b.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:     b.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func mapErrorToResponse(e BatchError) ErrorResponse {
	return ErrorResponse{
		EmploymentID: e.EmploymentID,
		StaffID:      e.StaffID,
		EmployeeName: e.EmployeeName,
		AllocationID: e.AllocationID,
		Message:      e.Message,
	}
}
