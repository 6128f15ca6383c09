package probation

type ExtendRequest struct {
	EmploymentID string  `json:"employment_id" binding:"required"`
	NewEndDate   string  `json:"new_end_date" binding:"required"`
	Notes        *string `json:"notes"`
}

type RecordResponse struct {
	ID              string  `json:"id"`
	EmploymentID    string  `json:"employment_id"`
	EventType       string  `json:"event_type"`
	ExtensionNumber int     `json:"extension_number"`
	StartDate       string  `json:"start_date"`
	EndDate         *string `json:"end_date,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

func mapRecordToResponse(r ProbationRecord) RecordResponse {
	resp := RecordResponse{
		ID:              r.ID.String(),
		EmploymentID:    r.EmploymentID.String(),
		EventType:       r.EventType,
		ExtensionNumber: r.ExtensionNumber,
		StartDate:       r.StartDate.Format("2006-01-02"),
		Notes:           r.Notes,
	}
	if r.EndDate != nil {
		end := r.EndDate.Format("2006-01-02")
		resp.EndDate = &end
	}
	return resp
}
