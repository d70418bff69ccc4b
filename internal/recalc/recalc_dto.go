package recalc

type TriggerRequest struct {
	StartDate   string   `json:"start_date" binding:"required"`
	EndDate     string   `json:"end_date" binding:"required"`
	EmployeeIDs []string `json:"employee_ids" binding:"omitempty,dive,uuid"`
}

type BatchResponse struct {
	ID             string   `json:"id"`
	BatchNo        string   `json:"batch_no"`
	Status         string   `json:"status"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	EmployeeIDs    []string `json:"employee_ids,omitempty"`
	TotalCount     int      `json:"total_count"`
	ProcessedCount int      `json:"processed_count"`
	FailedCount    int      `json:"failed_count"`
	Message        string   `json:"message,omitempty"`
	TriggeredBy    string   `json:"triggered_by"`
	CreatedAt      string   `json:"created_at"`
	StartedAt      *string  `json:"started_at,omitempty"`
	FinishedAt     *string  `json:"finished_at,omitempty"`
}
