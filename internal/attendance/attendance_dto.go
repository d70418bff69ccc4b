package attendance

type ListRecordsQuery struct {
	EmployeeID   string `form:"employee_id" binding:"omitempty,uuid"`
	DepartmentID string `form:"department_id" binding:"omitempty,uuid"`
	Status       string `form:"status" binding:"omitempty,oneof=UNCALCULATED NORMAL LATE EARLY_LEAVE ABSENT LEAVE BUSINESS_TRIP"`
	StartDate    string `form:"start_date" binding:"omitempty"`
	EndDate      string `form:"end_date" binding:"omitempty"`
	Page         int    `form:"page,default=1" binding:"omitempty,min=1"`
	Limit        int    `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
}

type RecordResponse struct {
	ID                string           `json:"id"`
	EmployeeID        string           `json:"employee_id"`
	EmployeeName      string           `json:"employee_name,omitempty"`
	WorkDate          string           `json:"work_date"`
	ShiftID           string           `json:"shift_id,omitempty"`
	Status            string           `json:"status"`
	LateMinutes       int              `json:"late_minutes"`
	EarlyLeaveMinutes int              `json:"early_leave_minutes"`
	AbsentMinutes     int              `json:"absent_minutes"`
	LeaveMinutes      int              `json:"leave_minutes"`
	WorkMinutes       int              `json:"work_minutes"`
	CalculatedAt      string           `json:"calculated_at,omitempty"`
	Sessions          []SessionOutcome `json:"sessions,omitempty"`
}

// SupplementRequest is a manual correction for a missed punch. ClockTime is
// an RFC 3339 timestamp; the remark is mandatory because corrections are an
// audited operation.
type SupplementRequest struct {
	ClockTime string `json:"clock_time" binding:"required"`
	Remark    string `json:"remark" binding:"required,min=3"`
}

type IngestPunchRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	ClockTime  string `json:"clock_time" binding:"required"`
	Direction  string `json:"direction" binding:"required,oneof=CHECK_IN CHECK_OUT"`
	Source     string `json:"source" binding:"omitempty,oneof=DEVICE APP WEB"`
}

type PunchResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	ClockTime  string `json:"clock_time"`
	Direction  string `json:"direction"`
	Source     string `json:"source"`
	Remark     string `json:"remark,omitempty"`
}
