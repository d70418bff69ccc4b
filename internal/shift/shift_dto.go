package shift

type PeriodRulesRequest struct {
	CheckInStartOffset     int `json:"check_in_start_offset" binding:"min=0"`
	CheckInEndOffset       int `json:"check_in_end_offset" binding:"min=0"`
	CheckOutStartOffset    int `json:"check_out_start_offset" binding:"min=0"`
	CheckOutEndOffset      int `json:"check_out_end_offset" binding:"min=0"`
	LateGraceMinutes       int `json:"late_grace_minutes" binding:"min=0"`
	EarlyLeaveGraceMinutes int `json:"early_leave_grace_minutes" binding:"min=0"`
}

// SavePeriodRequest serves both create and update. The caller picks the path
// based on id presence: POST creates a new period, PUT /:id updates the shared
// entity in place.
type SavePeriodRequest struct {
	Name       string             `json:"name" binding:"required"`
	PeriodType string             `json:"type"`
	StartTime  string             `json:"start_time" binding:"required"`
	EndTime    string             `json:"end_time" binding:"required"`
	Rules      PeriodRulesRequest `json:"rules"`
}

type PeriodResponse struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	PeriodType string             `json:"type"`
	StartTime  string             `json:"start_time"`
	EndTime    string             `json:"end_time"`
	Overnight  bool               `json:"overnight"`
	Rules      PeriodRulesRequest `json:"rules"`
}

type ShiftPeriodRef struct {
	PeriodID   string `json:"period_id" binding:"required,uuid"`
	DayOfCycle int    `json:"day_of_cycle" binding:"min=0"`
	SortOrder  int    `json:"sort_order" binding:"min=0"`
}

type SaveShiftRequest struct {
	Name      string           `json:"name" binding:"required"`
	CycleDays int              `json:"cycle_days" binding:"required,min=1"`
	Periods   []ShiftPeriodRef `json:"periods" binding:"required,min=1,dive"`
}

type ShiftPeriodResponse struct {
	PeriodID   string `json:"period_id"`
	Name       string `json:"name"`
	DayOfCycle int    `json:"day_of_cycle"`
	SortOrder  int    `json:"sort_order"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

type ShiftResponse struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	CycleDays int                   `json:"cycle_days"`
	Periods   []ShiftPeriodResponse `json:"periods"`
}

type AssignShiftRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	ShiftID    string `json:"shift_id" binding:"required,uuid"`
	AnchorDate string `json:"anchor_date" binding:"required"`
}

type AssignmentResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	ShiftID    string `json:"shift_id"`
	AnchorDate string `json:"anchor_date"`
}
