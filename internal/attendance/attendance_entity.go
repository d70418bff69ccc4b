package attendance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusUncalculated = "UNCALCULATED"
	StatusNormal       = "NORMAL"
	StatusLate         = "LATE"
	StatusEarlyLeave   = "EARLY_LEAVE"
	StatusAbsent       = "ABSENT"
	StatusLeave        = "LEAVE"
	StatusBusinessTrip = "BUSINESS_TRIP"
)

const (
	DirectionCheckIn  = "CHECK_IN"
	DirectionCheckOut = "CHECK_OUT"
)

const (
	SourceDevice     = "DEVICE"
	SourceApp        = "APP"
	SourceWeb        = "WEB"
	SourceCorrection = "CORRECTION"
)

// DailyRecord is the computed attendance outcome for one employee on one
// work date. Records are never deleted; a newer calculation run overwrites
// the derived fields in place, always from the full punch log.
type DailyRecord struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID  `gorm:"column:company_id;type:uuid;not null;index"`
	EmployeeID uuid.UUID  `gorm:"column:employee_id;type:uuid;not null;uniqueIndex:uq_daily_records_employee_date"`
	WorkDate   time.Time  `gorm:"column:work_date;type:date;not null;uniqueIndex:uq_daily_records_employee_date"`
	ShiftID    *uuid.UUID `gorm:"column:shift_id;type:uuid"`

	// Session specs frozen at calculation time, so later period edits do not
	// silently rewrite history until the next recalculation run.
	SessionsSnapshot []byte `gorm:"column:sessions_snapshot;type:jsonb"`

	Status            string `gorm:"column:status;type:varchar(20);not null;default:UNCALCULATED"`
	LateMinutes       int    `gorm:"column:late_minutes;not null;default:0"`
	EarlyLeaveMinutes int    `gorm:"column:early_leave_minutes;not null;default:0"`
	AbsentMinutes     int    `gorm:"column:absent_minutes;not null;default:0"`
	LeaveMinutes      int    `gorm:"column:leave_minutes;not null;default:0"`
	WorkMinutes       int    `gorm:"column:work_minutes;not null;default:0"`

	CalculatedAt *time.Time `gorm:"column:calculated_at;type:timestamptz"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`

	Employee *EmployeeRef `gorm:"foreignKey:EmployeeID;references:ID"`
}

func (DailyRecord) TableName() string {
	return "daily_records"
}

type EmployeeRef struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	FullName     string     `gorm:"column:full_name"`
	DepartmentID *uuid.UUID `gorm:"column:department_id;type:uuid"`
}

func (EmployeeRef) TableName() string {
	return "employees"
}

// Punch is a single recorded clock event. The punch log is append-only:
// corrections add rows, they never rewrite device punches.
type Punch struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID  `gorm:"column:company_id;type:uuid;not null;index"`
	EmployeeID uuid.UUID  `gorm:"column:employee_id;type:uuid;not null;index:idx_punches_employee_clock"`
	RecordID   *uuid.UUID `gorm:"column:record_id;type:uuid;index"`

	ClockTime time.Time `gorm:"column:clock_time;type:timestamptz;not null;index:idx_punches_employee_clock"`
	Direction string    `gorm:"column:direction;type:varchar(10);not null"`
	Source    string    `gorm:"column:source;type:varchar(15);not null;default:DEVICE"`

	// Correction-sourced punches carry who entered them and why.
	OperatorID *uuid.UUID `gorm:"column:operator_id;type:uuid"`
	Remark     *string    `gorm:"column:remark;type:text"`

	CreatedAt time.Time
}

func (Punch) TableName() string {
	return "punches"
}
