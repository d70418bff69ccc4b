package shift

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PeriodTypeRegular  = "REGULAR"
	PeriodTypeOvertime = "OVERTIME"
)

// TimePeriod is a shared, referenced scheduling entity: several shifts (or
// several cycle days of one shift) may point at the same period row, so an
// in-place update is visible to every referencing shift.
type TimePeriod struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID `gorm:"column:company_id;type:uuid;not null;index"`
	Name       string    `gorm:"column:name;type:varchar(100);not null"`
	PeriodType string    `gorm:"column:period_type;type:varchar(20);not null;default:REGULAR"`
	StartTime  string    `gorm:"column:start_time;type:varchar(5);not null"` // "HH:mm"
	EndTime    string    `gorm:"column:end_time;type:varchar(5);not null"`   // "HH:mm", earlier than start => overnight

	CheckInStartOffset     int `gorm:"column:check_in_start_offset;not null;default:0"`
	CheckInEndOffset       int `gorm:"column:check_in_end_offset;not null;default:0"`
	CheckOutStartOffset    int `gorm:"column:check_out_start_offset;not null;default:0"`
	CheckOutEndOffset      int `gorm:"column:check_out_end_offset;not null;default:0"`
	LateGraceMinutes       int `gorm:"column:late_grace_minutes;not null;default:0"`
	EarlyLeaveGraceMinutes int `gorm:"column:early_leave_grace_minutes;not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (TimePeriod) TableName() string {
	return "time_periods"
}

// Spec converts the stored row into its calculation form.
func (p *TimePeriod) Spec() (SessionSpec, error) {
	startMin, err := ParseClock(p.StartTime)
	if err != nil {
		return SessionSpec{}, err
	}
	endMin, err := ParseClock(p.EndTime)
	if err != nil {
		return SessionSpec{}, err
	}

	spec := SessionSpec{
		ID:       p.ID.String(),
		Name:     p.Name,
		StartMin: startMin,
		EndMin:   endMin,
		Rules: WindowRules{
			CheckInStartOffset:     p.CheckInStartOffset,
			CheckInEndOffset:       p.CheckInEndOffset,
			CheckOutStartOffset:    p.CheckOutStartOffset,
			CheckOutEndOffset:      p.CheckOutEndOffset,
			LateGraceMinutes:       p.LateGraceMinutes,
			EarlyLeaveGraceMinutes: p.EarlyLeaveGraceMinutes,
		},
	}
	if err := spec.Validate(); err != nil {
		return SessionSpec{}, err
	}
	return spec, nil
}

// Shift assigns ordered time periods across a repeating cycle of days.
// CycleDays of 1 behaves as a fixed daily shift.
type Shift struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"column:company_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name;type:varchar(100);not null"`
	CycleDays int       `gorm:"column:cycle_days;not null;default:1"`

	Periods []ShiftPeriod `gorm:"foreignKey:ShiftID"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Shift) TableName() string {
	return "shifts"
}

// ShiftPeriod binds one TimePeriod to one cycle day of a shift.
type ShiftPeriod struct {
	ShiftID    uuid.UUID `gorm:"column:shift_id;type:uuid;primaryKey"`
	PeriodID   uuid.UUID `gorm:"column:period_id;type:uuid;primaryKey"`
	DayOfCycle int       `gorm:"column:day_of_cycle;primaryKey"`
	SortOrder  int       `gorm:"column:sort_order;not null;default:0"`

	Period *TimePeriod `gorm:"foreignKey:PeriodID;references:ID"`
}

func (ShiftPeriod) TableName() string {
	return "shift_periods"
}

// ShiftAssignment pins one employee to a shift. AnchorDate is cycle day 0.
type ShiftAssignment struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID `gorm:"column:company_id;type:uuid;not null;index"`
	EmployeeID uuid.UUID `gorm:"column:employee_id;type:uuid;not null;uniqueIndex"`
	ShiftID    uuid.UUID `gorm:"column:shift_id;type:uuid;not null"`
	AnchorDate time.Time `gorm:"column:anchor_date;type:date;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ShiftAssignment) TableName() string {
	return "shift_assignments"
}
