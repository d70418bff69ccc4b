package attendance

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	attendanceerrors "go-attend/internal/attendance/errors"
	"go-attend/internal/shared/response"
	"go-attend/internal/shift"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SessionResolver supplies the schedule a derivation runs against. Satisfied
// by shift.Service.
type SessionResolver interface {
	ResolveSessionsForDate(ctx context.Context, companyID, employeeID string, date time.Time) ([]shift.SessionSpec, uuid.UUID, error)
}

// LeaveSource supplies approved leave intervals overlapping [from, to).
type LeaveSource interface {
	ApprovedSpans(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]LeaveSpan, error)
}

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	GetRecords(ctx context.Context, companyID string, q ListRecordsQuery) ([]RecordResponse, *response.PaginationMeta, error)
	GetRecordByID(ctx context.Context, companyID, id string) (RecordResponse, error)

	SupplementCheckIn(ctx context.Context, companyID, recordID, operatorID string, req SupplementRequest) (RecordResponse, error)
	SupplementCheckOut(ctx context.Context, companyID, recordID, operatorID string, req SupplementRequest) (RecordResponse, error)

	IngestPunch(ctx context.Context, companyID string, req IngestPunchRequest) (PunchResponse, error)

	// Recalculate rebuilds the daily record for one employee and date from the
	// punch log. A rest day yields (nil, nil): nothing is written.
	Recalculate(ctx context.Context, companyID, employeeID string, date time.Time) (*DailyRecord, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	resolver SessionResolver
	leaves   LeaveSource
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, resolver SessionResolver, leaves LeaveSource, logger ...*zap.Logger) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{db: db, repo: repo, resolver: resolver, leaves: leaves, logger: l}
}

func (s *service) GetRecords(ctx context.Context, companyID string, q ListRecordsQuery) ([]RecordResponse, *response.PaginationMeta, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, nil, attendanceerrors.ErrInvalidCompanyID
	}

	filter := RecordFilter{
		EmployeeID:   q.EmployeeID,
		DepartmentID: q.DepartmentID,
		Status:       q.Status,
		Page:         q.Page,
		Limit:        q.Limit,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	var err error
	if q.StartDate != "" {
		if filter.StartDate, err = time.Parse("2006-01-02", q.StartDate); err != nil {
			return nil, nil, attendanceerrors.ErrInvalidDateFormat
		}
	}
	if q.EndDate != "" {
		if filter.EndDate, err = time.Parse("2006-01-02", q.EndDate); err != nil {
			return nil, nil, attendanceerrors.ErrInvalidDateFormat
		}
	}
	if !filter.StartDate.IsZero() && !filter.EndDate.IsZero() && filter.EndDate.Before(filter.StartDate) {
		return nil, nil, attendanceerrors.ErrInvalidDateRange
	}

	rows, total, err := s.repo.FindRecords(ctx, companyID, filter)
	if err != nil {
		return nil, nil, err
	}

	res := make([]RecordResponse, len(rows))
	for i := range rows {
		res[i] = mapRecordResponse(rows[i])
	}
	meta := response.NewPaginationMeta(total, filter.Page, filter.Limit)
	return res, &meta, nil
}

func (s *service) GetRecordByID(ctx context.Context, companyID, id string) (RecordResponse, error) {
	rec, err := s.repo.FindRecordByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RecordResponse{}, attendanceerrors.ErrRecordNotFound
		}
		return RecordResponse{}, err
	}
	return mapRecordResponse(*rec), nil
}

func (s *service) SupplementCheckIn(ctx context.Context, companyID, recordID, operatorID string, req SupplementRequest) (RecordResponse, error) {
	return s.supplement(ctx, companyID, recordID, operatorID, DirectionCheckIn, req)
}

func (s *service) SupplementCheckOut(ctx context.Context, companyID, recordID, operatorID string, req SupplementRequest) (RecordResponse, error) {
	return s.supplement(ctx, companyID, recordID, operatorID, DirectionCheckOut, req)
}

// supplement appends a correction punch to the record's log and re-derives
// the record inside one transaction, so either the punch lands and the
// record reflects it, or neither happens.
func (s *service) supplement(ctx context.Context, companyID, recordID, operatorID, direction string, req SupplementRequest) (RecordResponse, error) {
	rec, err := s.repo.FindRecordByID(ctx, companyID, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RecordResponse{}, attendanceerrors.ErrRecordNotFound
		}
		return RecordResponse{}, err
	}

	clock, err := time.Parse(time.RFC3339, req.ClockTime)
	if err != nil {
		return RecordResponse{}, attendanceerrors.ErrInvalidClockTime
	}

	// A clock time outside every session window is still accepted: the
	// correction records intent, and the derivation alone decides status.
	operatorUUID, err := uuid.Parse(operatorID)
	if err != nil {
		return RecordResponse{}, attendanceerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RecordResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	remark := req.Remark
	punch := &Punch{
		ID:         uuid.New(),
		CompanyID:  rec.CompanyID,
		EmployeeID: rec.EmployeeID,
		RecordID:   &rec.ID,
		ClockTime:  clock,
		Direction:  direction,
		Source:     SourceCorrection,
		OperatorID: &operatorUUID,
		Remark:     &remark,
	}
	if err := qtx.CreatePunch(ctx, punch); err != nil {
		return RecordResponse{}, err
	}

	updated, err := s.recalculateTx(ctx, qtx, companyID, rec.EmployeeID.String(), rec.WorkDate)
	if err != nil {
		return RecordResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return RecordResponse{}, err
	}

	s.logger.Info("correction punch applied",
		zap.String("record_id", recordID),
		zap.String("direction", direction),
		zap.String("operator_id", operatorID),
	)
	return mapRecordResponse(*updated), nil
}

func (s *service) IngestPunch(ctx context.Context, companyID string, req IngestPunchRequest) (PunchResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return PunchResponse{}, attendanceerrors.ErrInvalidCompanyID
	}
	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return PunchResponse{}, attendanceerrors.ErrInvalidEmployeeID
	}
	clock, err := time.Parse(time.RFC3339, req.ClockTime)
	if err != nil {
		return PunchResponse{}, attendanceerrors.ErrInvalidClockTime
	}

	source := req.Source
	if source == "" {
		source = SourceDevice
	}

	punch := &Punch{
		ID:         uuid.New(),
		CompanyID:  companyUUID,
		EmployeeID: employeeUUID,
		ClockTime:  clock,
		Direction:  req.Direction,
		Source:     source,
	}
	if err := s.repo.CreatePunch(ctx, punch); err != nil {
		return PunchResponse{}, err
	}

	// Refresh the punch date and the previous one: an early-morning check-out
	// may close an overnight session that started the day before. A failed
	// refresh never voids the stored punch.
	day := shift.Midnight(clock)
	for _, d := range []time.Time{day.AddDate(0, 0, -1), day} {
		if _, err := s.Recalculate(ctx, companyID, req.EmployeeID, d); err != nil {
			s.logger.Warn("record refresh after punch failed",
				zap.String("employee_id", req.EmployeeID),
				zap.Time("work_date", d),
				zap.Error(err),
			)
		}
	}

	return PunchResponse{
		ID:         punch.ID.String(),
		EmployeeID: punch.EmployeeID.String(),
		ClockTime:  punch.ClockTime.Format(time.RFC3339),
		Direction:  punch.Direction,
		Source:     punch.Source,
	}, nil
}

func (s *service) Recalculate(ctx context.Context, companyID, employeeID string, date time.Time) (*DailyRecord, error) {
	return s.recalculateTx(ctx, s.repo, companyID, employeeID, date)
}

func (s *service) recalculateTx(ctx context.Context, repo Repository, companyID, employeeID string, date time.Time) (*DailyRecord, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return nil, attendanceerrors.ErrInvalidCompanyID
	}
	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return nil, attendanceerrors.ErrInvalidEmployeeID
	}
	day := shift.Midnight(date)

	// Configuration problems (no assignment, broken period config) propagate
	// and leave any stored record untouched rather than turning a scheduling
	// gap into an ABSENT verdict.
	specs, shiftID, err := s.resolver.ResolveSessionsForDate(ctx, companyID, employeeID, day)
	if err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		return nil, nil
	}

	punches, err := repo.FindPunchesForDates(ctx, companyID, employeeID, day, day)
	if err != nil {
		return nil, err
	}
	inputs := make([]PunchInput, len(punches))
	for i, p := range punches {
		inputs[i] = PunchInput{
			ClockTime:  p.ClockTime,
			Direction:  p.Direction,
			Source:     p.Source,
			RecordedAt: p.CreatedAt,
		}
	}

	var spans []LeaveSpan
	if s.leaves != nil {
		spans, err = s.leaves.ApprovedSpans(ctx, companyID, employeeID, day, day.AddDate(0, 0, 2))
		if err != nil {
			return nil, err
		}
	}

	derived, err := Derive(day, specs, inputs, spans)
	if err != nil {
		return nil, err
	}

	snapshot, err := json.Marshal(derived.Sessions)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec := &DailyRecord{
		ID:                uuid.New(),
		CompanyID:         companyUUID,
		EmployeeID:        employeeUUID,
		WorkDate:          day,
		SessionsSnapshot:  snapshot,
		Status:            derived.Status,
		LateMinutes:       derived.LateMinutes,
		EarlyLeaveMinutes: derived.EarlyLeaveMinutes,
		AbsentMinutes:     derived.AbsentMinutes,
		LeaveMinutes:      derived.LeaveMinutes,
		WorkMinutes:       derived.WorkMinutes,
		CalculatedAt:      &now,
	}
	if shiftID != uuid.Nil {
		rec.ShiftID = &shiftID
	}
	if err := repo.UpsertDailyRecord(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func mapRecordResponse(rec DailyRecord) RecordResponse {
	res := RecordResponse{
		ID:                rec.ID.String(),
		EmployeeID:        rec.EmployeeID.String(),
		WorkDate:          rec.WorkDate.Format("2006-01-02"),
		Status:            rec.Status,
		LateMinutes:       rec.LateMinutes,
		EarlyLeaveMinutes: rec.EarlyLeaveMinutes,
		AbsentMinutes:     rec.AbsentMinutes,
		LeaveMinutes:      rec.LeaveMinutes,
		WorkMinutes:       rec.WorkMinutes,
	}
	if rec.Employee != nil {
		res.EmployeeName = rec.Employee.FullName
	}
	if rec.ShiftID != nil {
		res.ShiftID = rec.ShiftID.String()
	}
	if rec.CalculatedAt != nil {
		res.CalculatedAt = rec.CalculatedAt.Format(time.RFC3339)
	}
	if len(rec.SessionsSnapshot) > 0 {
		var sessions []SessionOutcome
		if err := json.Unmarshal(rec.SessionsSnapshot, &sessions); err == nil {
			res.Sessions = sessions
		}
	}
	return res
}
