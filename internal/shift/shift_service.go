package shift

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	shifterrors "go-attend/internal/shift/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=shift_service.go -destination=mock/shift_service_mock.go -package=mock
type Service interface {
	CreatePeriod(ctx context.Context, companyID string, req SavePeriodRequest) (PeriodResponse, error)
	UpdatePeriod(ctx context.Context, companyID, id string, req SavePeriodRequest) (PeriodResponse, error)
	GetPeriods(ctx context.Context, companyID string) ([]PeriodResponse, error)

	CreateShift(ctx context.Context, companyID string, req SaveShiftRequest) (ShiftResponse, error)
	UpdateShift(ctx context.Context, companyID, id string, req SaveShiftRequest) (ShiftResponse, error)
	GetShifts(ctx context.Context, companyID string) ([]ShiftResponse, error)
	GetShiftByID(ctx context.Context, companyID, id string) (ShiftResponse, error)

	AssignShift(ctx context.Context, companyID string, req AssignShiftRequest) (AssignmentResponse, error)

	// ResolveSessionsForDate returns the ordered session specs the employee is
	// scheduled for on the given date, plus the shift id. An empty spec list
	// with a nil error means a configured rest day.
	ResolveSessionsForDate(ctx context.Context, companyID, employeeID string, date time.Time) ([]SessionSpec, uuid.UUID, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("shift.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("shift.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) CreatePeriod(ctx context.Context, companyID string, req SavePeriodRequest) (PeriodResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return PeriodResponse{}, shifterrors.ErrInvalidCompanyID
	}

	p := periodFromRequest(req)
	p.ID = uuid.New()
	p.CompanyID = companyUUID

	if _, err := p.Spec(); err != nil {
		return PeriodResponse{}, err
	}

	if err := s.repo.CreatePeriod(ctx, p); err != nil {
		s.logger.Error("create period persist failed", zap.Error(err))
		return PeriodResponse{}, err
	}
	return mapPeriodResponse(*p), nil
}

// UpdatePeriod mutates the shared entity in place: every shift referencing
// this period sees the change on its next recalculation. That is the product's
// historical behavior; the explicit update path plus the reference-count log
// keep it a deliberate act rather than an accident.
func (s *service) UpdatePeriod(ctx context.Context, companyID, id string, req SavePeriodRequest) (PeriodResponse, error) {
	existing, err := s.repo.FindPeriodByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PeriodResponse{}, shifterrors.ErrPeriodNotFound
		}
		return PeriodResponse{}, err
	}

	refs, err := s.repo.CountShiftsReferencingPeriod(ctx, companyID, id)
	if err != nil {
		return PeriodResponse{}, err
	}
	if refs > 1 {
		s.logger.Warn("updating a time period shared by multiple shifts",
			zap.String("period_id", id),
			zap.Int64("referencing_shifts", refs),
		)
	}

	updated := periodFromRequest(req)
	updated.ID = existing.ID
	updated.CompanyID = existing.CompanyID
	updated.CreatedAt = existing.CreatedAt

	if _, err := updated.Spec(); err != nil {
		return PeriodResponse{}, err
	}

	if err := s.repo.UpdatePeriod(ctx, updated); err != nil {
		s.logger.Error("update period persist failed", zap.Error(err))
		return PeriodResponse{}, err
	}
	return mapPeriodResponse(*updated), nil
}

func (s *service) GetPeriods(ctx context.Context, companyID string) ([]PeriodResponse, error) {
	rows, err := s.repo.FindAllPeriodsByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	res := make([]PeriodResponse, len(rows))
	for i, p := range rows {
		res[i] = mapPeriodResponse(p)
	}
	return res, nil
}

func (s *service) CreateShift(ctx context.Context, companyID string, req SaveShiftRequest) (ShiftResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return ShiftResponse{}, shifterrors.ErrInvalidCompanyID
	}

	rows, specsByID, err := s.resolvePeriodRefs(ctx, companyID, req)
	if err != nil {
		return ShiftResponse{}, err
	}
	if err := validateCycleSchedule(req.CycleDays, req.Periods, specsByID); err != nil {
		return ShiftResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ShiftResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	sh := &Shift{
		ID:        uuid.New(),
		CompanyID: companyUUID,
		Name:      req.Name,
		CycleDays: req.CycleDays,
	}
	if err := qtx.CreateShift(ctx, sh); err != nil {
		return ShiftResponse{}, err
	}
	for i := range rows {
		rows[i].ShiftID = sh.ID
	}
	if err := qtx.ReplaceShiftPeriods(ctx, sh.ID.String(), rows); err != nil {
		return ShiftResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return ShiftResponse{}, err
	}

	s.logger.Info("shift created",
		zap.String("shift_id", sh.ID.String()),
		zap.Int("cycle_days", sh.CycleDays),
		zap.Int("periods", len(rows)),
	)
	return s.GetShiftByID(ctx, companyID, sh.ID.String())
}

func (s *service) UpdateShift(ctx context.Context, companyID, id string, req SaveShiftRequest) (ShiftResponse, error) {
	existing, err := s.repo.FindShiftByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ShiftResponse{}, shifterrors.ErrShiftNotFound
		}
		return ShiftResponse{}, err
	}

	rows, specsByID, err := s.resolvePeriodRefs(ctx, companyID, req)
	if err != nil {
		return ShiftResponse{}, err
	}
	if err := validateCycleSchedule(req.CycleDays, req.Periods, specsByID); err != nil {
		return ShiftResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ShiftResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	existing.Name = req.Name
	existing.CycleDays = req.CycleDays
	if err := qtx.UpdateShift(ctx, existing); err != nil {
		return ShiftResponse{}, err
	}
	for i := range rows {
		rows[i].ShiftID = existing.ID
	}
	if err := qtx.ReplaceShiftPeriods(ctx, existing.ID.String(), rows); err != nil {
		return ShiftResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return ShiftResponse{}, err
	}
	return s.GetShiftByID(ctx, companyID, id)
}

func (s *service) GetShifts(ctx context.Context, companyID string) ([]ShiftResponse, error) {
	rows, err := s.repo.FindAllShiftsByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	res := make([]ShiftResponse, len(rows))
	for i := range rows {
		res[i] = mapShiftResponse(rows[i])
	}
	return res, nil
}

func (s *service) GetShiftByID(ctx context.Context, companyID, id string) (ShiftResponse, error) {
	sh, err := s.repo.FindShiftByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ShiftResponse{}, shifterrors.ErrShiftNotFound
		}
		return ShiftResponse{}, err
	}
	return mapShiftResponse(*sh), nil
}

func (s *service) AssignShift(ctx context.Context, companyID string, req AssignShiftRequest) (AssignmentResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return AssignmentResponse{}, shifterrors.ErrInvalidCompanyID
	}
	anchor, err := time.Parse("2006-01-02", req.AnchorDate)
	if err != nil {
		return AssignmentResponse{}, shifterrors.ErrInvalidAnchorDate
	}

	if _, err := s.repo.FindShiftByIDAndCompany(ctx, companyID, req.ShiftID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AssignmentResponse{}, shifterrors.ErrShiftNotFound
		}
		return AssignmentResponse{}, err
	}

	a := &ShiftAssignment{
		ID:         uuid.New(),
		CompanyID:  companyUUID,
		EmployeeID: uuid.MustParse(req.EmployeeID),
		ShiftID:    uuid.MustParse(req.ShiftID),
		AnchorDate: Midnight(anchor),
	}
	if err := s.repo.UpsertAssignment(ctx, a); err != nil {
		return AssignmentResponse{}, err
	}

	s.logger.Info("shift assigned",
		zap.String("employee_id", req.EmployeeID),
		zap.String("shift_id", req.ShiftID),
	)
	return AssignmentResponse{
		ID:         a.ID.String(),
		EmployeeID: a.EmployeeID.String(),
		ShiftID:    a.ShiftID.String(),
		AnchorDate: a.AnchorDate.Format("2006-01-02"),
	}, nil
}

func (s *service) ResolveSessionsForDate(ctx context.Context, companyID, employeeID string, date time.Time) ([]SessionSpec, uuid.UUID, error) {
	assignment, err := s.repo.FindAssignmentByEmployee(ctx, companyID, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, uuid.Nil, shifterrors.ErrNoShiftAssignment
		}
		return nil, uuid.Nil, err
	}

	sh, err := s.repo.FindShiftByIDAndCompany(ctx, companyID, assignment.ShiftID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, uuid.Nil, shifterrors.ErrNoShiftAssignment
		}
		return nil, uuid.Nil, err
	}
	if sh.CycleDays < 1 {
		return nil, uuid.Nil, shifterrors.ErrMalformedPeriodConfig
	}

	idx := CycleDayIndex(assignment.AnchorDate, date, sh.CycleDays)

	var dayRows []ShiftPeriod
	for _, sp := range sh.Periods {
		if sp.DayOfCycle == idx {
			dayRows = append(dayRows, sp)
		}
	}
	sort.SliceStable(dayRows, func(i, j int) bool {
		return dayRows[i].SortOrder < dayRows[j].SortOrder
	})

	specs := make([]SessionSpec, 0, len(dayRows))
	for _, sp := range dayRows {
		if sp.Period == nil {
			return nil, uuid.Nil, shifterrors.ErrMalformedPeriodConfig
		}
		spec, err := sp.Period.Spec()
		if err != nil {
			return nil, uuid.Nil, shifterrors.ErrMalformedPeriodConfig
		}
		specs = append(specs, spec)
	}
	return specs, sh.ID, nil
}

// CycleDayIndex maps a calendar date onto [0, cycleDays) relative to the
// anchor. Dates before the anchor still resolve to a valid index.
func CycleDayIndex(anchor, date time.Time, cycleDays int) int {
	days := int(Midnight(date).Sub(Midnight(anchor)).Hours() / 24)
	return ((days % cycleDays) + cycleDays) % cycleDays
}

func (s *service) resolvePeriodRefs(ctx context.Context, companyID string, req SaveShiftRequest) ([]ShiftPeriod, map[string]SessionSpec, error) {
	ids := make([]string, 0, len(req.Periods))
	for _, ref := range req.Periods {
		ids = append(ids, ref.PeriodID)
	}

	periods, err := s.repo.FindPeriodsByIDs(ctx, companyID, ids)
	if err != nil {
		return nil, nil, err
	}

	specsByID := make(map[string]SessionSpec, len(periods))
	for i := range periods {
		spec, err := periods[i].Spec()
		if err != nil {
			return nil, nil, err
		}
		specsByID[periods[i].ID.String()] = spec
	}

	rows := make([]ShiftPeriod, 0, len(req.Periods))
	for _, ref := range req.Periods {
		if _, ok := specsByID[ref.PeriodID]; !ok {
			return nil, nil, shifterrors.ErrPeriodNotFound
		}
		rows = append(rows, ShiftPeriod{
			PeriodID:   uuid.MustParse(ref.PeriodID),
			DayOfCycle: ref.DayOfCycle,
			SortOrder:  ref.SortOrder,
		})
	}
	return rows, specsByID, nil
}

// validateCycleSchedule rejects period placements outside the cycle and
// periods whose expanded punch windows overlap within one cycle day.
func validateCycleSchedule(cycleDays int, refs []ShiftPeriodRef, specsByID map[string]SessionSpec) error {
	if cycleDays < 1 {
		return shifterrors.ErrInvalidCycleDays
	}
	if len(refs) == 0 {
		return shifterrors.ErrShiftHasNoPeriods
	}

	byDay := make(map[int][]SessionSpec)
	for _, ref := range refs {
		if ref.DayOfCycle < 0 || ref.DayOfCycle >= cycleDays {
			return shifterrors.ErrDayOutsideCycle
		}
		byDay[ref.DayOfCycle] = append(byDay[ref.DayOfCycle], specsByID[ref.PeriodID])
	}

	for _, specs := range byDay {
		sort.Slice(specs, func(i, j int) bool {
			return specs[i].StartMin < specs[j].StartMin
		})
		for i := 1; i < len(specs); i++ {
			prev, cur := specs[i-1], specs[i]
			prevEnd := prev.EndMin
			if prev.Overnight() {
				prevEnd += minutesPerDay
			}
			prevWindowEnd := prevEnd + prev.Rules.CheckOutEndOffset
			curWindowStart := cur.StartMin - cur.Rules.CheckInStartOffset
			if curWindowStart <= prevWindowEnd {
				return shifterrors.ErrPeriodsOverlap
			}
		}
	}
	return nil
}

func periodFromRequest(req SavePeriodRequest) *TimePeriod {
	periodType := req.PeriodType
	if periodType == "" {
		periodType = PeriodTypeRegular
	}
	return &TimePeriod{
		Name:                   req.Name,
		PeriodType:             periodType,
		StartTime:              req.StartTime,
		EndTime:                req.EndTime,
		CheckInStartOffset:     req.Rules.CheckInStartOffset,
		CheckInEndOffset:       req.Rules.CheckInEndOffset,
		CheckOutStartOffset:    req.Rules.CheckOutStartOffset,
		CheckOutEndOffset:      req.Rules.CheckOutEndOffset,
		LateGraceMinutes:       req.Rules.LateGraceMinutes,
		EarlyLeaveGraceMinutes: req.Rules.EarlyLeaveGraceMinutes,
	}
}

func mapPeriodResponse(p TimePeriod) PeriodResponse {
	spec, _ := p.Spec()
	return PeriodResponse{
		ID:         p.ID.String(),
		Name:       p.Name,
		PeriodType: p.PeriodType,
		StartTime:  p.StartTime,
		EndTime:    p.EndTime,
		Overnight:  spec.Overnight(),
		Rules: PeriodRulesRequest{
			CheckInStartOffset:     p.CheckInStartOffset,
			CheckInEndOffset:       p.CheckInEndOffset,
			CheckOutStartOffset:    p.CheckOutStartOffset,
			CheckOutEndOffset:      p.CheckOutEndOffset,
			LateGraceMinutes:       p.LateGraceMinutes,
			EarlyLeaveGraceMinutes: p.EarlyLeaveGraceMinutes,
		},
	}
}

func mapShiftResponse(sh Shift) ShiftResponse {
	periods := make([]ShiftPeriodResponse, 0, len(sh.Periods))
	for _, sp := range sh.Periods {
		row := ShiftPeriodResponse{
			PeriodID:   sp.PeriodID.String(),
			DayOfCycle: sp.DayOfCycle,
			SortOrder:  sp.SortOrder,
		}
		if sp.Period != nil {
			row.Name = sp.Period.Name
			row.StartTime = sp.Period.StartTime
			row.EndTime = sp.Period.EndTime
		}
		periods = append(periods, row)
	}
	return ShiftResponse{
		ID:        sh.ID.String(),
		Name:      sh.Name,
		CycleDays: sh.CycleDays,
		Periods:   periods,
	}
}
