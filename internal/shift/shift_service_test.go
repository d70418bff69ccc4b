package shift

import (
	"context"
	"database/sql"
	"testing"
	"time"

	shifterrors "go-attend/internal/shift/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeShiftRepo struct {
	periods     map[string]*TimePeriod
	shifts      map[string]*Shift
	assignments map[string]*ShiftAssignment // keyed by employee id
	refCounts   map[string]int64

	updatedPeriods []*TimePeriod
}

func newFakeShiftRepo() *fakeShiftRepo {
	return &fakeShiftRepo{
		periods:     map[string]*TimePeriod{},
		shifts:      map[string]*Shift{},
		assignments: map[string]*ShiftAssignment{},
		refCounts:   map[string]int64{},
	}
}

func (f *fakeShiftRepo) WithTx(tx *sql.Tx) Repository { return f }

func (f *fakeShiftRepo) CreatePeriod(ctx context.Context, p *TimePeriod) error {
	f.periods[p.ID.String()] = p
	return nil
}

func (f *fakeShiftRepo) UpdatePeriod(ctx context.Context, p *TimePeriod) error {
	f.periods[p.ID.String()] = p
	f.updatedPeriods = append(f.updatedPeriods, p)
	return nil
}

func (f *fakeShiftRepo) FindPeriodByIDAndCompany(ctx context.Context, companyID, id string) (*TimePeriod, error) {
	p, ok := f.periods[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (f *fakeShiftRepo) FindPeriodsByIDs(ctx context.Context, companyID string, ids []string) ([]TimePeriod, error) {
	var rows []TimePeriod
	for _, id := range ids {
		if p, ok := f.periods[id]; ok {
			rows = append(rows, *p)
		}
	}
	return rows, nil
}

func (f *fakeShiftRepo) FindAllPeriodsByCompany(ctx context.Context, companyID string) ([]TimePeriod, error) {
	var rows []TimePeriod
	for _, p := range f.periods {
		rows = append(rows, *p)
	}
	return rows, nil
}

func (f *fakeShiftRepo) CountShiftsReferencingPeriod(ctx context.Context, companyID, periodID string) (int64, error) {
	return f.refCounts[periodID], nil
}

func (f *fakeShiftRepo) CreateShift(ctx context.Context, s *Shift) error {
	f.shifts[s.ID.String()] = s
	return nil
}

func (f *fakeShiftRepo) ReplaceShiftPeriods(ctx context.Context, shiftID string, rows []ShiftPeriod) error {
	sh, ok := f.shifts[shiftID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range rows {
		rows[i].Period = f.periods[rows[i].PeriodID.String()]
	}
	sh.Periods = rows
	return nil
}

func (f *fakeShiftRepo) UpdateShift(ctx context.Context, s *Shift) error {
	f.shifts[s.ID.String()] = s
	return nil
}

func (f *fakeShiftRepo) FindShiftByIDAndCompany(ctx context.Context, companyID, id string) (*Shift, error) {
	sh, ok := f.shifts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return sh, nil
}

func (f *fakeShiftRepo) FindAllShiftsByCompany(ctx context.Context, companyID string) ([]Shift, error) {
	var rows []Shift
	for _, sh := range f.shifts {
		rows = append(rows, *sh)
	}
	return rows, nil
}

func (f *fakeShiftRepo) UpsertAssignment(ctx context.Context, a *ShiftAssignment) error {
	f.assignments[a.EmployeeID.String()] = a
	return nil
}

func (f *fakeShiftRepo) FindAssignmentByEmployee(ctx context.Context, companyID, employeeID string) (*ShiftAssignment, error) {
	a, ok := f.assignments[employeeID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

var (
	shiftTestCompanyID  = uuid.New()
	shiftTestEmployeeID = uuid.New()
)

func newShiftTestService(t *testing.T, repo *fakeShiftRepo) (Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(db, repo), mock
}

func seedPeriod(repo *fakeShiftRepo, name, startTime, endTime string) *TimePeriod {
	p := &TimePeriod{
		ID:                  uuid.New(),
		CompanyID:           shiftTestCompanyID,
		Name:                name,
		PeriodType:          PeriodTypeRegular,
		StartTime:           startTime,
		EndTime:             endTime,
		CheckInStartOffset:  60,
		CheckInEndOffset:    60,
		CheckOutStartOffset: 60,
		CheckOutEndOffset:   60,
	}
	repo.periods[p.ID.String()] = p
	return p
}

func seedAssignedShift(repo *fakeShiftRepo, cycleDays int, anchor time.Time, rows []ShiftPeriod) *Shift {
	sh := &Shift{
		ID:        uuid.New(),
		CompanyID: shiftTestCompanyID,
		Name:      "Rotating",
		CycleDays: cycleDays,
	}
	for i := range rows {
		rows[i].ShiftID = sh.ID
		if rows[i].Period == nil {
			rows[i].Period = repo.periods[rows[i].PeriodID.String()]
		}
	}
	sh.Periods = rows
	repo.shifts[sh.ID.String()] = sh
	repo.assignments[shiftTestEmployeeID.String()] = &ShiftAssignment{
		ID:         uuid.New(),
		CompanyID:  shiftTestCompanyID,
		EmployeeID: shiftTestEmployeeID,
		ShiftID:    sh.ID,
		AnchorDate: anchor,
	}
	return sh
}

func TestCycleDayIndex(t *testing.T) {
	anchor := workDate

	assert.Equal(t, 0, CycleDayIndex(anchor, anchor, 1))
	assert.Equal(t, 0, CycleDayIndex(anchor, anchor.AddDate(0, 0, 5), 1))

	assert.Equal(t, 0, CycleDayIndex(anchor, anchor, 3))
	assert.Equal(t, 1, CycleDayIndex(anchor, anchor.AddDate(0, 0, 1), 3))
	assert.Equal(t, 2, CycleDayIndex(anchor, anchor.AddDate(0, 0, 2), 3))
	assert.Equal(t, 0, CycleDayIndex(anchor, anchor.AddDate(0, 0, 3), 3))

	// Dates before the anchor still resolve to a valid index.
	assert.Equal(t, 2, CycleDayIndex(anchor, anchor.AddDate(0, 0, -1), 3))
	assert.Equal(t, 0, CycleDayIndex(anchor, anchor.AddDate(0, 0, -3), 3))
}

func TestResolveSessionsForDateOrdersBySortOrder(t *testing.T) {
	repo := newFakeShiftRepo()
	morning := seedPeriod(repo, "Morning", "09:00", "12:00")
	afternoon := seedPeriod(repo, "Afternoon", "14:00", "18:00")
	sh := seedAssignedShift(repo, 1, workDate, []ShiftPeriod{
		{PeriodID: afternoon.ID, DayOfCycle: 0, SortOrder: 2},
		{PeriodID: morning.ID, DayOfCycle: 0, SortOrder: 1},
	})
	svc, _ := newShiftTestService(t, repo)

	specs, shiftID, err := svc.ResolveSessionsForDate(context.Background(), shiftTestCompanyID.String(), shiftTestEmployeeID.String(), workDate)

	assert.NoError(t, err)
	assert.Equal(t, sh.ID, shiftID)
	if assert.Len(t, specs, 2) {
		assert.Equal(t, "Morning", specs[0].Name)
		assert.Equal(t, "Afternoon", specs[1].Name)
	}
}

func TestResolveSessionsForDateRestDay(t *testing.T) {
	repo := newFakeShiftRepo()
	day := seedPeriod(repo, "Day", "09:00", "18:00")
	sh := seedAssignedShift(repo, 2, workDate, []ShiftPeriod{
		{PeriodID: day.ID, DayOfCycle: 0, SortOrder: 1},
	})
	svc, _ := newShiftTestService(t, repo)

	// Cycle day 1 has no periods: a rest day, not an error.
	specs, shiftID, err := svc.ResolveSessionsForDate(context.Background(), shiftTestCompanyID.String(), shiftTestEmployeeID.String(), workDate.AddDate(0, 0, 1))

	assert.NoError(t, err)
	assert.Equal(t, sh.ID, shiftID)
	assert.Empty(t, specs)
}

func TestResolveSessionsForDateNoAssignment(t *testing.T) {
	svc, _ := newShiftTestService(t, newFakeShiftRepo())

	_, _, err := svc.ResolveSessionsForDate(context.Background(), shiftTestCompanyID.String(), shiftTestEmployeeID.String(), workDate)

	assert.ErrorIs(t, err, shifterrors.ErrNoShiftAssignment)
}

func TestResolveSessionsForDateMalformedPeriod(t *testing.T) {
	repo := newFakeShiftRepo()
	broken := seedPeriod(repo, "Broken", "09:00", "nope")
	seedAssignedShift(repo, 1, workDate, []ShiftPeriod{
		{PeriodID: broken.ID, DayOfCycle: 0, SortOrder: 1},
	})
	svc, _ := newShiftTestService(t, repo)

	_, _, err := svc.ResolveSessionsForDate(context.Background(), shiftTestCompanyID.String(), shiftTestEmployeeID.String(), workDate)

	assert.ErrorIs(t, err, shifterrors.ErrMalformedPeriodConfig)
}

func TestValidateCycleSchedule(t *testing.T) {
	morning := daySpec()
	morning.StartMin, morning.EndMin = 9*60, 12*60
	afternoon := daySpec()
	afternoon.StartMin, afternoon.EndMin = 14*60+30, 18*60
	specs := map[string]SessionSpec{"m": morning, "a": afternoon}

	ok := []ShiftPeriodRef{
		{PeriodID: "m", DayOfCycle: 0, SortOrder: 1},
		{PeriodID: "a", DayOfCycle: 0, SortOrder: 2},
	}
	assert.NoError(t, validateCycleSchedule(1, ok, specs))

	assert.ErrorIs(t, validateCycleSchedule(0, ok, specs), shifterrors.ErrInvalidCycleDays)
	assert.ErrorIs(t, validateCycleSchedule(1, nil, specs), shifterrors.ErrShiftHasNoPeriods)

	outside := []ShiftPeriodRef{{PeriodID: "m", DayOfCycle: 1, SortOrder: 1}}
	assert.ErrorIs(t, validateCycleSchedule(1, outside, specs), shifterrors.ErrDayOutsideCycle)
}

func TestValidateCycleScheduleOverlapAfterWindowExpansion(t *testing.T) {
	// Nominal intervals do not overlap, but the first period's check-out
	// window (12:00+60) reaches past the second's check-in window (13:00-60).
	first := daySpec()
	first.StartMin, first.EndMin = 9*60, 12*60
	second := daySpec()
	second.StartMin, second.EndMin = 13*60, 18*60
	specs := map[string]SessionSpec{"f": first, "s": second}

	refs := []ShiftPeriodRef{
		{PeriodID: "f", DayOfCycle: 0, SortOrder: 1},
		{PeriodID: "s", DayOfCycle: 0, SortOrder: 2},
	}
	assert.ErrorIs(t, validateCycleSchedule(1, refs, specs), shifterrors.ErrPeriodsOverlap)

	// Periods on different cycle days never collide.
	split := []ShiftPeriodRef{
		{PeriodID: "f", DayOfCycle: 0, SortOrder: 1},
		{PeriodID: "s", DayOfCycle: 1, SortOrder: 1},
	}
	assert.NoError(t, validateCycleSchedule(2, split, specs))
}

func TestCreateShiftPersistsPeriodRows(t *testing.T) {
	repo := newFakeShiftRepo()
	morning := seedPeriod(repo, "Morning", "09:00", "12:00")
	afternoon := seedPeriod(repo, "Afternoon", "14:30", "18:00")
	svc, mock := newShiftTestService(t, repo)

	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := svc.CreateShift(context.Background(), shiftTestCompanyID.String(), SaveShiftRequest{
		Name:      "Standard",
		CycleDays: 1,
		Periods: []ShiftPeriodRef{
			{PeriodID: morning.ID.String(), DayOfCycle: 0, SortOrder: 1},
			{PeriodID: afternoon.ID.String(), DayOfCycle: 0, SortOrder: 2},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, "Standard", resp.Name)
	assert.Len(t, resp.Periods, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateShiftUnknownPeriod(t *testing.T) {
	repo := newFakeShiftRepo()
	svc, mock := newShiftTestService(t, repo)

	_, err := svc.CreateShift(context.Background(), shiftTestCompanyID.String(), SaveShiftRequest{
		Name:      "Standard",
		CycleDays: 1,
		Periods:   []ShiftPeriodRef{{PeriodID: uuid.NewString(), DayOfCycle: 0, SortOrder: 1}},
	})

	assert.ErrorIs(t, err, shifterrors.ErrPeriodNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePeriodRewritesSharedEntity(t *testing.T) {
	repo := newFakeShiftRepo()
	p := seedPeriod(repo, "Day", "09:00", "18:00")
	repo.refCounts[p.ID.String()] = 3
	svc, _ := newShiftTestService(t, repo)

	resp, err := svc.UpdatePeriod(context.Background(), shiftTestCompanyID.String(), p.ID.String(), SavePeriodRequest{
		Name:      "Day",
		StartTime: "09:30",
		EndTime:   "18:30",
		Rules:     PeriodRulesRequest{CheckInStartOffset: 60, CheckInEndOffset: 60, CheckOutStartOffset: 60, CheckOutEndOffset: 60},
	})

	assert.NoError(t, err)
	assert.Equal(t, "09:30", resp.StartTime)
	assert.Len(t, repo.updatedPeriods, 1)
	assert.Equal(t, p.ID, repo.updatedPeriods[0].ID)
}

func TestUpdatePeriodRejectsBadClock(t *testing.T) {
	repo := newFakeShiftRepo()
	p := seedPeriod(repo, "Day", "09:00", "18:00")
	svc, _ := newShiftTestService(t, repo)

	_, err := svc.UpdatePeriod(context.Background(), shiftTestCompanyID.String(), p.ID.String(), SavePeriodRequest{
		Name:      "Day",
		StartTime: "25:00",
		EndTime:   "18:00",
	})

	assert.ErrorIs(t, err, shifterrors.ErrInvalidClockFormat)
	assert.Empty(t, repo.updatedPeriods)
}

func TestAssignShift(t *testing.T) {
	repo := newFakeShiftRepo()
	day := seedPeriod(repo, "Day", "09:00", "18:00")
	sh := seedAssignedShift(repo, 1, workDate, []ShiftPeriod{
		{PeriodID: day.ID, DayOfCycle: 0, SortOrder: 1},
	})
	svc, _ := newShiftTestService(t, repo)

	other := uuid.New()
	resp, err := svc.AssignShift(context.Background(), shiftTestCompanyID.String(), AssignShiftRequest{
		EmployeeID: other.String(),
		ShiftID:    sh.ID.String(),
		AnchorDate: "2026-03-02",
	})

	assert.NoError(t, err)
	assert.Equal(t, other.String(), resp.EmployeeID)
	assert.Equal(t, "2026-03-02", resp.AnchorDate)

	_, err = svc.AssignShift(context.Background(), shiftTestCompanyID.String(), AssignShiftRequest{
		EmployeeID: other.String(),
		ShiftID:    sh.ID.String(),
		AnchorDate: "02-03-2026",
	})
	assert.ErrorIs(t, err, shifterrors.ErrInvalidAnchorDate)

	_, err = svc.AssignShift(context.Background(), shiftTestCompanyID.String(), AssignShiftRequest{
		EmployeeID: other.String(),
		ShiftID:    uuid.NewString(),
		AnchorDate: "2026-03-02",
	})
	assert.ErrorIs(t, err, shifterrors.ErrShiftNotFound)
}
