package leave

import (
	"context"
	"database/sql"
	"testing"
	"time"

	leaveerrors "go-attend/internal/leave/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRepo struct {
	leaves     map[string]*Leave
	belongs    bool
	overlap    bool
	belongsErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{leaves: map[string]*Leave{}, belongs: true}
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, l *Leave) error {
	f.leaves[l.ID.String()] = l
	return nil
}

func (f *fakeRepo) FindAllByCompany(ctx context.Context, companyID string) ([]Leave, error) {
	var rows []Leave
	for _, l := range f.leaves {
		rows = append(rows, *l)
	}
	return rows, nil
}

func (f *fakeRepo) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Leave, error) {
	l, ok := f.leaves[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return l, nil
}

func (f *fakeRepo) Update(ctx context.Context, l *Leave) error {
	f.leaves[l.ID.String()] = l
	return nil
}

func (f *fakeRepo) EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	return f.belongs, f.belongsErr
}

func (f *fakeRepo) HasOverlappingPeriod(ctx context.Context, companyID, employeeID string, startDate, endDate time.Time, excludeID *string) (bool, error) {
	return f.overlap, nil
}

func (f *fakeRepo) FindApprovedOverlapping(ctx context.Context, companyID, employeeID string, startDate, endDate time.Time) ([]Leave, error) {
	var rows []Leave
	for _, l := range f.leaves {
		if l.Status == StatusApproved {
			rows = append(rows, *l)
		}
	}
	return rows, nil
}

var (
	testCompanyID  = uuid.New()
	testEmployeeID = uuid.New()
	testActorID    = uuid.New()
)

func newTestService(t *testing.T, repo Repository) (Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(db, repo), mock
}

func TestCreateLeave(t *testing.T) {
	repo := newFakeRepo()
	svc, mock := newTestService(t, repo)

	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := svc.Create(context.Background(), testCompanyID.String(), testActorID.String(), CreateLeaveRequest{
		EmployeeID: testEmployeeID.String(),
		LeaveType:  TypeBusinessTrip,
		StartDate:  "2026-03-02",
		EndDate:    "2026-03-04",
		Reason:     "client visit",
	})

	assert.NoError(t, err)
	assert.Equal(t, StatusPending, resp.Status)
	assert.Equal(t, TypeBusinessTrip, resp.LeaveType)
	assert.Equal(t, 3, resp.TotalDays)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateLeaveRejectsOverlap(t *testing.T) {
	repo := newFakeRepo()
	repo.overlap = true
	svc, mock := newTestService(t, repo)

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), testCompanyID.String(), testActorID.String(), CreateLeaveRequest{
		EmployeeID: testEmployeeID.String(),
		LeaveType:  TypeAnnual,
		StartDate:  "2026-03-02",
		EndDate:    "2026-03-03",
	})

	assert.ErrorIs(t, err, leaveerrors.ErrLeaveOverlap)
}

func TestCreateLeaveRejectsForeignEmployee(t *testing.T) {
	repo := newFakeRepo()
	repo.belongs = false
	svc, mock := newTestService(t, repo)

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), testCompanyID.String(), testActorID.String(), CreateLeaveRequest{
		EmployeeID: testEmployeeID.String(),
		LeaveType:  TypeSick,
		StartDate:  "2026-03-02",
		EndDate:    "2026-03-02",
	})

	assert.ErrorIs(t, err, leaveerrors.ErrEmployeeNotInCompany)
}

func TestCreateLeaveRejectsInvertedRange(t *testing.T) {
	svc, _ := newTestService(t, newFakeRepo())

	_, err := svc.Create(context.Background(), testCompanyID.String(), testActorID.String(), CreateLeaveRequest{
		EmployeeID: testEmployeeID.String(),
		LeaveType:  TypeAnnual,
		StartDate:  "2026-03-05",
		EndDate:    "2026-03-02",
	})

	assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateRange)
}

func seedLeave(repo *fakeRepo, status string) *Leave {
	l := &Leave{
		ID:         uuid.New(),
		CompanyID:  testCompanyID,
		EmployeeID: testEmployeeID,
		LeaveType:  TypeAnnual,
		StartDate:  time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
		Status:     status,
		CreatedBy:  testActorID,
	}
	repo.leaves[l.ID.String()] = l
	return l
}

func TestApproveSubmittedLeave(t *testing.T) {
	repo := newFakeRepo()
	l := seedLeave(repo, StatusSubmitted)
	svc, mock := newTestService(t, repo)

	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := svc.Approve(context.Background(), testCompanyID.String(), testActorID.String(), l.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, StatusApproved, resp.Status)
	if assert.NotNil(t, resp.ApprovedBy) {
		assert.Equal(t, testActorID.String(), *resp.ApprovedBy)
	}
	assert.NotNil(t, resp.ApprovedAt)
}

func TestApprovePendingLeaveFails(t *testing.T) {
	repo := newFakeRepo()
	l := seedLeave(repo, StatusPending)
	svc, mock := newTestService(t, repo)

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Approve(context.Background(), testCompanyID.String(), testActorID.String(), l.ID.String())

	assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
}

func TestRejectRequiresReason(t *testing.T) {
	repo := newFakeRepo()
	l := seedLeave(repo, StatusSubmitted)
	svc, mock := newTestService(t, repo)

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Reject(context.Background(), testCompanyID.String(), testActorID.String(), l.ID.String(), "")

	assert.ErrorIs(t, err, leaveerrors.ErrRejectionReasonRequired)
}

func TestApprovedLeaveIsTerminal(t *testing.T) {
	repo := newFakeRepo()
	l := seedLeave(repo, StatusApproved)
	svc, mock := newTestService(t, repo)

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Cancel(context.Background(), testCompanyID.String(), testActorID.String(), l.ID.String())

	assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
}

func TestSpanSourceConvertsInclusiveDates(t *testing.T) {
	repo := newFakeRepo()
	seedLeave(repo, StatusApproved)
	src := NewSpanSource(repo)

	spans, err := src.ApprovedSpans(context.Background(), testCompanyID.String(), testEmployeeID.String(),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	)

	assert.NoError(t, err)
	if assert.Len(t, spans, 1) {
		assert.Equal(t, TypeAnnual, spans[0].Type)
		assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), spans[0].Start)
		// Inclusive March 4 end date becomes an exclusive March 5 instant.
		assert.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), spans[0].End)
	}
}
