package recalc

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"go-attend/internal/attendance"
	shifterrors "go-attend/internal/shift/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeBatchRepo struct {
	batches map[string]*CalculationBatch

	finishedStatus  string
	finishedMsg     string
	finishedProc    int
	finishedFailed  int
	progressUpdates int
}

func newFakeBatchRepo() *fakeBatchRepo {
	return &fakeBatchRepo{batches: map[string]*CalculationBatch{}}
}

func (f *fakeBatchRepo) WithTx(tx *sql.Tx) Repository { return f }

func (f *fakeBatchRepo) Create(ctx context.Context, b *CalculationBatch) error {
	f.batches[b.ID.String()] = b
	return nil
}

func (f *fakeBatchRepo) FindByIDAndCompany(ctx context.Context, companyID, id string) (*CalculationBatch, error) {
	b, ok := f.batches[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return b, nil
}

func (f *fakeBatchRepo) MarkProcessing(ctx context.Context, id string, total int) (bool, error) {
	b := f.batches[id]
	if b.Status != StatusPending {
		return false, nil
	}
	b.Status = StatusProcessing
	b.TotalCount = total
	return true, nil
}

func (f *fakeBatchRepo) UpdateProgress(ctx context.Context, id string, processed, failed int) error {
	f.progressUpdates++
	return nil
}

func (f *fakeBatchRepo) Finish(ctx context.Context, id, status string, processed, failed int, message string) error {
	b := f.batches[id]
	if IsTerminal(b.Status) {
		return nil
	}
	b.Status = status
	f.finishedStatus = status
	f.finishedMsg = message
	f.finishedProc = processed
	f.finishedFailed = failed
	return nil
}

type fakeCalc struct {
	calls   int
	failFor map[string]error // employeeID -> error
}

func (f *fakeCalc) Recalculate(ctx context.Context, companyID, employeeID string, date time.Time) (*attendance.DailyRecord, error) {
	f.calls++
	if err, ok := f.failFor[employeeID]; ok {
		return nil, err
	}
	return &attendance.DailyRecord{}, nil
}

type fakeDirectory struct {
	ids []string
}

func (f *fakeDirectory) ListActiveIDs(ctx context.Context, companyID string) ([]string, error) {
	return f.ids, nil
}

func seedBatch(repo *fakeBatchRepo, days int, filter []string) *CalculationBatch {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	b := &CalculationBatch{
		ID:        uuid.New(),
		CompanyID: uuid.New(),
		BatchNo:   "CALC-000001",
		StartDate: start,
		EndDate:   start.AddDate(0, 0, days-1),
		Status:    StatusPending,
	}
	if len(filter) > 0 {
		b.EmployeeFilter, _ = json.Marshal(filter)
	}
	return b
}

func TestExecutorCompletesCleanBatch(t *testing.T) {
	repo := newFakeBatchRepo()
	b := seedBatch(repo, 3, nil)
	repo.batches[b.ID.String()] = b

	calc := &fakeCalc{}
	dir := &fakeDirectory{ids: []string{uuid.NewString(), uuid.NewString()}}
	ex := NewExecutor(repo, calc, dir)

	err := ex.Execute(context.Background(), b.CompanyID.String(), b.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, StatusCompleted, repo.finishedStatus)
	assert.Equal(t, 6, calc.calls) // 2 employees x 3 days
	assert.Equal(t, 6, repo.finishedProc)
	assert.Equal(t, 0, repo.finishedFailed)
	assert.Empty(t, repo.finishedMsg)
}

func TestExecutorContinuesPastConfigurationErrors(t *testing.T) {
	repo := newFakeBatchRepo()
	b := seedBatch(repo, 2, nil)
	repo.batches[b.ID.String()] = b

	broken := uuid.NewString()
	healthy := uuid.NewString()
	calc := &fakeCalc{failFor: map[string]error{broken: shifterrors.ErrNoShiftAssignment}}
	ex := NewExecutor(repo, calc, &fakeDirectory{ids: []string{broken, healthy}})

	err := ex.Execute(context.Background(), b.CompanyID.String(), b.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, StatusCompletedWithErrors, repo.finishedStatus)
	assert.Equal(t, 2, repo.finishedProc)
	assert.Equal(t, 2, repo.finishedFailed)
	assert.Contains(t, repo.finishedMsg, broken)
	// Every pair was attempted despite the failures.
	assert.Equal(t, 4, calc.calls)
}

func TestExecutorHonorsEmployeeFilter(t *testing.T) {
	only := uuid.NewString()
	repo := newFakeBatchRepo()
	b := seedBatch(repo, 1, []string{only})
	repo.batches[b.ID.String()] = b

	calc := &fakeCalc{}
	// Directory would return more employees; the filter must win.
	ex := NewExecutor(repo, calc, &fakeDirectory{ids: []string{uuid.NewString(), uuid.NewString(), only}})

	err := ex.Execute(context.Background(), b.CompanyID.String(), b.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, 1, calc.calls)
	assert.Equal(t, StatusCompleted, repo.finishedStatus)
}

func TestExecutorSkipsAlreadyClaimedBatch(t *testing.T) {
	repo := newFakeBatchRepo()
	b := seedBatch(repo, 1, nil)
	b.Status = StatusProcessing
	repo.batches[b.ID.String()] = b

	calc := &fakeCalc{}
	ex := NewExecutor(repo, calc, &fakeDirectory{ids: []string{uuid.NewString()}})

	err := ex.Execute(context.Background(), b.CompanyID.String(), b.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, 0, calc.calls)
	assert.Empty(t, repo.finishedStatus)
}

func TestExecutorDropsUnknownBatch(t *testing.T) {
	repo := newFakeBatchRepo()
	ex := NewExecutor(repo, &fakeCalc{}, &fakeDirectory{})

	err := ex.Execute(context.Background(), uuid.NewString(), uuid.NewString())

	assert.NoError(t, err)
}
