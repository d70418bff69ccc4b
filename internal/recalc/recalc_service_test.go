package recalc

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"go-attend/internal/messaging/kafka"
	recalcerrors "go-attend/internal/recalc/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeCounter struct {
	next int64
}

func (f *fakeCounter) GetNextValue(ctx context.Context, companyID, counterType string) (int64, error) {
	f.next++
	return f.next, nil
}

type fakeOutbox struct {
	events []kafka.OutboxEvent
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return f.events, nil
}

func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error { return nil }
func (f *fakeOutbox) MarkFailed(ctx context.Context, id, r string) error { return nil }

var (
	testCompanyID = uuid.New()
	testActorID   = uuid.New()
)

func newTriggerService(t *testing.T, repo Repository, outbox kafka.OutboxRepository) (Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(db, repo, &fakeCounter{}, outbox, nil), mock
}

func TestTriggerCreatesBatchAndOutboxEvent(t *testing.T) {
	repo := newFakeBatchRepo()
	outbox := &fakeOutbox{}
	svc, mock := newTriggerService(t, repo, outbox)

	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := svc.Trigger(context.Background(), testCompanyID.String(), testActorID.String(), TriggerRequest{
		StartDate:   "2026-03-01",
		EndDate:     "2026-03-07",
		EmployeeIDs: []string{uuid.NewString()},
	})

	assert.NoError(t, err)
	assert.Equal(t, "CALC-000001", resp.BatchNo)
	assert.Equal(t, StatusPending, resp.Status)
	assert.Len(t, resp.EmployeeIDs, 1)
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.Len(t, repo.batches, 1)
	if assert.Len(t, outbox.events, 1) {
		ev := outbox.events[0]
		assert.Equal(t, "recalculation_requested", ev.EventType)
		assert.Equal(t, resp.ID, ev.AggregateID)
		assert.Equal(t, kafka.OutboxStatusPending, ev.Status)

		var payload map[string]any
		assert.NoError(t, json.Unmarshal(ev.Payload, &payload))
		assert.Equal(t, resp.ID, payload["batch_id"])
	}
}

func TestTriggerRejectsInvertedRange(t *testing.T) {
	svc, _ := newTriggerService(t, newFakeBatchRepo(), &fakeOutbox{})

	_, err := svc.Trigger(context.Background(), testCompanyID.String(), testActorID.String(), TriggerRequest{
		StartDate: "2026-03-07",
		EndDate:   "2026-03-01",
	})

	assert.ErrorIs(t, err, recalcerrors.ErrInvalidDateRange)
}

func TestTriggerRejectsOversizedRange(t *testing.T) {
	svc, _ := newTriggerService(t, newFakeBatchRepo(), &fakeOutbox{})

	_, err := svc.Trigger(context.Background(), testCompanyID.String(), testActorID.String(), TriggerRequest{
		StartDate: "2026-01-01",
		EndDate:   "2026-06-30",
	})

	assert.ErrorIs(t, err, recalcerrors.ErrRangeTooLarge)
}

func TestTriggerRejectsBadEmployeeFilter(t *testing.T) {
	svc, _ := newTriggerService(t, newFakeBatchRepo(), &fakeOutbox{})

	_, err := svc.Trigger(context.Background(), testCompanyID.String(), testActorID.String(), TriggerRequest{
		StartDate:   "2026-03-01",
		EndDate:     "2026-03-02",
		EmployeeIDs: []string{"not-a-uuid"},
	})

	assert.ErrorIs(t, err, recalcerrors.ErrInvalidEmployeeFilter)
}

func TestGetStatusUnknownBatch(t *testing.T) {
	svc, _ := newTriggerService(t, newFakeBatchRepo(), &fakeOutbox{})

	_, err := svc.GetStatus(context.Background(), testCompanyID.String(), uuid.NewString())

	assert.ErrorIs(t, err, recalcerrors.ErrBatchNotFound)
}

func TestGetStatusReadsRepo(t *testing.T) {
	repo := newFakeBatchRepo()
	b := seedBatch(repo, 2, nil)
	b.Status = StatusProcessing
	b.ProcessedCount = 3
	repo.batches[b.ID.String()] = b

	svc, _ := newTriggerService(t, repo, &fakeOutbox{})

	resp, err := svc.GetStatus(context.Background(), b.CompanyID.String(), b.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, StatusProcessing, resp.Status)
	assert.Equal(t, 3, resp.ProcessedCount)
}

func TestGetStatusCachesTerminalBatch(t *testing.T) {
	repo := newFakeBatchRepo()
	b := seedBatch(repo, 1, nil)
	b.Status = StatusCompleted
	repo.batches[b.ID.String()] = b

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rdb, rmock := redismock.NewClientMock()
	svc := NewService(db, repo, &fakeCounter{}, &fakeOutbox{}, rdb)

	key := batchStatusKey(b.ID.String())
	rmock.ExpectGet(key).RedisNil()
	rmock.Regexp().ExpectSet(key, `.*COMPLETED.*`, terminalStatusCacheTTL).SetVal("OK")

	resp, err := svc.GetStatus(context.Background(), b.CompanyID.String(), b.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, StatusCompleted, resp.Status)
	assert.NoError(t, rmock.ExpectationsWereMet())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStatusServesFromCache(t *testing.T) {
	repo := newFakeBatchRepo() // empty: a repo hit would return not found

	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rdb, rmock := redismock.NewClientMock()
	svc := NewService(db, repo, &fakeCounter{}, &fakeOutbox{}, rdb)

	id := uuid.NewString()
	cached, _ := json.Marshal(BatchResponse{ID: id, Status: StatusCompleted, CreatedAt: time.Now().Format(time.RFC3339)})
	rmock.ExpectGet(batchStatusKey(id)).SetVal(string(cached))

	resp, err := svc.GetStatus(context.Background(), testCompanyID.String(), id)

	assert.NoError(t, err)
	assert.Equal(t, StatusCompleted, resp.Status)
	assert.NoError(t, rmock.ExpectationsWereMet())
}
