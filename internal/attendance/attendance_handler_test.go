package attendance

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	attendanceerrors "go-attend/internal/attendance/errors"
	"go-attend/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubService struct {
	records    []RecordResponse
	record     RecordResponse
	punch      PunchResponse
	err        error
	lastSuppl  SupplementRequest
	lastRecord string
}

func (s *stubService) GetRecords(ctx context.Context, companyID string, q ListRecordsQuery) ([]RecordResponse, *response.PaginationMeta, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	meta := response.NewPaginationMeta(int64(len(s.records)), 1, 20)
	return s.records, &meta, nil
}

func (s *stubService) GetRecordByID(ctx context.Context, companyID, id string) (RecordResponse, error) {
	return s.record, s.err
}

func (s *stubService) SupplementCheckIn(ctx context.Context, companyID, recordID, operatorID string, req SupplementRequest) (RecordResponse, error) {
	s.lastRecord, s.lastSuppl = recordID, req
	return s.record, s.err
}

func (s *stubService) SupplementCheckOut(ctx context.Context, companyID, recordID, operatorID string, req SupplementRequest) (RecordResponse, error) {
	s.lastRecord, s.lastSuppl = recordID, req
	return s.record, s.err
}

func (s *stubService) IngestPunch(ctx context.Context, companyID string, req IngestPunchRequest) (PunchResponse, error) {
	return s.punch, s.err
}

func (s *stubService) Recalculate(ctx context.Context, companyID, employeeID string, date time.Time) (*DailyRecord, error) {
	return nil, s.err
}

func setupRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("company_id", testCompanyID.String())
		c.Set("user_id", testEmployeeID.String())
	})

	h := NewHandler(svc)
	r.GET("/attendance/records", h.GetRecords)
	r.GET("/attendance/records/:id", h.GetRecordByID)
	r.POST("/attendance/records/:id/supplement-check-in", h.SupplementCheckIn)
	r.POST("/attendance/records/:id/supplement-check-out", h.SupplementCheckOut)
	r.POST("/attendance/punches", h.IngestPunch)
	return r
}

func TestGetRecordsHandler(t *testing.T) {
	svc := &stubService{records: []RecordResponse{{ID: "r1", Status: StatusLate}}}
	router := setupRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/attendance/records?status=LATE", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var env response.ApiEnvelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Ok)
	assert.NotNil(t, env.Meta)
}

func TestGetRecordsHandlerRejectsBadStatus(t *testing.T) {
	router := setupRouter(&stubService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/attendance/records?status=SLEEPING", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSupplementCheckInHandler(t *testing.T) {
	svc := &stubService{record: RecordResponse{ID: "r1", Status: StatusNormal}}
	router := setupRouter(svc)

	body, _ := json.Marshal(SupplementRequest{
		ClockTime: "2026-03-02T09:00:00Z",
		Remark:    "badge left at home",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/attendance/records/r1/supplement-check-in", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "r1", svc.lastRecord)
	assert.Equal(t, "badge left at home", svc.lastSuppl.Remark)
}

func TestSupplementHandlerRequiresRemark(t *testing.T) {
	router := setupRouter(&stubService{})

	body := []byte(`{"clock_time":"2026-03-02T09:00:00Z"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/attendance/records/r1/supplement-check-out", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSupplementHandlerMapsServiceError(t *testing.T) {
	svc := &stubService{err: attendanceerrors.ErrRecordNotFound}
	router := setupRouter(svc)

	body, _ := json.Marshal(SupplementRequest{ClockTime: "2026-03-02T03:00:00Z", Remark: "way off"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/attendance/records/r1/supplement-check-in", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIngestPunchHandler(t *testing.T) {
	svc := &stubService{punch: PunchResponse{ID: "p1", Direction: DirectionCheckIn}}
	router := setupRouter(svc)

	body, _ := json.Marshal(IngestPunchRequest{
		EmployeeID: testEmployeeID.String(),
		ClockTime:  "2026-03-02T09:00:00Z",
		Direction:  DirectionCheckIn,
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/attendance/punches", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestIngestPunchHandlerRejectsBadDirection(t *testing.T) {
	router := setupRouter(&stubService{})

	body := []byte(`{"employee_id":"` + testEmployeeID.String() + `","clock_time":"2026-03-02T09:00:00Z","direction":"SIDEWAYS"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/attendance/punches", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
