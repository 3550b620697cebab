package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/mohdhamzakhan/PLCDataCollector/internal/config"
	"github.com/mohdhamzakhan/PLCDataCollector/internal/models"
	"github.com/mohdhamzakhan/PLCDataCollector/internal/production"
)

const testLinesYAML = `
lines:
  LINE-01:
    lineName: Assembly 1
    transport:
      kind: register
      host: 127.0.0.1
    shifts:
      shiftA: {name: A, startTime: "06:00", endTime: "14:00"}
      shiftB: {name: B, startTime: "14:00", endTime: "22:00"}
      shiftC: {name: C, startTime: "22:00", endTime: "06:00"}
`

type stubMonitor struct {
	healthy  bool
	statuses map[string]models.SyncStatus
}

func (s *stubMonitor) GetSyncStatus(lineID string) models.SyncStatus {
	return s.statuses[lineID]
}

func (s *stubMonitor) GetAllSyncStatus() []models.SyncStatus {
	var out []models.SyncStatus
	for _, st := range s.statuses {
		out = append(out, st)
	}
	return out
}

func (s *stubMonitor) IsHealthy() bool { return s.healthy }

func (s *stubMonitor) Summary() map[string]any {
	return map[string]any{"isHealthy": s.healthy}
}

type stubStore struct {
	records []models.StagedRecord
	err     error
}

func (s *stubStore) RecentReadings(lineID string, limit int) ([]models.StagedRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	if limit < len(s.records) {
		return s.records[:limit], nil
	}
	return s.records, nil
}

type stubTester struct{ up bool }

func (s *stubTester) TestConnection(ctx context.Context, line *config.Line) bool { return s.up }

func newTestHandler(t *testing.T, monitor *stubMonitor, store *stubStore) *Handler {
	t.Helper()
	lines, err := config.ParseLines([]byte(testLinesYAML))
	if err != nil {
		t.Fatalf("Failed to parse lines: %v", err)
	}
	return NewHandler(lines, monitor, store, &stubTester{up: true}, production.NewTracker(100), config.DefaultConfig())
}

func ctxWithLine(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, lineID string) echo.Context {
	c := e.NewContext(req, rec)
	c.SetParamNames("lineId")
	c.SetParamValues(lineID)
	return c
}

func TestHandleHealth(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, &stubMonitor{healthy: true}, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if assert.NoError(t, h.HandleHealth(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"ok"`)
		assert.Contains(t, rec.Body.String(), `"lineCount":1`)
	}
}

func TestHandleHealthDegraded(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, &stubMonitor{healthy: false}, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if assert.NoError(t, h.HandleHealth(c)) {
		assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
	}
}

func TestHandleSyncStatus(t *testing.T) {
	e := echo.New()
	monitor := &stubMonitor{
		healthy: true,
		statuses: map[string]models.SyncStatus{
			"LINE-01": {LineID: "LINE-01", IsInSync: true, PendingRecords: 0},
		},
	}
	h := newTestHandler(t, monitor, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/sync/status/LINE-01", nil)
	rec := httptest.NewRecorder()
	c := ctxWithLine(e, req, rec, "LINE-01")

	if assert.NoError(t, h.HandleSyncStatus(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"isInSync":true`)
	}
}

func TestHandleSyncStatusUnknownLine(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, &stubMonitor{healthy: true}, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/sync/status/NOPE", nil)
	rec := httptest.NewRecorder()
	c := ctxWithLine(e, req, rec, "NOPE")

	err := h.HandleSyncStatus(c)
	if assert.Error(t, err) {
		apiErr, ok := err.(*APIError)
		if assert.True(t, ok) {
			assert.Equal(t, http.StatusNotFound, apiErr.Status)
		}
	}
}

func TestHandleProduction(t *testing.T) {
	e := echo.New()
	store := &stubStore{records: []models.StagedRecord{{
		ID:        1,
		LineID:    "LINE-01",
		Payload:   `{"ProductionCount": 120, "PartNumber": "P7", "Status": 1}`,
		Timestamp: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
	}}}
	h := newTestHandler(t, &stubMonitor{healthy: true}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/lines/LINE-01/production", nil)
	rec := httptest.NewRecorder()
	c := ctxWithLine(e, req, rec, "LINE-01")

	if assert.NoError(t, h.HandleProduction(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"actualCount":120`)
		assert.Contains(t, rec.Body.String(), `"partNumber":"P7"`)
	}
}

func TestHandleProductionNoData(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, &stubMonitor{healthy: true}, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/lines/LINE-01/production", nil)
	rec := httptest.NewRecorder()
	c := ctxWithLine(e, req, rec, "LINE-01")

	err := h.HandleProduction(c)
	if assert.Error(t, err) {
		apiErr, ok := err.(*APIError)
		if assert.True(t, ok) {
			assert.Equal(t, http.StatusNotFound, apiErr.Status)
		}
	}
}

func TestHandleReadings(t *testing.T) {
	e := echo.New()
	store := &stubStore{records: []models.StagedRecord{
		{ID: 2, LineID: "LINE-01", Payload: "b", Timestamp: time.Now()},
		{ID: 1, LineID: "LINE-01", Payload: "a", Timestamp: time.Now()},
	}}
	h := newTestHandler(t, &stubMonitor{healthy: true}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/lines/LINE-01/readings", nil)
	rec := httptest.NewRecorder()
	c := ctxWithLine(e, req, rec, "LINE-01")

	if assert.NoError(t, h.HandleReadings(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"payload":"b"`)
	}
}

func TestHandleReadingsMsgpack(t *testing.T) {
	e := echo.New()
	store := &stubStore{records: []models.StagedRecord{
		{ID: 1, LineID: "LINE-01", Payload: "a", Timestamp: time.Now()},
	}}
	h := newTestHandler(t, &stubMonitor{healthy: true}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/lines/LINE-01/readings?format=msgpack", nil)
	rec := httptest.NewRecorder()
	c := ctxWithLine(e, req, rec, "LINE-01")

	if assert.NoError(t, h.HandleReadings(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/msgpack", rec.Header().Get(echo.HeaderContentType))

		var decoded []models.StagedRecord
		assert.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &decoded))
		assert.Len(t, decoded, 1)
		assert.Equal(t, "a", decoded[0].Payload)
	}
}

func TestHandleReadingsBadLimit(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, &stubMonitor{healthy: true}, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/lines/LINE-01/readings?limit=abc", nil)
	rec := httptest.NewRecorder()
	c := ctxWithLine(e, req, rec, "LINE-01")

	err := h.HandleReadings(c)
	if assert.Error(t, err) {
		apiErr, ok := err.(*APIError)
		if assert.True(t, ok) {
			assert.Equal(t, http.StatusBadRequest, apiErr.Status)
		}
	}
}

func TestHandleReadingsStoreFailure(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, &stubMonitor{healthy: true}, &stubStore{err: errors.New("db gone")})

	req := httptest.NewRequest(http.MethodGet, "/api/lines/LINE-01/readings", nil)
	rec := httptest.NewRecorder()
	c := ctxWithLine(e, req, rec, "LINE-01")

	err := h.HandleReadings(c)
	if assert.Error(t, err) {
		apiErr, ok := err.(*APIError)
		if assert.True(t, ok) {
			assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
		}
	}
}

func TestHandleTestConnection(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, &stubMonitor{healthy: true}, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/lines/LINE-01/test", nil)
	rec := httptest.NewRecorder()
	c := ctxWithLine(e, req, rec, "LINE-01")

	if assert.NoError(t, h.HandleTestConnection(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"connected":true`)
		assert.Contains(t, rec.Body.String(), `"transport":"register"`)
	}
}

func TestHandleAlertsEmpty(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, &stubMonitor{healthy: true}, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/lines/LINE-01/alerts", nil)
	rec := httptest.NewRecorder()
	c := ctxWithLine(e, req, rec, "LINE-01")

	if assert.NoError(t, h.HandleAlerts(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"alerts":[]`)
		assert.Contains(t, rec.Body.String(), `"count":0`)
	}
}

func TestErrorHandlerEnvelope(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ErrorHandler(NewNotFoundError("line", "NOPE"), c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"NOT_FOUND"`)
	assert.Contains(t, rec.Body.String(), "line not found: NOPE")
}
