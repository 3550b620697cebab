// handlers.go - HTTP handlers for collector state and line data
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/mohdhamzakhan/PLCDataCollector/internal/config"
	"github.com/mohdhamzakhan/PLCDataCollector/internal/models"
	"github.com/mohdhamzakhan/PLCDataCollector/internal/production"
)

const defaultReadingsLimit = 50

// SyncMonitor is the slice of the sync monitor the API reads from.
type SyncMonitor interface {
	GetSyncStatus(lineID string) models.SyncStatus
	GetAllSyncStatus() []models.SyncStatus
	IsHealthy() bool
	Summary() map[string]any
}

// ReadingStore is the slice of the staging store the API reads from.
type ReadingStore interface {
	RecentReadings(lineID string, limit int) ([]models.StagedRecord, error)
}

// ConnectionTester probes a line's transport.
type ConnectionTester interface {
	TestConnection(ctx context.Context, line *config.Line) bool
}

// Handler serves the collector's HTTP API.
type Handler struct {
	lines   *config.Lines
	monitor SyncMonitor
	store   ReadingStore
	tester  ConnectionTester
	tracker *production.Tracker
	cfg     *config.AppConfig
}

// NewHandler creates the API handler with its dependencies.
func NewHandler(lines *config.Lines, monitor SyncMonitor, store ReadingStore, tester ConnectionTester, tracker *production.Tracker, cfg *config.AppConfig) *Handler {
	return &Handler{
		lines:   lines,
		monitor: monitor,
		store:   store,
		tester:  tester,
		tracker: tracker,
		cfg:     cfg,
	}
}

// HandleHealth returns overall service health including sync state.
func (h *Handler) HandleHealth(c echo.Context) error {
	status := "ok"
	if !h.monitor.IsHealthy() {
		status = "degraded"
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":    status,
		"lineCount": h.lines.Count(),
		"sync":      h.monitor.Summary(),
		"timestamp": time.Now(),
	})
}

// HandleListLines returns the configured line IDs.
func (h *Handler) HandleListLines(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"lines": h.lines.IDs(),
		"count": h.lines.Count(),
	})
}

// HandleSyncStatusAll returns sync status for every configured line.
func (h *Handler) HandleSyncStatusAll(c echo.Context) error {
	return c.JSON(http.StatusOK, h.monitor.GetAllSyncStatus())
}

// HandleSyncStatus returns sync status for one line.
func (h *Handler) HandleSyncStatus(c echo.Context) error {
	line, err := h.requireLine(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.monitor.GetSyncStatus(line.LineID))
}

// HandleTestConnection probes the line's transport and reports reachability.
func (h *Handler) HandleTestConnection(c echo.Context) error {
	line, err := h.requireLine(c)
	if err != nil {
		return err
	}
	connected := h.tester.TestConnection(c.Request().Context(), line)
	return c.JSON(http.StatusOK, map[string]any{
		"lineId":    line.LineID,
		"connected": connected,
		"transport": line.Transport.Kind,
		"timestamp": time.Now(),
	})
}

// HandleProduction returns the production snapshot derived from the line's
// most recent staged reading.
func (h *Handler) HandleProduction(c echo.Context) error {
	line, err := h.requireLine(c)
	if err != nil {
		return err
	}

	records, err := h.store.RecentReadings(line.LineID, 1)
	if err != nil {
		return NewInternalError("failed to read staged data", err)
	}
	if len(records) == 0 {
		return NewNotFoundError("production data", line.LineID)
	}

	reading := &models.RawReading{
		LineID:    records[0].LineID,
		Payload:   records[0].Payload,
		Timestamp: records[0].Timestamp,
	}
	snapshot := production.BuildSnapshot(line, reading)
	shift := production.ShiftStatusFor(line, snapshot, h.cfg.RealTime.AlertThresholds, time.Now())

	return c.JSON(http.StatusOK, map[string]any{
		"snapshot": snapshot,
		"shift":    shift,
	})
}

// HandleGraph returns the live graph series for one line.
func (h *Handler) HandleGraph(c echo.Context) error {
	line, err := h.requireLine(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.tracker.GraphData(line, time.Now()))
}

// HandleReadings returns a line's most recent staged readings. Pass
// ?format=msgpack for a MessagePack response body.
func (h *Handler) HandleReadings(c echo.Context) error {
	line, err := h.requireLine(c)
	if err != nil {
		return err
	}

	limit := defaultReadingsLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return NewBadRequestError("limit must be a positive integer", err)
		}
		limit = n
	}

	records, err := h.store.RecentReadings(line.LineID, limit)
	if err != nil {
		return NewInternalError("failed to read staged data", err)
	}
	if records == nil {
		records = []models.StagedRecord{}
	}

	if c.QueryParam("format") == "msgpack" {
		data, err := msgpack.Marshal(records)
		if err != nil {
			return NewInternalError("failed to encode readings", err)
		}
		return c.Blob(http.StatusOK, "application/msgpack", data)
	}
	return c.JSON(http.StatusOK, records)
}

// HandleAlerts returns a line's alerts from the last hour.
func (h *Handler) HandleAlerts(c echo.Context) error {
	line, err := h.requireLine(c)
	if err != nil {
		return err
	}
	alerts := h.tracker.ActiveAlerts(line.LineID)
	if alerts == nil {
		alerts = []models.Alert{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"lineId": line.LineID,
		"alerts": alerts,
		"count":  len(alerts),
	})
}

func (h *Handler) requireLine(c echo.Context) (*config.Line, error) {
	id := c.Param("lineId")
	if id == "" {
		return nil, NewBadRequestError("lineId is required", nil)
	}
	line, ok := h.lines.Get(id)
	if !ok {
		return nil, NewNotFoundError("line", id)
	}
	return line, nil
}
