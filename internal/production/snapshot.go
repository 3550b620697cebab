package production

import (
	"time"

	"github.com/mohdhamzakhan/PLCDataCollector/internal/config"
	"github.com/mohdhamzakhan/PLCDataCollector/internal/models"
	"github.com/mohdhamzakhan/PLCDataCollector/internal/parser"
)

// BuildSnapshot computes the production snapshot for one raw reading.
func BuildSnapshot(line *config.Line, reading *models.RawReading) *models.ProductionSnapshot {
	layout := &line.Layout
	actual := parser.ExtractCount(reading.Payload, layout)
	running := parser.DetermineRunning(reading.Payload, layout)

	shiftName := "Unknown"
	planned := 0
	if shift, ok := CurrentShift(line, reading.Timestamp); ok {
		shiftName = shift.Name
		planned = PlannedCount(shift, reading.Timestamp)
	}

	status := models.StatusIdle
	if running {
		status = models.StatusRunning
	}

	return &models.ProductionSnapshot{
		LineID:       line.LineID,
		Timestamp:    reading.Timestamp,
		ActualCount:  actual,
		PlannedCount: planned,
		CycleTime:    parser.ExtractCycleTime(reading.Payload, layout),
		PartNumber:   parser.ExtractPartNumber(reading.Payload, layout),
		ShiftName:    shiftName,
		Efficiency:   Efficiency(actual, planned),
		IsRunning:    running,
		Status:       status,
	}
}

// ShiftStatusFor summarizes the current shift for a snapshot, including the
// alerts raised against it. A line with no resolvable shift configuration
// yields an error status with a single configuration alert.
func ShiftStatusFor(line *config.Line, snapshot *models.ProductionSnapshot, thresholds config.AlertThresholds, now time.Time) models.ShiftStatus {
	shift, ok := CurrentShift(line, now)
	if !ok {
		return models.ShiftStatus{
			Status: models.StatusError,
			Alerts: []models.Alert{{
				Type:      models.AlertConfiguration,
				Message:   "No shift configuration found",
				Severity:  models.SeverityCritical,
				Timestamp: now,
			}},
		}
	}

	start, end := ShiftBounds(shift, now)
	return models.ShiftStatus{
		CurrentShift:  shift.Name,
		ShiftStart:    start,
		ShiftEnd:      end,
		TimeRemaining: end.Sub(now),
		ActualCount:   snapshot.ActualCount,
		PlannedCount:  snapshot.PlannedCount,
		Efficiency:    snapshot.Efficiency,
		Status:        snapshot.Status,
		Alerts:        EvaluateAlerts(snapshot, thresholds),
	}
}
