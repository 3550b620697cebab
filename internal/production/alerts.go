package production

import (
	"fmt"
	"time"

	"github.com/mohdhamzakhan/PLCDataCollector/internal/config"
	"github.com/mohdhamzakhan/PLCDataCollector/internal/models"
)

// criticalEfficiency is the efficiency floor below which a behind-schedule
// alert escalates from Warning to Critical.
const criticalEfficiency = 85

// EvaluateAlerts derives zero or more alerts from a production snapshot.
// It is a pure function: generation is decoupled from delivery, so a
// broadcast failure can never affect collection.
func EvaluateAlerts(snapshot *models.ProductionSnapshot, thresholds config.AlertThresholds) []models.Alert {
	var alerts []models.Alert
	now := time.Now()
	eff := snapshot.Efficiency

	if eff < float64(100-thresholds.BehindSchedule) {
		severity := models.SeverityWarning
		if eff < criticalEfficiency {
			severity = models.SeverityCritical
		}
		alerts = append(alerts, models.Alert{
			Type:      models.AlertBehindSchedule,
			Message:   fmt.Sprintf("Production is %.1f%% behind schedule", 100-eff),
			Severity:  severity,
			Timestamp: now,
		})
	} else if eff > float64(100+thresholds.AheadSchedule) {
		alerts = append(alerts, models.Alert{
			Type:      models.AlertAheadSchedule,
			Message:   fmt.Sprintf("Production is %.1f%% ahead of schedule", eff-100),
			Severity:  models.SeverityInfo,
			Timestamp: now,
		})
	}

	// Idle fires independently of the schedule alerts.
	if snapshot.Status == models.StatusIdle {
		alerts = append(alerts, models.Alert{
			Type:      models.AlertIdle,
			Message:   "Production line is currently idle",
			Severity:  models.SeverityWarning,
			Timestamp: now,
		})
	}

	return alerts
}
