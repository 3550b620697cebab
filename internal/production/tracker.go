package production

import (
	"sync"
	"time"

	"github.com/mohdhamzakhan/PLCDataCollector/internal/config"
	"github.com/mohdhamzakhan/PLCDataCollector/internal/models"
)

// maxAlertsPerLine caps each line's alert ring buffer.
const maxAlertsPerLine = 50

// activeAlertWindow bounds how far back ActiveAlerts looks.
const activeAlertWindow = time.Hour

// plannedPointStep is the sample spacing of the planned graph series.
const plannedPointStep = 5 // minutes

// Tracker owns the process-scoped per-line state: live graph points and the
// capped alert ring. It replaces the hidden static caches of earlier
// designs with explicit injected state.
type Tracker struct {
	mu        sync.Mutex
	maxPoints int
	actual    map[string][]models.GraphPoint
	alerts    map[string][]models.Alert
}

// NewTracker creates a tracker capping each line's actual series at
// maxPoints (defaulting to 100 when non-positive).
func NewTracker(maxPoints int) *Tracker {
	if maxPoints <= 0 {
		maxPoints = 100
	}
	return &Tracker{
		maxPoints: maxPoints,
		actual:    make(map[string][]models.GraphPoint),
		alerts:    make(map[string][]models.Alert),
	}
}

// AddPoint appends one actual-production sample for a line, trimming the
// oldest point past the cap.
func (t *Tracker) AddPoint(lineID string, ts time.Time, value int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	points := append(t.actual[lineID], models.GraphPoint{Timestamp: ts, Value: value})
	if len(points) > t.maxPoints {
		points = points[1:]
	}
	t.actual[lineID] = points
}

// AddAlert appends an alert to a line's ring buffer, dropping the oldest
// entry past the cap.
func (t *Tracker) AddAlert(lineID string, alert models.Alert) {
	t.mu.Lock()
	defer t.mu.Unlock()

	alerts := append(t.alerts[lineID], alert)
	if len(alerts) > maxAlertsPerLine {
		alerts = alerts[1:]
	}
	t.alerts[lineID] = alerts
}

// ActiveAlerts returns a line's alerts from the last hour, newest last.
func (t *Tracker) ActiveAlerts(lineID string) []models.Alert {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := time.Now().Add(-activeAlertWindow)
	var active []models.Alert
	for _, alert := range t.alerts[lineID] {
		if alert.Timestamp.After(cutoff) {
			active = append(active, alert)
		}
	}
	return active
}

// GraphData assembles the live graph payload for a line: the recorded actual
// series, a planned series sampled every five minutes from the shift start
// up to now, and the day's shift boundaries.
func (t *Tracker) GraphData(line *config.Line, now time.Time) *models.RealTimeGraphData {
	graph := &models.RealTimeGraphData{
		LastUpdated:  now,
		CurrentShift: "Unknown",
	}

	t.mu.Lock()
	points := t.actual[line.LineID]
	graph.ActualProduction = make([]models.GraphPoint, len(points))
	copy(graph.ActualProduction, points)
	t.mu.Unlock()

	if shift, ok := CurrentShift(line, now); ok {
		graph.CurrentShift = shift.Name
		graph.PlannedProduction = plannedSeries(shift, now)
	}
	graph.ShiftBoundaries = shiftBoundaries(line, now)
	return graph
}

func plannedSeries(shift config.ShiftWindow, now time.Time) []models.GraphPoint {
	start, end := ShiftBounds(shift, now)
	totalMinutes := int(end.Sub(start).Minutes())

	var points []models.GraphPoint
	for i := 0; i <= totalMinutes; i += plannedPointStep {
		ts := start.Add(time.Duration(i) * time.Minute)
		if ts.After(now) {
			break
		}
		points = append(points, models.GraphPoint{
			Timestamp: ts,
			Value:     int(float64(i) / 60.0 * defaultRatePerHour),
		})
	}
	return points
}

func shiftBoundaries(line *config.Line, now time.Time) []models.ShiftBoundary {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var boundaries []models.ShiftBoundary
	for _, shift := range line.Shifts.Windows() {
		start := shift.StartMinutes()
		if start < 0 {
			continue
		}
		boundaries = append(boundaries, models.ShiftBoundary{
			Timestamp: midnight.Add(time.Duration(start) * time.Minute),
			ShiftName: shift.Name,
			Color:     shift.Color,
		})
	}
	return boundaries
}
