package collector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mohdhamzakhan/PLCDataCollector/internal/config"
	"github.com/mohdhamzakhan/PLCDataCollector/internal/models"
	"github.com/mohdhamzakhan/PLCDataCollector/internal/production"
	"github.com/mohdhamzakhan/PLCDataCollector/internal/testutil"
)

const testLinesYAML = `
lines:
  LINE-01:
    transport:
      kind: register
      host: 127.0.0.1
    shifts:
      shiftA: {name: A, startTime: "06:00", endTime: "14:00"}
      shiftB: {name: B, startTime: "14:00", endTime: "22:00"}
      shiftC: {name: C, startTime: "22:00", endTime: "06:00"}
  LINE-02:
    transport:
      kind: register
      host: 127.0.0.2
    shifts:
      shiftA: {name: A, startTime: "06:00", endTime: "14:00"}
      shiftB: {name: B, startTime: "14:00", endTime: "22:00"}
      shiftC: {name: C, startTime: "22:00", endTime: "06:00"}
`

// fakeReader serves canned payloads per line and can fail selectively.
type fakeReader struct {
	payloads map[string]string
	failing  map[string]bool
	up       map[string]bool
}

func (r *fakeReader) Read(ctx context.Context, line *config.Line) (*models.RawReading, error) {
	if r.failing[line.LineID] {
		return nil, errors.New("device unreachable")
	}
	return &models.RawReading{
		LineID:    line.LineID,
		Payload:   r.payloads[line.LineID],
		Timestamp: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
	}, nil
}

func (r *fakeReader) TestConnection(ctx context.Context, line *config.Line) bool {
	return r.up[line.LineID]
}

// fakeBroadcaster records every push.
type fakeBroadcaster struct {
	mu        sync.Mutex
	snapshots []*models.ProductionSnapshot
	graphs    int
	alerts    []models.Alert
}

func (b *fakeBroadcaster) BroadcastProduction(lineID string, snapshot *models.ProductionSnapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snapshots = append(b.snapshots, snapshot)
}

func (b *fakeBroadcaster) BroadcastGraph(lineID string, graph *models.RealTimeGraphData) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.graphs++
}

func (b *fakeBroadcaster) BroadcastAlert(alert models.Alert) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.alerts = append(b.alerts, alert)
}

func newTestCollector(t *testing.T, reader *fakeReader) (*Collector, *testutil.MockStaging, *fakeBroadcaster, *production.Tracker) {
	t.Helper()
	lines, err := config.ParseLines([]byte(testLinesYAML))
	if err != nil {
		t.Fatalf("Failed to parse lines: %v", err)
	}

	store := testutil.NewMockStaging()
	broadcaster := &fakeBroadcaster{}
	tracker := production.NewTracker(100)
	cfg := config.DefaultConfig()

	c := New(lines, reader, store, tracker, broadcaster, cfg)
	return c, store, broadcaster, tracker
}

func TestCollectAll(t *testing.T) {
	reader := &fakeReader{
		payloads: map[string]string{
			"LINE-01": `{"ProductionCount": 100, "PartNumber": "P1", "Status": 1}`,
			"LINE-02": `{"ProductionCount": 50, "Status": 0}`,
		},
		failing: map[string]bool{},
	}
	c, store, broadcaster, _ := newTestCollector(t, reader)

	if got := c.CollectAll(context.Background()); got != 2 {
		t.Fatalf("Expected 2 successful lines, got %d", got)
	}

	// Every reading lands in staging unsynced.
	for _, lineID := range []string{"LINE-01", "LINE-02"} {
		pending, _ := store.CountUnsynced(lineID)
		if pending != 1 {
			t.Errorf("Expected 1 staged record for %s, got %d", lineID, pending)
		}
	}

	if len(broadcaster.snapshots) != 2 {
		t.Fatalf("Expected 2 production broadcasts, got %d", len(broadcaster.snapshots))
	}
	if broadcaster.snapshots[0].ActualCount != 100 || !broadcaster.snapshots[0].IsRunning {
		t.Errorf("Unexpected first snapshot: %+v", broadcaster.snapshots[0])
	}
	if broadcaster.graphs != 2 {
		t.Errorf("Expected 2 graph broadcasts, got %d", broadcaster.graphs)
	}
}

func TestCollectAllFailureIsolation(t *testing.T) {
	reader := &fakeReader{
		payloads: map[string]string{
			"LINE-02": `{"ProductionCount": 50, "Status": 1}`,
		},
		failing: map[string]bool{"LINE-01": true},
	}
	c, store, broadcaster, _ := newTestCollector(t, reader)

	if got := c.CollectAll(context.Background()); got != 1 {
		t.Fatalf("Expected 1 successful line, got %d", got)
	}

	if pending, _ := store.CountUnsynced("LINE-01"); pending != 0 {
		t.Errorf("Expected nothing staged for the failing line, got %d", pending)
	}
	if pending, _ := store.CountUnsynced("LINE-02"); pending != 1 {
		t.Errorf("Expected the healthy line staged, got %d", pending)
	}
	if len(broadcaster.snapshots) != 1 || broadcaster.snapshots[0].LineID != "LINE-02" {
		t.Errorf("Expected only LINE-02 broadcast, got %+v", broadcaster.snapshots)
	}
}

func TestCollectLineRaisesAlerts(t *testing.T) {
	// At 08:00 shift A has planned 120; an actual of 60 is 50% efficiency,
	// far behind schedule, and status 0 means idle.
	reader := &fakeReader{
		payloads: map[string]string{
			"LINE-01": `{"ProductionCount": 60, "Status": 0}`,
			"LINE-02": `{"ProductionCount": 120, "Status": 1}`,
		},
		failing: map[string]bool{},
	}
	c, _, broadcaster, tracker := newTestCollector(t, reader)

	c.CollectAll(context.Background())

	var behind, idle bool
	for _, alert := range broadcaster.alerts {
		switch alert.Type {
		case models.AlertBehindSchedule:
			behind = true
			if alert.Severity != models.SeverityCritical {
				t.Errorf("Expected critical behind alert at 50%%, got %s", alert.Severity)
			}
		case models.AlertIdle:
			idle = true
		}
	}
	if !behind || !idle {
		t.Errorf("Expected behind and idle alerts, got %+v", broadcaster.alerts)
	}

	// Alerts land in the per-line ring too.
	if got := tracker.ActiveAlerts("LINE-01"); len(got) != 2 {
		t.Errorf("Expected 2 tracked alerts for LINE-01, got %d", len(got))
	}
	if got := tracker.ActiveAlerts("LINE-02"); len(got) != 0 {
		t.Errorf("Expected no alerts for the on-schedule line, got %d", len(got))
	}
}

func TestCollectAllStopsOnCancel(t *testing.T) {
	reader := &fakeReader{payloads: map[string]string{}, failing: map[string]bool{}}
	c, _, broadcaster, _ := newTestCollector(t, reader)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if got := c.CollectAll(ctx); got != 0 {
		t.Errorf("Expected no collection after cancel, got %d", got)
	}
	if len(broadcaster.snapshots) != 0 {
		t.Errorf("Expected no broadcasts after cancel, got %d", len(broadcaster.snapshots))
	}
}
