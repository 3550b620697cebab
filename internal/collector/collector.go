package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/mohdhamzakhan/PLCDataCollector/internal/config"
	"github.com/mohdhamzakhan/PLCDataCollector/internal/models"
	"github.com/mohdhamzakhan/PLCDataCollector/internal/plc"
	"github.com/mohdhamzakhan/PLCDataCollector/internal/production"
)

const (
	healthProbeInterval = 5 * time.Minute
	healthRetryInterval = time.Minute
)

// Staging is the slice of the staging store the collector writes to.
type Staging interface {
	InsertReading(lineID, payload string, ts time.Time) (int64, error)
}

// Broadcaster pushes collector output to connected clients.
type Broadcaster interface {
	BroadcastProduction(lineID string, snapshot *models.ProductionSnapshot)
	BroadcastGraph(lineID string, graph *models.RealTimeGraphData)
	BroadcastAlert(alert models.Alert)
}

// Collector polls every configured line on a fixed cadence, stages the raw
// payloads, and broadcasts the derived production state.
type Collector struct {
	lines   *config.Lines
	reader  plc.Reader
	store   Staging
	tracker *production.Tracker
	hub     Broadcaster
	cfg     *config.AppConfig

	sleep func(ctx context.Context, d time.Duration) bool
}

func New(lines *config.Lines, reader plc.Reader, store Staging, tracker *production.Tracker, hub Broadcaster, cfg *config.AppConfig) *Collector {
	return &Collector{
		lines:   lines,
		reader:  reader,
		store:   store,
		tracker: tracker,
		hub:     hub,
		cfg:     cfg,
		sleep:   sleepCtx,
	}
}

// Run drives the collection loop until ctx is cancelled. A tick that fails
// for every line doubles the wait before the next tick.
func (c *Collector) Run(ctx context.Context) {
	interval := time.Duration(c.cfg.RealTime.UpdateFrequency) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}
	fmt.Printf("[Collector] started, polling %d lines every %v\n", c.lines.Count(), interval)

	for {
		wait := interval
		if c.cfg.RealTime.ShowLiveMetrics {
			// A tick where every line failed waits double before retrying.
			if c.CollectAll(ctx) == 0 && c.lines.Count() > 0 {
				wait = 2 * interval
			}
		}
		if !c.sleep(ctx, wait) {
			fmt.Println("[Collector] stopped")
			return
		}
	}
}

// CollectAll polls every line once and returns how many succeeded. A failing
// line never blocks the others.
func (c *Collector) CollectAll(ctx context.Context) int {
	succeeded := 0
	for _, id := range c.lines.IDs() {
		if ctx.Err() != nil {
			return succeeded
		}
		line, ok := c.lines.Get(id)
		if !ok {
			continue
		}
		if err := c.collectLine(ctx, line); err != nil {
			fmt.Printf("[Collector] line %s: %v\n", id, err)
			continue
		}
		succeeded++
	}
	return succeeded
}

func (c *Collector) collectLine(ctx context.Context, line *config.Line) error {
	reading, err := c.reader.Read(ctx, line)
	if err != nil {
		return err
	}

	snapshot := production.BuildSnapshot(line, reading)

	if _, err := c.store.InsertReading(line.LineID, reading.Payload, reading.Timestamp); err != nil {
		return err
	}

	c.hub.BroadcastProduction(line.LineID, snapshot)

	c.tracker.AddPoint(line.LineID, snapshot.Timestamp, snapshot.ActualCount)
	c.hub.BroadcastGraph(line.LineID, c.tracker.GraphData(line, snapshot.Timestamp))

	for _, alert := range production.EvaluateAlerts(snapshot, c.cfg.RealTime.AlertThresholds) {
		c.tracker.AddAlert(line.LineID, alert)
		c.hub.BroadcastAlert(alert)
	}
	return nil
}

// RunHealthProbe checks connectivity for every line on a slow cadence,
// retrying sooner after a failing pass.
func (c *Collector) RunHealthProbe(ctx context.Context) {
	for {
		wait := healthProbeInterval
		if !c.probeAll(ctx) {
			wait = healthRetryInterval
		}
		if !c.sleep(ctx, wait) {
			return
		}
	}
}

func (c *Collector) probeAll(ctx context.Context) bool {
	allUp := true
	for _, id := range c.lines.IDs() {
		if ctx.Err() != nil {
			return allUp
		}
		line, ok := c.lines.Get(id)
		if !ok {
			continue
		}
		if !c.reader.TestConnection(ctx, line) {
			fmt.Printf("[Collector] line %s: connection check failed\n", id)
			allUp = false
		}
	}
	return allUp
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
