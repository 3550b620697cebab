package models

import "time"

// ProductionStatus represents the operating state of a production line.
type ProductionStatus string

const (
	StatusIdle        ProductionStatus = "Idle"
	StatusRunning     ProductionStatus = "Running"
	StatusStopped     ProductionStatus = "Stopped"
	StatusMaintenance ProductionStatus = "Maintenance"
	StatusError       ProductionStatus = "Error"
	StatusCompleted   ProductionStatus = "Completed"
	StatusScheduled   ProductionStatus = "Scheduled"
	StatusSetup       ProductionStatus = "Setup"
)

// ProductionSnapshot is the computed state of one line at one collection tick.
type ProductionSnapshot struct {
	LineID       string           `json:"lineId"`
	Timestamp    time.Time        `json:"timestamp"`
	ActualCount  int              `json:"actualCount"`
	PlannedCount int              `json:"plannedCount"`
	CycleTime    int              `json:"cycleTime"` // seconds
	PartNumber   string           `json:"partNumber"`
	ShiftName    string           `json:"shiftName"`
	Efficiency   float64          `json:"efficiency"`
	IsRunning    bool             `json:"isRunning"`
	Status       ProductionStatus `json:"status"`
}

// ShiftStatus summarizes the current shift for one line, including any alerts
// raised against the latest snapshot.
type ShiftStatus struct {
	CurrentShift    string           `json:"currentShift"`
	ShiftStart      time.Time        `json:"shiftStart"`
	ShiftEnd        time.Time        `json:"shiftEnd"`
	TimeRemaining   time.Duration    `json:"timeRemaining"`
	ActualCount     int              `json:"actualCount"`
	PlannedCount    int              `json:"plannedCount"`
	Efficiency      float64          `json:"efficiency"`
	Status          ProductionStatus `json:"status"`
	Alerts          []Alert          `json:"alerts"`
}

// GraphPoint is one sample on a production graph series.
type GraphPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     int       `json:"value"`
	Label     string    `json:"label,omitempty"`
}

// ShiftBoundary marks a shift start on the graph time axis.
type ShiftBoundary struct {
	Timestamp time.Time `json:"timestamp"`
	ShiftName string    `json:"shiftName"`
	Color     string    `json:"color"`
}

// RealTimeGraphData carries the live graph series for one line.
type RealTimeGraphData struct {
	ActualProduction  []GraphPoint    `json:"actualProduction"`
	PlannedProduction []GraphPoint    `json:"plannedProduction"`
	ShiftBoundaries   []ShiftBoundary `json:"shiftBoundaries"`
	CurrentShift      string          `json:"currentShift"`
	LastUpdated       time.Time       `json:"lastUpdated"`
}
