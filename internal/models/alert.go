package models

import "time"

// AlertSeverity grades an alert.
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "Info"
	SeverityWarning  AlertSeverity = "Warning"
	SeverityCritical AlertSeverity = "Critical"
)

// Alert types raised by the evaluator.
const (
	AlertBehindSchedule = "BehindSchedule"
	AlertAheadSchedule  = "AheadSchedule"
	AlertIdle           = "Idle"
	AlertConfiguration  = "Configuration"
)

// Alert is an ephemeral production alert. Alerts are retained in a capped
// per-line ring buffer and broadcast to live subscribers; they are never
// persisted.
type Alert struct {
	Type      string        `json:"type"`
	Message   string        `json:"message"`
	Severity  AlertSeverity `json:"severity"`
	Timestamp time.Time     `json:"timestamp"`
}
