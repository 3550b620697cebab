package production

import (
	"testing"
	"time"

	"github.com/mohdhamzakhan/PLCDataCollector/internal/config"
)

func testLine() *config.Line {
	return &config.Line{
		LineID:   "LINE-01",
		LineName: "Assembly 1",
		Shifts: config.ShiftConfiguration{
			ShiftA: config.ShiftWindow{Name: "A", StartTime: "06:00", EndTime: "14:00"},
			ShiftB: config.ShiftWindow{Name: "B", StartTime: "14:00", EndTime: "22:00"},
			ShiftC: config.ShiftWindow{Name: "C", StartTime: "22:00", EndTime: "06:00"},
		},
	}
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 10, hour, minute, 0, 0, time.UTC)
}

func TestCurrentShift(t *testing.T) {
	line := testLine()

	cases := []struct {
		name string
		now  time.Time
		want string
	}{
		{"morning", at(8, 0), "A"},
		{"shift A start", at(6, 0), "A"},
		{"afternoon", at(15, 30), "B"},
		{"night", at(23, 0), "C"},
		{"early morning", at(2, 0), "C"},
		{"just before A", at(5, 59), "C"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			shift, ok := CurrentShift(line, tc.now)
			if !ok {
				t.Fatal("Expected a shift to resolve")
			}
			if shift.Name != tc.want {
				t.Errorf("Expected shift %s, got %s", tc.want, shift.Name)
			}
		})
	}
}

func TestCurrentShiftUnparseable(t *testing.T) {
	line := testLine()
	line.Shifts.ShiftB.StartTime = "bogus"

	if _, ok := CurrentShift(line, at(8, 0)); ok {
		t.Error("Expected no shift for unparseable configuration")
	}
}

func TestShiftBoundsOvernight(t *testing.T) {
	shift := config.ShiftWindow{Name: "C", StartTime: "22:00", EndTime: "06:00"}
	now := at(23, 0)

	start, end := ShiftBounds(shift, now)
	if start.Hour() != 22 || start.Day() != 10 {
		t.Errorf("Unexpected start %v", start)
	}
	if end.Hour() != 6 || end.Day() != 11 {
		t.Errorf("Expected end on the next day, got %v", end)
	}
}

func TestPlannedCount(t *testing.T) {
	shift := config.ShiftWindow{Name: "A", StartTime: "06:00", EndTime: "14:00"}

	// Two hours into the shift at 60/hr.
	if got := PlannedCount(shift, at(8, 0)); got != 120 {
		t.Errorf("Expected 120, got %d", got)
	}
	// Half an hour in.
	if got := PlannedCount(shift, at(6, 30)); got != 30 {
		t.Errorf("Expected 30, got %d", got)
	}
}

func TestPlannedCountOvernight(t *testing.T) {
	shift := config.ShiftWindow{Name: "C", StartTime: "22:00", EndTime: "06:00"}

	// 02:00 is four hours after a 22:00 start.
	if got := PlannedCount(shift, at(2, 0)); got != 240 {
		t.Errorf("Expected 240, got %d", got)
	}
}

func TestEfficiency(t *testing.T) {
	if got := Efficiency(90, 100); got != 90.0 {
		t.Errorf("Expected 90.0, got %v", got)
	}
	if got := Efficiency(1, 3); got != 33.33 {
		t.Errorf("Expected 33.33, got %v", got)
	}
	if got := Efficiency(50, 0); got != 0 {
		t.Errorf("Expected 0 with no plan, got %v", got)
	}
}
