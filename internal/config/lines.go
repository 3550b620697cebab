package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Transport kinds for a line's data source.
const (
	TransportFTP      = "ftp"
	TransportRegister = "register"
)

// DefaultRegisterCount is the holding-register window read from address 0
// when a line does not configure its own.
const DefaultRegisterCount = 5

// ConfigurationError reports a missing or invalid line configuration.
type ConfigurationError struct {
	LineID string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.LineID == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error for line %s: %s", e.LineID, e.Reason)
}

// TransportConfig describes how to reach a line's data source.
type TransportConfig struct {
	Kind     string `yaml:"kind"` // "ftp" or "register"
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	FilePath string `yaml:"filePath"`

	// SkipLines drops this many leading raw lines from a downloaded file
	// before the next line is treated as a column header.
	SkipLines int `yaml:"skipLines"`

	// RegisterCount is the holding-register window length for register reads.
	RegisterCount int `yaml:"registerCount"`

	// TimeoutSeconds bounds one read or connection test. Default 10.
	TimeoutSeconds int `yaml:"timeoutSeconds"`
}

// DataLayout describes where fields live inside a fixed-width payload, plus
// the default cycle time used when the payload carries none.
type DataLayout struct {
	TotalLength      int `yaml:"totalLength"`
	CountOffset      int `yaml:"countOffset"`
	CountLength      int `yaml:"countLength"`
	PartNumberOffset int `yaml:"partNumberOffset"`
	PartNumberLength int `yaml:"partNumberLength"`
	StatusOffset     int `yaml:"statusOffset"`
	StatusLength     int `yaml:"statusLength"`
	DefaultCycleTime int `yaml:"defaultCycleTime"`
}

// ShiftWindow is one named shift with its time window and display color.
type ShiftWindow struct {
	Name      string `yaml:"name"`
	StartTime string `yaml:"startTime"` // "HH:MM"
	EndTime   string `yaml:"endTime"`
	Color     string `yaml:"color"`
}

// StartMinutes returns the start time as minutes since midnight, or -1 when
// the window is not parseable.
func (w ShiftWindow) StartMinutes() int {
	return parseClock(w.StartTime)
}

// EndMinutes returns the end time as minutes since midnight, or -1 when the
// window is not parseable.
func (w ShiftWindow) EndMinutes() int {
	return parseClock(w.EndTime)
}

func parseClock(s string) int {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return -1
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return -1
	}
	return h*60 + m
}

// ShiftConfiguration holds the three shift windows of one line.
type ShiftConfiguration struct {
	ShiftA ShiftWindow `yaml:"shiftA"`
	ShiftB ShiftWindow `yaml:"shiftB"`
	ShiftC ShiftWindow `yaml:"shiftC"`
}

// Windows returns the shifts in A, B, C order.
func (s ShiftConfiguration) Windows() []ShiftWindow {
	return []ShiftWindow{s.ShiftA, s.ShiftB, s.ShiftC}
}

// Line is the full configuration of one production line.
type Line struct {
	LineID      string             `yaml:"-"`
	LineName    string             `yaml:"lineName"`
	Description string             `yaml:"description"`
	Active      bool               `yaml:"active"`
	Transport   TransportConfig    `yaml:"transport"`
	Layout      DataLayout         `yaml:"dataLayout"`
	Shifts      ShiftConfiguration `yaml:"shifts"`
}

// Lines is the immutable set of configured production lines.
type Lines struct {
	byID map[string]*Line
	ids  []string
}

// LoadLines reads and validates the YAML line definitions file.
func LoadLines(path string) (*Lines, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read line definitions: %w", err)
	}
	return ParseLines(data)
}

// ParseLines parses line definitions from raw YAML.
func ParseLines(data []byte) (*Lines, error) {
	var doc struct {
		Lines map[string]*Line `yaml:"lines"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse line definitions: %w", err)
	}

	ls := &Lines{byID: make(map[string]*Line, len(doc.Lines))}
	for id, line := range doc.Lines {
		if line == nil {
			return nil, &ConfigurationError{LineID: id, Reason: "empty line definition"}
		}
		line.LineID = id
		if err := validateLine(line); err != nil {
			return nil, err
		}
		applyLineDefaults(line)
		ls.byID[id] = line
		ls.ids = append(ls.ids, id)
	}
	sort.Strings(ls.ids)
	return ls, nil
}

func validateLine(line *Line) error {
	switch line.Transport.Kind {
	case TransportFTP:
		if line.Transport.Host == "" {
			return &ConfigurationError{LineID: line.LineID, Reason: "ftp transport requires a host"}
		}
		if line.Transport.FilePath == "" {
			return &ConfigurationError{LineID: line.LineID, Reason: "ftp transport requires a filePath"}
		}
	case TransportRegister:
		if line.Transport.Host == "" {
			return &ConfigurationError{LineID: line.LineID, Reason: "register transport requires a host"}
		}
	default:
		return &ConfigurationError{
			LineID: line.LineID,
			Reason: fmt.Sprintf("unknown transport kind %q", line.Transport.Kind),
		}
	}
	return nil
}

func applyLineDefaults(line *Line) {
	t := &line.Transport
	if t.Port == 0 {
		if t.Kind == TransportFTP {
			t.Port = 21
		} else {
			t.Port = 502
		}
	}
	if t.RegisterCount <= 0 {
		t.RegisterCount = DefaultRegisterCount
	}
	if t.TimeoutSeconds <= 0 {
		t.TimeoutSeconds = 10
	}

	l := &line.Layout
	if l.CountLength <= 0 {
		l.CountLength = 10
	}
	if l.PartNumberLength <= 0 {
		l.PartNumberLength = 15
	}
	if l.StatusLength <= 0 {
		l.StatusLength = 2
	}
}

// Get returns the line for id.
func (ls *Lines) Get(id string) (*Line, bool) {
	line, ok := ls.byID[id]
	return line, ok
}

// IDs returns all configured line ids in sorted order.
func (ls *Lines) IDs() []string {
	out := make([]string, len(ls.ids))
	copy(out, ls.ids)
	return out
}

// Count returns the number of configured lines.
func (ls *Lines) Count() int {
	return len(ls.byID)
}
