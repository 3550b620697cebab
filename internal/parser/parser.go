// Package parser converts raw line payloads into structured fields using a
// first-match format-detection policy: JSON object, then delimited, then
// fixed-width. Parsing never fails; fields that cannot be located or coerced
// degrade to missing/zero values, which is the deliberate contract for noisy
// industrial feeds.
package parser

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/mohdhamzakhan/PLCDataCollector/internal/config"
	"github.com/mohdhamzakhan/PLCDataCollector/internal/models"
)

// Well-known field names produced by the parser.
const (
	FieldProductionCount = "ProductionCount"
	FieldPartNumber      = "PartNumber"
	FieldCycleTime       = "CycleTime"
	FieldStatus          = "Status"
	FieldTimestamp       = "Timestamp"
)

// Delimited payloads map positions to fields in this fixed order.
var delimitedFields = []string{
	FieldProductionCount,
	FieldPartNumber,
	FieldCycleTime,
	FieldStatus,
	FieldTimestamp,
}

// Parse converts a raw payload into structured fields. Format detection is
// first-match: a trimmed {...} payload parses as JSON, a payload containing
// ',' or ';' parses as delimited, anything else parses as fixed-width per the
// layout.
func Parse(payload string, layout *config.DataLayout) models.Fields {
	if payload == "" {
		return models.Fields{}
	}

	trimmed := strings.TrimSpace(payload)
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		return parseJSON(trimmed)
	}
	if strings.ContainsAny(payload, ",;") {
		return parseDelimited(payload)
	}
	return parseFixedWidth(payload, layout)
}

// parseJSON unmarshals a JSON object payload. Missing keys are simply absent
// from the result; a malformed payload yields no fields. Nested objects and
// arrays (indexed sub-records from file feeds) are kept as their JSON text.
func parseJSON(payload string) models.Fields {
	var raw map[string]any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return models.Fields{}
	}

	fields := make(models.Fields, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case float64:
			if v == math.Trunc(v) {
				fields[key] = models.IntField(int(v))
			} else {
				fields[key] = models.TextField(strconv.FormatFloat(v, 'f', -1, 64))
			}
		case string:
			fields[key] = models.TextField(strings.TrimSpace(v))
		case bool:
			fields[key] = models.TextField(strconv.FormatBool(v))
		case nil:
			// Null values stay missing.
		default:
			// Sub-record or array: preserve the JSON text for downstream
			// synonym lookups.
			if enc, err := json.Marshal(v); err == nil {
				fields[key] = models.TextField(string(enc))
			}
		}
	}
	return fields
}

// parseDelimited splits a delimited payload. Semicolon wins over comma when
// both are present. Fields beyond the available positions are absent.
func parseDelimited(payload string) models.Fields {
	delimiter := ","
	if strings.Contains(payload, ";") {
		delimiter = ";"
	}

	values := strings.Split(payload, delimiter)
	fields := make(models.Fields, len(delimitedFields))
	for i, name := range delimitedFields {
		if i >= len(values) {
			break
		}
		fields[name] = models.TextField(strings.TrimSpace(values[i]))
	}
	return fields
}

// parseFixedWidth extracts fields at the layout's byte offsets. The payload
// must be at least the layout's total length; a short payload yields no
// fields, and a field running past the end yields an empty string.
func parseFixedWidth(payload string, layout *config.DataLayout) models.Fields {
	if layout == nil || len(payload) < layout.TotalLength {
		return models.Fields{}
	}

	fields := make(models.Fields, 4)
	fields[FieldProductionCount] = models.TextField(extractFixedField(payload, layout.CountOffset, layout.CountLength))
	fields[FieldPartNumber] = models.TextField(extractFixedField(payload, layout.PartNumberOffset, layout.PartNumberLength))
	fields[FieldStatus] = models.TextField(extractFixedField(payload, layout.StatusOffset, layout.StatusLength))
	fields[FieldCycleTime] = models.IntField(layout.DefaultCycleTime)
	return fields
}

func extractFixedField(data string, offset, length int) string {
	if offset < 0 || length <= 0 || len(data) < offset+length {
		return ""
	}
	return strings.TrimSpace(data[offset : offset+length])
}

// Register payloads key values by address; addresses map to fields in the
// same order as delimited positions.
const (
	registerCount     = "0"
	registerCycleTime = "2"
	registerStatus    = "3"
)

// ExtractCount returns the production count from a payload. A missing or
// unparseable count yields 0. Register payloads carry the count at address 0.
func ExtractCount(payload string, layout *config.DataLayout) int {
	fields := Parse(payload, layout)
	if fields.Has(FieldProductionCount) {
		return fields.Get(FieldProductionCount).AsInt()
	}
	if v := fields.Get(registerCount); v.Kind == models.FieldInteger {
		return v.Int
	}

	// Fall back to the fixed count position even for payloads that did not
	// detect as fixed-width.
	if layout != nil && len(payload) > layout.CountOffset+layout.CountLength {
		countStr := extractFixedField(payload, layout.CountOffset, layout.CountLength)
		if n, err := strconv.Atoi(countStr); err == nil {
			return n
		}
	}
	return 0
}

// ExtractPartNumber returns the part number from a payload. When the source
// embeds indexed sub-records, the first sub-record's "QR" tag takes
// precedence over a literal "PartNumber" key.
func ExtractPartNumber(payload string, layout *config.DataLayout) string {
	fields := Parse(payload, layout)

	if sub := fields.Get("0"); sub.Kind == models.FieldText {
		var record map[string]any
		if err := json.Unmarshal([]byte(sub.Text), &record); err == nil {
			if qr, ok := record["QR"]; ok && qr != nil {
				return strings.TrimSpace(toString(qr))
			}
			if pn, ok := record[FieldPartNumber]; ok && pn != nil {
				return strings.TrimSpace(toString(pn))
			}
		}
	}

	if v := fields.Get(FieldPartNumber); !v.IsMissing() && v.String() != "" {
		return v.String()
	}

	if layout != nil && len(payload) > layout.PartNumberOffset+layout.PartNumberLength {
		if s := extractFixedField(payload, layout.PartNumberOffset, layout.PartNumberLength); s != "" {
			return s
		}
	}
	return "UNKNOWN"
}

// ExtractCycleTime returns the cycle time in seconds, falling back to the
// layout's configured default when the payload carries none.
func ExtractCycleTime(payload string, layout *config.DataLayout) int {
	fields := Parse(payload, layout)
	if fields.Has(FieldCycleTime) {
		return fields.Get(FieldCycleTime).AsInt()
	}
	if v := fields.Get(registerCycleTime); v.Kind == models.FieldInteger {
		return v.Int
	}
	if layout != nil {
		return layout.DefaultCycleTime
	}
	return 0
}

// DetermineRunning reports whether the payload indicates the line is running
// (a Status field equal to 1).
func DetermineRunning(payload string, layout *config.DataLayout) bool {
	fields := Parse(payload, layout)
	if fields.Has(FieldStatus) {
		return fields.Get(FieldStatus).AsInt() == 1
	}
	if v := fields.Get(registerStatus); v.Kind == models.FieldInteger {
		return v.Int == 1
	}
	return false
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == math.Trunc(t) {
			return strconv.Itoa(int(t))
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		enc, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(enc)
	}
}
