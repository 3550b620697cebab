package plc

import (
	"encoding/json"
	"testing"
)

func TestRekeyDelimitedRows(t *testing.T) {
	content := "GARBAGE LINE 1\nGARBAGE LINE 2\nQR,ProductionCount,Status\nQR-123,42,1\nQR-456,43,0\n"

	payload, err := rekeyDelimitedRows(content, 2)
	if err != nil {
		t.Fatalf("Failed to rekey: %v", err)
	}

	var records map[string]map[string]string
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		t.Fatalf("Payload is not JSON: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected 2 sub-records, got %d", len(records))
	}
	if records["0"]["QR"] != "QR-123" {
		t.Errorf("Expected first QR QR-123, got %q", records["0"]["QR"])
	}
	if records["0"]["ProductionCount"] != "42" {
		t.Errorf("Expected count 42, got %q", records["0"]["ProductionCount"])
	}
	if records["1"]["Status"] != "0" {
		t.Errorf("Expected second status 0, got %q", records["1"]["Status"])
	}
}

func TestRekeyDelimitedRowsSemicolon(t *testing.T) {
	content := "QR;Count\nA;1\n"

	payload, err := rekeyDelimitedRows(content, 0)
	if err != nil {
		t.Fatalf("Failed to rekey: %v", err)
	}

	var records map[string]map[string]string
	json.Unmarshal([]byte(payload), &records)
	if records["0"]["QR"] != "A" || records["0"]["Count"] != "1" {
		t.Errorf("Unexpected records: %v", records)
	}
}

func TestRekeyDelimitedRowsShortRow(t *testing.T) {
	content := "A,B,C\n1,2\n"

	payload, err := rekeyDelimitedRows(content, 0)
	if err != nil {
		t.Fatalf("Failed to rekey: %v", err)
	}

	var records map[string]map[string]string
	json.Unmarshal([]byte(payload), &records)
	if records["0"]["C"] != "" {
		t.Errorf("Expected empty value for missing column, got %q", records["0"]["C"])
	}
}

func TestRekeyDelimitedRowsSkipsBlank(t *testing.T) {
	content := "A,B\n1,2\n\n3,4\n"

	payload, err := rekeyDelimitedRows(content, 0)
	if err != nil {
		t.Fatalf("Failed to rekey: %v", err)
	}

	var records map[string]map[string]string
	json.Unmarshal([]byte(payload), &records)
	if len(records) != 2 {
		t.Errorf("Expected blank row skipped, got %d records", len(records))
	}
	if records["1"]["A"] != "3" {
		t.Errorf("Expected contiguous indices, got %v", records)
	}
}

func TestRekeyDelimitedRowsTooFewLines(t *testing.T) {
	if _, err := rekeyDelimitedRows("only one line", 5); err == nil {
		t.Error("Expected error when skip exceeds line count")
	}
}

func TestSplitLinesCRLF(t *testing.T) {
	lines := splitLines("a\r\nb\r\nc\r\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "a" || lines[2] != "c" {
		t.Errorf("Unexpected lines: %v", lines)
	}
}
