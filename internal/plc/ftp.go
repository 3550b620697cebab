package plc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jlaffaye/ftp"

	"github.com/mohdhamzakhan/PLCDataCollector/internal/config"
)

// readFTP downloads the configured file's full content from the line's FTP
// server. When SkipLines is configured the content is re-keyed into indexed
// sub-records using the header line that follows the skipped lines.
func readFTP(ctx context.Context, line *config.Line) (string, error) {
	t := &line.Transport
	addr := fmt.Sprintf("%s:%d", t.Host, t.Port)

	conn, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(transportTimeout(line)))
	if err != nil {
		return "", classify(KindConnection, line.LineID, "dial", err)
	}
	defer conn.Quit()

	if err := conn.Login(ftpUser(t), t.Password); err != nil {
		return "", classify(KindConnection, line.LineID, "login", err)
	}

	resp, err := conn.Retr(t.FilePath)
	if err != nil {
		return "", classify(KindProtocol, line.LineID, "retrieve", err)
	}
	defer resp.Close()

	content, err := io.ReadAll(resp)
	if err != nil {
		return "", classify(KindProtocol, line.LineID, "read", err)
	}

	if t.SkipLines > 0 {
		payload, err := rekeyDelimitedRows(string(content), t.SkipLines)
		if err != nil {
			return "", classify(KindProtocol, line.LineID, "rekey", err)
		}
		return payload, nil
	}
	return string(content), nil
}

// testFTP performs a minimal handshake: dial, login, list the root directory.
func testFTP(ctx context.Context, line *config.Line) bool {
	t := &line.Transport
	addr := fmt.Sprintf("%s:%d", t.Host, t.Port)

	conn, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(transportTimeout(line)))
	if err != nil {
		return false
	}
	defer conn.Quit()

	if err := conn.Login(ftpUser(t), t.Password); err != nil {
		return false
	}

	_, err = conn.NameList("/")
	return err == nil
}

func ftpUser(t *config.TransportConfig) string {
	if t.Username == "" {
		return "anonymous"
	}
	return t.Username
}

// rekeyDelimitedRows drops skip leading lines, treats the next line as a
// column header, and re-keys the remaining rows into a JSON object of indexed
// sub-records: {"0": {"Header": "value", ...}, "1": {...}}. This is the
// payload shape the part-number synonym lookup operates on.
func rekeyDelimitedRows(content string, skip int) (string, error) {
	lines := splitLines(content)
	if skip >= len(lines) {
		return "", fmt.Errorf("file has %d lines, cannot skip %d", len(lines), skip)
	}

	lines = lines[skip:]
	headerLine := lines[0]
	delimiter := ","
	if strings.Contains(headerLine, ";") {
		delimiter = ";"
	}

	headers := strings.Split(headerLine, delimiter)
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	records := make(map[string]map[string]string)
	rowIndex := 0
	for _, row := range lines[1:] {
		if strings.TrimSpace(row) == "" {
			continue
		}
		values := strings.Split(row, delimiter)
		record := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(values) {
				record[header] = strings.TrimSpace(values[i])
			} else {
				record[header] = ""
			}
		}
		records[strconv.Itoa(rowIndex)] = record
		rowIndex++
	}

	encoded, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encoding sub-records: %w", err)
	}
	return string(encoded), nil
}

func splitLines(content string) []string {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	return strings.Split(strings.TrimRight(normalized, "\n"), "\n")
}
