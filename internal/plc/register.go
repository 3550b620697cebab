package plc

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net"
	"strconv"

	"github.com/goburrow/modbus"

	"github.com/mohdhamzakhan/PLCDataCollector/internal/config"
)

const registerSlaveID = 1

// readRegisters opens a Modbus TCP session to the line's device and reads a
// fixed window of holding registers starting at address 0. The payload is a
// JSON object keyed by register address.
func readRegisters(ctx context.Context, line *config.Line) (string, error) {
	t := &line.Transport
	addr := fmt.Sprintf("%s:%d", t.Host, t.Port)

	handler := modbus.NewTCPClientHandler(addr)
	handler.Timeout = transportTimeout(line)
	handler.SlaveId = registerSlaveID

	if err := handler.Connect(); err != nil {
		return "", classify(KindConnection, line.LineID, "connect", err)
	}
	defer handler.Close()

	if err := ctx.Err(); err != nil {
		return "", classify(KindTimeout, line.LineID, "connect", err)
	}

	client := modbus.NewClient(handler)
	count := uint16(t.RegisterCount)
	results, err := client.ReadHoldingRegisters(0, count)
	if err != nil {
		return "", classify(KindProtocol, line.LineID, "read registers", err)
	}
	if len(results) != int(count)*2 {
		return "", classify(KindProtocol, line.LineID, "read registers",
			fmt.Errorf("expected %d bytes, got %d", int(count)*2, len(results)))
	}

	values := make(map[string]uint16, count)
	for i := 0; i < int(count); i++ {
		values[strconv.Itoa(i)] = binary.BigEndian.Uint16(results[i*2 : i*2+2])
	}

	encoded, err := json.Marshal(values)
	if err != nil {
		return "", classify(KindProtocol, line.LineID, "encode registers", err)
	}
	return string(encoded), nil
}

// testRegisters checks reachability with a plain TCP dial under the line's
// timeout.
func testRegisters(line *config.Line) bool {
	t := &line.Transport
	addr := fmt.Sprintf("%s:%d", t.Host, t.Port)

	conn, err := net.DialTimeout("tcp", addr, transportTimeout(line))
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
