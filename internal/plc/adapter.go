// Package plc fetches raw readings from production-line data sources over
// two transports: FTP file feeds and Modbus TCP register reads. Adapters
// perform no internal retry; backoff policy belongs to the callers.
package plc

import (
	"context"
	"fmt"
	"time"

	"github.com/mohdhamzakhan/PLCDataCollector/internal/config"
	"github.com/mohdhamzakhan/PLCDataCollector/internal/models"
)

// Reader fetches one raw reading from a line's configured source.
type Reader interface {
	// Read downloads a single reading. Failures are classified as
	// connection, protocol, or timeout errors.
	Read(ctx context.Context, line *config.Line) (*models.RawReading, error)

	// TestConnection performs a minimal handshake against the line's source.
	// It never returns an error; any failure reports false.
	TestConnection(ctx context.Context, line *config.Line) bool
}

// Adapter dispatches reads to the transport configured for each line.
type Adapter struct{}

// NewAdapter creates a protocol adapter.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// Read fetches one raw reading from the line's source.
func (a *Adapter) Read(ctx context.Context, line *config.Line) (*models.RawReading, error) {
	var payload string
	var err error

	switch line.Transport.Kind {
	case config.TransportFTP:
		payload, err = readFTP(ctx, line)
	case config.TransportRegister:
		payload, err = readRegisters(ctx, line)
	default:
		return nil, &config.ConfigurationError{
			LineID: line.LineID,
			Reason: fmt.Sprintf("unknown transport kind %q", line.Transport.Kind),
		}
	}
	if err != nil {
		return nil, err
	}

	return &models.RawReading{
		LineID:    line.LineID,
		Payload:   payload,
		Timestamp: time.Now(),
	}, nil
}

// TestConnection performs a lightweight handshake under the line's timeout.
func (a *Adapter) TestConnection(ctx context.Context, line *config.Line) bool {
	switch line.Transport.Kind {
	case config.TransportFTP:
		return testFTP(ctx, line)
	case config.TransportRegister:
		return testRegisters(line)
	default:
		return false
	}
}

func transportTimeout(line *config.Line) time.Duration {
	return time.Duration(line.Transport.TimeoutSeconds) * time.Second
}
