package staging

import "fmt"

// PersistenceError reports a staging or target store I/O failure.
type PersistenceError struct {
	Op     string
	LineID string
	Err    error
}

func (e *PersistenceError) Error() string {
	if e.LineID == "" {
		return fmt.Sprintf("persistence error during %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("persistence error during %s for line %s: %v", e.Op, e.LineID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
