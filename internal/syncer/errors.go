package syncer

import "fmt"

// ExhaustedError reports that a line burned through its full retry budget
// within one sync cycle. It is terminal only for the cycle: the line's
// counter is reset and it is eligible again at the next tick.
type ExhaustedError struct {
	LineID   string
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("sync exhausted for line %s after %d attempts: %v", e.LineID, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}
