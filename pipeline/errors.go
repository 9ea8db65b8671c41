package pipeline

import (
	"errors"
	"fmt"
)

var ErrNoErrorQueue = errors.New("pipeline: no error queue configured")

// InstrumentError is a nonzero record drained from an instrument error queue.
type InstrumentError struct {
	Code    int
	Message string
}

func (e *InstrumentError) Error() string {
	return fmt.Sprintf("pipeline: instrument error %d: %s", e.Code, e.Message)
}
