package scpi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/quenchlab/scpikit/pipeline"
)

// Queryer is the single round-trip capability the error queue runs on.
// In practice this is the connection's own pipeline; draining suppresses
// auto-dequeue first, so the query cannot recurse.
type Queryer interface {
	Query(cmd string) (string, error)
}

// SystemErrorQueue drains SCPI error queues through SYST:ERR?, the query
// every 488.2-conformant instrument family shares.
type SystemErrorQueue struct {
	q Queryer
}

func NewSystemErrorQueue(q Queryer) *SystemErrorQueue {
	return &SystemErrorQueue{q: q}
}

func (s *SystemErrorQueue) FetchError() (string, error) {
	return s.q.Query("SYST:ERR?")
}

// InterpretError parses a `code,"message"` record. The no-error sentinels
// ("0", "+0", empty) return nil; any other code is an InstrumentError
// carrying the code and message.
func (s *SystemErrorQueue) InterpretError(text string) error {
	code, message := splitErrorRecord(text)
	switch code {
	case "", "0", "+0":
		return nil
	}
	n, err := strconv.Atoi(strings.TrimPrefix(code, "+"))
	if err != nil {
		return fmt.Errorf("scpi: malformed error record %q", text)
	}
	if n == 0 {
		return nil
	}
	return &pipeline.InstrumentError{Code: n, Message: message}
}

func splitErrorRecord(text string) (code, message string) {
	text = strings.TrimSpace(text)
	code = text
	if i := strings.IndexByte(text, ','); i >= 0 {
		code = strings.TrimSpace(text[:i])
		message = strings.Trim(strings.TrimSpace(text[i+1:]), `"`)
	}
	return code, message
}
