package pipeline

import (
	"time"

	"github.com/rs/zerolog"
)

// ErrorQueue is the instrument-family capability for error-queue access.
// Concrete driver families supply it; the pipeline is generic over it.
type ErrorQueue interface {
	// FetchError retrieves one record from the instrument error queue.
	FetchError() (string, error)
	// InterpretError inspects a fetched record. No-error sentinels return
	// nil; any other code returns an *InstrumentError.
	InterpretError(text string) error
}

const defaultAutoDequeueDelay = time.Second

// Conn layers error-queue draining over a rate-limited transport. When
// auto-dequeue is enabled, one error record is drained after every command
// and after every completed query, never in the middle of one.
type Conn struct {
	limiter *RateLimiter
	queue   ErrorQueue

	autoDequeue      bool
	autoDequeueDelay time.Duration

	log   zerolog.Logger
	sleep func(time.Duration)
}

func NewConn(t Transport, log zerolog.Logger) *Conn {
	return &Conn{
		limiter:          NewRateLimiter(t, log),
		autoDequeueDelay: defaultAutoDequeueDelay,
		log:              log,
		sleep:            time.Sleep,
	}
}

// SetErrorQueue supplies the instrument-family error-queue access. Must be
// set before auto-dequeue is enabled.
func (c *Conn) SetErrorQueue(q ErrorQueue) { c.queue = q }

// RateLimiter exposes the connection's rate limiter for interval tuning.
func (c *Conn) RateLimiter() *RateLimiter { return c.limiter }

func (c *Conn) AutoDequeue() bool { return c.autoDequeue }

func (c *Conn) SetAutoDequeue(on bool) { c.autoDequeue = on }

func (c *Conn) AutoDequeueDelay() time.Duration { return c.autoDequeueDelay }

// SetAutoDequeueDelay sets the pause between an operation and the drain that
// follows it, giving the instrument time to post the error record.
func (c *Conn) SetAutoDequeueDelay(d time.Duration) { c.autoDequeueDelay = d }

// Send writes one command. With auto-dequeue enabled, one error record is
// drained after the write; a nonzero record surfaces as the send's error.
func (c *Conn) Send(cmd string) error {
	if err := c.limiter.Send(cmd); err != nil {
		return err
	}
	if c.autoDequeue {
		c.sleep(c.autoDequeueDelay)
		return c.DequeueError()
	}
	return nil
}

// Recv reads one response. Draining only follows a command, never a raw read.
func (c *Conn) Recv() (string, error) {
	return c.limiter.Recv()
}

// Query performs send+recv as one atomic unit.
func (c *Conn) Query(cmd string) (string, error) {
	var resp string
	err := c.Atomic(func() error {
		var err error
		resp, err = c.limiter.Query(cmd)
		return err
	})
	if err != nil {
		return "", err
	}
	return resp, nil
}

// Atomic runs fn with auto-dequeue suppressed so the error queue is never
// interleaved mid-transaction, restores the prior setting on every exit
// path, then drains exactly once iff the setting was enabled and fn
// succeeded. Query and binary block reads both run through here; nesting is
// safe because the inner save observes the suppressed value.
func (c *Conn) Atomic(fn func() error) error {
	saved := c.autoDequeue
	c.autoDequeue = false
	defer func() { c.autoDequeue = saved }()

	if err := fn(); err != nil {
		return err
	}
	if saved {
		c.sleep(c.autoDequeueDelay)
		return c.DequeueError()
	}
	return nil
}

// DequeueError fetches and interprets one error-queue record. Auto-dequeue
// is suppressed while the queue itself is queried so draining cannot
// recurse; the flag is restored even when interpretation fails.
func (c *Conn) DequeueError() error {
	if c.queue == nil {
		return ErrNoErrorQueue
	}
	saved := c.autoDequeue
	c.autoDequeue = false
	defer func() { c.autoDequeue = saved }()

	text, err := c.queue.FetchError()
	if err != nil {
		return err
	}
	if err := c.queue.InterpretError(text); err != nil {
		c.log.Debug().Str("record", text).Msg("drained instrument error")
		return err
	}
	return nil
}
