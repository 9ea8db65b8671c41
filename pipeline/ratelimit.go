package pipeline

import (
	"time"

	"github.com/rs/zerolog"
)

// RateLimiter separates consecutive I/O operations on one connection by a
// minimum interval, preventing I/O flooding at the software level. Each
// connection owns its own limiter; the last-I/O time is never shared across
// instances.
type RateLimiter struct {
	inner       Transport
	minInterval time.Duration
	lastIO      time.Time
	log         zerolog.Logger

	now   func() time.Time
	sleep func(time.Duration)
}

func NewRateLimiter(t Transport, log zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		inner: t,
		log:   log,
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// MinInterval reports the minimum time that must elapse between operations.
func (rl *RateLimiter) MinInterval() time.Duration { return rl.minInterval }

// SetMinInterval changes the interval. Takes effect on the next operation;
// an in-flight wait is unaffected. Zero disables throttling.
func (rl *RateLimiter) SetMinInterval(d time.Duration) { rl.minInterval = d }

func (rl *RateLimiter) wait() {
	if rl.minInterval <= 0 || rl.lastIO.IsZero() {
		return
	}
	elapsed := rl.now().Sub(rl.lastIO)
	rl.log.Debug().Dur("elapsed", elapsed).Msg("elapsed since previous I/O")
	if remaining := rl.minInterval - elapsed; remaining > 0 {
		rl.log.Debug().Dur("pause", remaining).Msg("pausing before next I/O")
		rl.sleep(remaining)
	}
}

func (rl *RateLimiter) Send(cmd string) error {
	rl.wait()
	err := rl.inner.Send(cmd)
	// A failed write still occupied the bus; count it against the interval.
	rl.lastIO = rl.now()
	return err
}

func (rl *RateLimiter) Recv() (string, error) {
	rl.wait()
	resp, err := rl.inner.Recv()
	if err != nil {
		return "", err
	}
	rl.lastIO = rl.now()
	return resp, nil
}

// Query performs a rate-limited send followed by a rate-limited recv.
func (rl *RateLimiter) Query(cmd string) (string, error) {
	if err := rl.Send(cmd); err != nil {
		return "", err
	}
	return rl.Recv()
}
