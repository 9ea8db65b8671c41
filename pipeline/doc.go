// Package pipeline owns the command-dispatch chain shared by every driver.
//
// Ownership boundary:
// - the Transport capability consumed beneath the chain
// - inter-operation rate limiting
// - automatic error-queue draining and atomic query semantics
//
// Wrapping order is fixed: Conn wraps RateLimiter wraps Transport. A Conn
// and its state belong to exactly one instrument connection; the package
// provides no internal locking because SCPI instruments admit one in-flight
// command per connection.
package pipeline
