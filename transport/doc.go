// Package transport owns the byte-level connections beneath the pipeline.
//
// Ownership boundary:
// - line-oriented Send/Recv over TCP sockets and serial lines
// - the raw byte stream used for binary block reads
//
// Every read blocks until complete; there is no timeout layer. A stalled
// instrument stalls the calling goroutine.
package transport
