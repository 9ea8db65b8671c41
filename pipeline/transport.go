package pipeline

// Transport is the line-oriented capability the pipeline wraps. Both
// primitives block until complete; there is no timeout layer in this core,
// so a stalled read blocks indefinitely.
type Transport interface {
	Send(cmd string) error
	Recv() (string, error)
}
