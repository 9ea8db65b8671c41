package transport

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strings"
)

// TCPConfig configures a socket-connected instrument.
type TCPConfig struct {
	Addr             string
	WriteTermination string // default "\n"
	ReadTermination  string // default "\n"
}

func (c TCPConfig) withDefaults() TCPConfig {
	if c.WriteTermination == "" {
		c.WriteTermination = "\n"
	}
	if c.ReadTermination == "" {
		c.ReadTermination = "\n"
	}
	return c
}

// TCP is a line-oriented socket transport.
type TCP struct {
	conn net.Conn
	r    *bufio.Reader
	cfg  TCPConfig
}

// DialTCP connects to a socket-exposed instrument.
func DialTCP(cfg TCPConfig) (*TCP, error) {
	cfg = cfg.withDefaults()
	conn, err := net.Dial("tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", cfg.Addr, err)
	}
	return NewTCP(conn, cfg), nil
}

// NewTCP wraps an established connection. Bridges and tests hand in their
// own net.Conn here.
func NewTCP(conn net.Conn, cfg TCPConfig) *TCP {
	cfg = cfg.withDefaults()
	return &TCP{conn: conn, r: bufio.NewReader(conn), cfg: cfg}
}

func (t *TCP) Send(cmd string) error {
	_, err := io.WriteString(t.conn, cmd+t.cfg.WriteTermination)
	return err
}

func (t *TCP) Recv() (string, error) {
	return readLine(t.r, t.cfg.ReadTermination)
}

// Raw exposes the buffered byte stream for block reads beneath the pipeline.
func (t *TCP) Raw() io.Reader { return t.r }

func (t *TCP) Close() error { return t.conn.Close() }

// readLine reads through the final byte of term and strips term from the
// result. The terminator's last byte delimits the read, so multi-byte
// terminators must end the line (e.g. "\r\n"), which SCPI instruments do.
func readLine(r *bufio.Reader, term string) (string, error) {
	line, err := r.ReadString(term[len(term)-1])
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(line, term), nil
}
