//go:build linux

package transport

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// SerialConfig configures a raw-mode serial port.
type SerialConfig struct {
	Device           string
	BaudRate         int
	WriteTermination string // default "\n"
	ReadTermination  string // default "\n"
}

func (c SerialConfig) withDefaults() SerialConfig {
	if c.WriteTermination == "" {
		c.WriteTermination = "\n"
	}
	if c.ReadTermination == "" {
		c.ReadTermination = "\n"
	}
	return c
}

// Serial is a line-oriented transport over a serial line in raw 8N1 mode.
type Serial struct {
	file *os.File
	r    *bufio.Reader
	cfg  SerialConfig
}

// OpenSerial opens and configures the port for raw, unbuffered operation.
func OpenSerial(cfg SerialConfig) (*Serial, error) {
	cfg = cfg.withDefaults()
	fd, err := syscall.Open(cfg.Device, syscall.O_RDWR|syscall.O_NOCTTY|syscall.O_NONBLOCK, 0666)
	if err != nil {
		return nil, fmt.Errorf("transport: open %s: %w", cfg.Device, err)
	}

	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("transport: get termios: %w", err)
	}

	// Raw mode
	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	termios.Cflag &^= unix.CSIZE | unix.PARENB
	termios.Cflag |= unix.CS8

	baud := baudToUnix(cfg.BaudRate)
	termios.Cflag &^= unix.CBAUD
	termios.Cflag |= baud

	// VMIN=1, VTIME=0: block until at least one byte arrives
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("transport: set termios: %w", err)
	}

	// Back to blocking mode now that config is done
	syscall.SetNonblock(fd, false)

	file := os.NewFile(uintptr(fd), cfg.Device)
	return &Serial{file: file, r: bufio.NewReader(file), cfg: cfg}, nil
}

func (s *Serial) Send(cmd string) error {
	_, err := s.file.WriteString(cmd + s.cfg.WriteTermination)
	return err
}

func (s *Serial) Recv() (string, error) {
	return readLine(s.r, s.cfg.ReadTermination)
}

// Raw exposes the buffered byte stream for block reads beneath the pipeline.
func (s *Serial) Raw() io.Reader { return s.r }

func (s *Serial) Close() error { return s.file.Close() }

func baudToUnix(baud int) uint32 {
	switch baud {
	case 9600:
		return unix.B9600
	case 19200:
		return unix.B19200
	case 38400:
		return unix.B38400
	case 57600:
		return unix.B57600
	case 115200:
		return unix.B115200
	case 230400:
		return unix.B230400
	default:
		return unix.B115200 // fallback
	}
}
