//go:build linux

package transport

import (
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"

	"github.com/quenchlab/scpikit/ieee4882"
)

func TestSerialChatMasterSlave(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	s, err := OpenSerial(SerialConfig{Device: slave.Name(), BaudRate: 115200})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	// Instrument side answers an identification query.
	_, err = master.Write([]byte("QUENCH,Q100,12345,1.2.0\n"))
	require.NoError(t, err)

	resp := make(chan string, 1)
	errs := make(chan error, 1)
	go func() {
		line, err := s.Recv()
		if err != nil {
			errs <- err
			return
		}
		resp <- line
	}()

	select {
	case line := <-resp:
		require.Equal(t, "QUENCH,Q100,12345,1.2.0", line)
	case err := <-errs:
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for serial line")
	}

	// Driver side sends a command; the master sees it terminated.
	require.NoError(t, s.Send("*IDN?"))
	buf := make([]byte, 32)
	n, err := master.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "*IDN?\n", string(buf[:n]))
}

func TestSerialRawServesBlockReads(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	s, err := OpenSerial(SerialConfig{Device: slave.Name(), BaudRate: 115200})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	payload := []byte("0123456789")
	wire := append(ieee4882.Encode(payload), '\n')
	_, err = master.Write(wire)
	require.NoError(t, err)

	type result struct {
		blk ieee4882.Block
		err error
	}
	results := make(chan result, 1)
	go func() {
		blk, err := ieee4882.ReadBlock(s.Raw(), ieee4882.ReadConfig{
			ChunkSize:   3,
			Termination: []byte("\n"),
		})
		results <- result{blk, err}
	}()

	select {
	case res := <-results:
		require.NoError(t, res.err)
		require.Equal(t, payload, res.blk.Data())
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for block read")
	}
}

func TestSerialOpenMissingDevice(t *testing.T) {
	_, err := OpenSerial(SerialConfig{Device: "/dev/does-not-exist", BaudRate: 9600})
	require.Error(t, err)
}
