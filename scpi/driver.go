// Package scpi owns the driver surface shared by every 488.2-conformant
// instrument family: the mandated common commands and SYST:ERR? queue access.
package scpi

import (
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quenchlab/scpikit/ieee4882"
	"github.com/quenchlab/scpikit/pipeline"
)

// Driver issues the IEEE-488.2 mandated commands over a pipeline connection.
// Binary block responses are read from raw, the byte stream beneath the
// pipeline, so a block is never error-queue-interleaved or rate-limited per
// byte, only once per logical read.
type Driver struct {
	conn *pipeline.Conn
	raw  io.Reader
	log  zerolog.Logger
}

func NewDriver(conn *pipeline.Conn, raw io.Reader, log zerolog.Logger) *Driver {
	return &Driver{conn: conn, raw: raw, log: log}
}

// Conn exposes the underlying pipeline connection.
func (d *Driver) Conn() *pipeline.Conn { return d.conn }

// Identify returns the *IDN? identification string.
func (d *Driver) Identify() (string, error) {
	return d.conn.Query("*IDN?")
}

// Reset issues *RST, restoring the instrument's power-on defaults.
func (d *Driver) Reset() error {
	d.log.Debug().Msg("resetting instrument")
	return d.conn.Send("*RST")
}

// ClearStatus issues *CLS, clearing status registers and the error queue.
func (d *Driver) ClearStatus() error {
	return d.conn.Send("*CLS")
}

// SelfTest runs *TST? and returns the instrument's result code; zero passes.
func (d *Driver) SelfTest() (int, error) {
	resp, err := d.conn.Query("*TST?")
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(resp))
}

// OperationComplete blocks on *OPC? until pending operations finish.
func (d *Driver) OperationComplete() error {
	_, err := d.conn.Query("*OPC?")
	return err
}

// QueryBlock sends cmd and reads the definite-length block response off the
// raw stream. The exchange runs atomically: auto-dequeue is suppressed for
// the duration and, if enabled, drains once after the block is complete.
func (d *Driver) QueryBlock(cmd string, cfg ieee4882.ReadConfig) (ieee4882.Block, error) {
	var blk ieee4882.Block
	err := d.conn.Atomic(func() error {
		if err := d.conn.Send(cmd); err != nil {
			return err
		}
		var err error
		blk, err = ieee4882.ReadBlock(d.raw, cfg)
		return err
	})
	if err != nil {
		return ieee4882.Block{}, err
	}
	d.log.Debug().Str("cmd", cmd).Int("bytes", blk.Len()).Msg("block read complete")
	return blk, nil
}
