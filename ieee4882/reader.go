package ieee4882

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// ReadConfig controls one streaming block read.
type ReadConfig struct {
	// ChunkSize bounds the byte count requested per payload read. Zero
	// requests the whole remaining payload at once. Transports that cap the
	// bytes returned per underlying read need a bound here.
	ChunkSize int
	// Termination holds trailer bytes that follow the payload on the wire
	// (typically a line terminator). Exactly len(Termination) bytes are
	// consumed and discarded after the payload.
	Termination []byte
	// Identifier tags the resulting Block for diagnostics.
	Identifier string
	// Logger traces the read. Nil disables tracing.
	Logger *zerolog.Logger
}

// ReadBlock pulls one definite-length arbitrary block off r. Reads block
// until the declared byte count arrives; any short read or source failure
// aborts the read and no partial block is returned. The stream is not
// cleaned up after a grammar mismatch.
func ReadBlock(r io.Reader, cfg ReadConfig) (Block, error) {
	log := cfg.Logger
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}

	var prefix [2]byte
	if _, err := io.ReadFull(r, prefix[:1]); err != nil {
		return Block{}, fmt.Errorf("ieee4882: read block prefix: %w", err)
	}
	if prefix[0] != '#' {
		return Block{}, fmt.Errorf("%w: expected '#', read %q; remaining message data left in buffer",
			ErrUnexpectedResponseFormat, prefix[0])
	}
	if _, err := io.ReadFull(r, prefix[1:2]); err != nil {
		return Block{}, fmt.Errorf("ieee4882: read digit count: %w", err)
	}
	d := prefix[1]
	if d == '0' {
		log.Warn().Str("block_id", cfg.Identifier).
			Msg("instrument announced an indefinite-length block; not supported")
		return Block{}, ErrUnsupportedBlockFormat
	}
	if d < '1' || d > '9' {
		return Block{}, fmt.Errorf("%w: expected digit count, read %q; remaining message data left in buffer",
			ErrUnexpectedResponseFormat, d)
	}

	digits := int(d - '0')
	lengthField := make([]byte, digits)
	if _, err := io.ReadFull(r, lengthField); err != nil {
		return Block{}, fmt.Errorf("ieee4882: read length field: %w", err)
	}
	payloadLen, err := parseLengthField(lengthField)
	if err != nil {
		return Block{}, fmt.Errorf("%w: length field %q", ErrUnexpectedResponseFormat, lengthField)
	}

	payload := make([]byte, payloadLen)
	for off := 0; off < payloadLen; {
		reach := payloadLen - off
		if cfg.ChunkSize > 0 && reach > cfg.ChunkSize {
			reach = cfg.ChunkSize
		}
		if _, err := io.ReadFull(r, payload[off:off+reach]); err != nil {
			return Block{}, fmt.Errorf("ieee4882: read payload: %w", err)
		}
		off += reach
		log.Trace().Str("block_id", cfg.Identifier).
			Int("read", reach).Int("remaining", payloadLen-off).
			Msg("block payload chunk")
	}

	if n := len(cfg.Termination); n > 0 {
		trailer := make([]byte, n)
		if _, err := io.ReadFull(r, trailer); err != nil {
			return Block{}, fmt.Errorf("ieee4882: read block termination: %w", err)
		}
	}

	raw := make([]byte, 0, 2+digits+payloadLen)
	raw = append(raw, prefix[:]...)
	raw = append(raw, lengthField...)
	raw = append(raw, payload...)
	h := Header{DigitCount: digits, PayloadLen: payloadLen, HeaderLen: 2 + digits}
	return newBlock(raw, h, cfg.Identifier), nil
}
