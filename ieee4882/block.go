package ieee4882

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"time"
)

// Header describes the prefix of one definite-length arbitrary block:
// '#', one digit giving the width of the length field, then that many
// ASCII decimal digits giving the payload length.
type Header struct {
	DigitCount int
	PayloadLen int
	HeaderLen  int // 2 + DigitCount; payload begins at this offset
}

// Encode wraps payload in a definite-length block. An empty payload
// encodes as "#10". Encode never fails.
func Encode(payload []byte) []byte {
	length := strconv.Itoa(len(payload))
	buf := make([]byte, 0, 2+len(length)+len(payload))
	buf = append(buf, '#', byte('0'+len(length)))
	buf = append(buf, length...)
	return append(buf, payload...)
}

// DecodeHeader parses the block prefix. Indefinite-length blocks ("#0...")
// are rejected with ErrUnsupportedBlockFormat; everything else that does not
// match the grammar fails with ErrInvalidBlockFormat.
func DecodeHeader(block []byte) (Header, error) {
	if len(block) == 0 || block[0] != '#' {
		return Header{}, fmt.Errorf("%w: missing '#' prefix", ErrInvalidBlockFormat)
	}
	if len(block) < 2 {
		return Header{}, fmt.Errorf("%w: missing digit count", ErrInvalidBlockFormat)
	}
	d := block[1]
	if d == '0' {
		return Header{}, ErrUnsupportedBlockFormat
	}
	if d < '1' || d > '9' {
		return Header{}, fmt.Errorf("%w: digit count byte %q", ErrInvalidBlockFormat, d)
	}
	digits := int(d - '0')
	if len(block) < 2+digits {
		return Header{}, fmt.Errorf("%w: truncated length field", ErrInvalidBlockFormat)
	}
	n, err := parseLengthField(block[2 : 2+digits])
	if err != nil {
		return Header{}, fmt.Errorf("%w: length field %q", ErrInvalidBlockFormat, block[2:2+digits])
	}
	return Header{DigitCount: digits, PayloadLen: n, HeaderLen: 2 + digits}, nil
}

// parseLengthField parses an all-digit ASCII decimal length. Atoi alone is
// too permissive: it admits a sign byte, and the grammar requires exactly d
// decimal digits.
func parseLengthField(field []byte) (int, error) {
	for _, b := range field {
		if b < '0' || b > '9' {
			return 0, fmt.Errorf("length byte %q is not a decimal digit", b)
		}
	}
	return strconv.Atoi(string(field))
}

// Payload returns the payload sub-slice of block. The slice aliases block;
// callers that need an independent copy construct a Block instead.
func Payload(block []byte) ([]byte, error) {
	h, err := DecodeHeader(block)
	if err != nil {
		return nil, err
	}
	end := h.HeaderLen + h.PayloadLen
	if len(block) < end {
		return nil, fmt.Errorf("%w: block truncated: have %d bytes, want %d", ErrInvalidBlockFormat, len(block), end)
	}
	return block[h.HeaderLen:end], nil
}

// Block is one definite-length arbitrary block. Immutable once constructed:
// the raw bytes are copied in, accessors return copies, and the checksum and
// creation time are fixed at construction.
type Block struct {
	raw        []byte
	header     Header
	identifier string
	createdAt  time.Time
	checksum   [sha256.Size]byte
}

// NewBlock parses raw wire bytes into a Block. Bytes past the end of the
// declared payload are not retained. identifier is an opaque diagnostic tag.
func NewBlock(raw []byte, identifier string) (Block, error) {
	h, err := DecodeHeader(raw)
	if err != nil {
		return Block{}, err
	}
	end := h.HeaderLen + h.PayloadLen
	if len(raw) < end {
		return Block{}, fmt.Errorf("%w: block truncated: have %d bytes, want %d", ErrInvalidBlockFormat, len(raw), end)
	}
	cp := make([]byte, end)
	copy(cp, raw[:end])
	return newBlock(cp, h, identifier), nil
}

// NewBlockFromData encodes data as the payload of a fresh Block.
func NewBlockFromData(data []byte, identifier string) Block {
	raw := Encode(data)
	digits := len(raw) - len(data) - 2
	h := Header{DigitCount: digits, PayloadLen: len(data), HeaderLen: 2 + digits}
	return newBlock(raw, h, identifier)
}

func newBlock(raw []byte, h Header, identifier string) Block {
	ts, sum := Stamp(raw[h.HeaderLen : h.HeaderLen+h.PayloadLen])
	return Block{
		raw:        raw,
		header:     h,
		identifier: identifier,
		createdAt:  ts,
		checksum:   sum,
	}
}

// Raw returns a copy of the complete wire-format bytes, header included.
func (b Block) Raw() []byte {
	out := make([]byte, len(b.raw))
	copy(out, b.raw)
	return out
}

// Data returns a copy of the payload bytes.
func (b Block) Data() []byte {
	out := make([]byte, b.header.PayloadLen)
	copy(out, b.raw[b.header.HeaderLen:])
	return out
}

// Identifier returns the diagnostic tag supplied at construction.
func (b Block) Identifier() string { return b.identifier }

// CreatedAt returns the UTC construction time.
func (b Block) CreatedAt() time.Time { return b.createdAt }

// Checksum returns the SHA-256 digest of the payload.
func (b Block) Checksum() [sha256.Size]byte { return b.checksum }

// Header returns the decoded block header.
func (b Block) Header() Header { return b.header }

// Len returns the payload length in bytes.
func (b Block) Len() int { return b.header.PayloadLen }

// At returns the raw byte at index i, header included.
func (b Block) At(i int) byte { return b.raw[i] }

func (b Block) String() string {
	return fmt.Sprintf("<IEEE488_BINBLOCK>%q</IEEE488_BINBLOCK>", b.raw)
}
