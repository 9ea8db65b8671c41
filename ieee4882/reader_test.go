package ieee4882

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// chunkedSource caps the bytes returned per Read call and records how many
// bytes each call requested, the way a bandwidth-capped transport would.
type chunkedSource struct {
	data       []byte
	maxPerCall int
	requested  []int
}

func (s *chunkedSource) Read(p []byte) (int, error) {
	s.requested = append(s.requested, len(p))
	if len(s.data) == 0 {
		return 0, io.EOF
	}
	n := len(p)
	if s.maxPerCall > 0 && n > s.maxPerCall {
		n = s.maxPerCall
	}
	if n > len(s.data) {
		n = len(s.data)
	}
	copy(p, s.data[:n])
	s.data = s.data[n:]
	return n, nil
}

func TestReadBlockHelloWorld(t *testing.T) {
	src := bytes.NewReader([]byte("#211Hello world"))
	blk, err := ReadBlock(src, ReadConfig{Identifier: "idn"})
	if err != nil {
		t.Fatalf("read block: %v", err)
	}
	if string(blk.Data()) != "Hello world" {
		t.Fatalf("data mismatch: %q", blk.Data())
	}
	if !bytes.Equal(blk.Raw(), []byte("#211Hello world")) {
		t.Fatalf("raw mismatch: %q", blk.Raw())
	}
	if blk.Identifier() != "idn" {
		t.Fatalf("identifier mismatch: %q", blk.Identifier())
	}
}

func TestReadBlockEquivalentAcrossChunkSizes(t *testing.T) {
	payload := bytes.Repeat([]byte("abcdefgh"), 13)
	wire := Encode(payload)
	for _, chunk := range []int{1, 7, 0} {
		blk, err := ReadBlock(bytes.NewReader(wire), ReadConfig{ChunkSize: chunk})
		if err != nil {
			t.Fatalf("chunk %d: %v", chunk, err)
		}
		if !bytes.Equal(blk.Data(), payload) {
			t.Fatalf("chunk %d: data mismatch", chunk)
		}
	}
}

func TestReadBlockChunkLoopBoundsRequests(t *testing.T) {
	src := &chunkedSource{data: []byte("#2100123456789"), maxPerCall: 3}
	blk, err := ReadBlock(src, ReadConfig{ChunkSize: 3})
	if err != nil {
		t.Fatalf("read block: %v", err)
	}
	if string(blk.Data()) != "0123456789" {
		t.Fatalf("data mismatch: %q", blk.Data())
	}
	// prefix, digit count, length field, then the bounded payload loop
	want := []int{1, 1, 2, 3, 3, 3, 1}
	if len(src.requested) != len(want) {
		t.Fatalf("request count mismatch: got %v want %v", src.requested, want)
	}
	for i, n := range want {
		if src.requested[i] != n {
			t.Fatalf("request %d: got %v want %v", i, src.requested, want)
		}
	}
}

func TestReadBlockConsumesTermination(t *testing.T) {
	wire := append(Encode([]byte("data")), '\r', '\n')
	src := bytes.NewReader(wire)
	blk, err := ReadBlock(src, ReadConfig{Termination: []byte("\r\n")})
	if err != nil {
		t.Fatalf("read block: %v", err)
	}
	if string(blk.Data()) != "data" {
		t.Fatalf("data mismatch: %q", blk.Data())
	}
	if src.Len() != 0 {
		t.Fatalf("termination not consumed: %d bytes left", src.Len())
	}
}

func TestReadBlockRejectsMissingPound(t *testing.T) {
	_, err := ReadBlock(bytes.NewReader([]byte("ERR\n")), ReadConfig{})
	if !errors.Is(err, ErrUnexpectedResponseFormat) {
		t.Fatalf("expected ErrUnexpectedResponseFormat, got %v", err)
	}
}

func TestReadBlockRejectsBadDigitCount(t *testing.T) {
	_, err := ReadBlock(bytes.NewReader([]byte("#x11")), ReadConfig{})
	if !errors.Is(err, ErrUnexpectedResponseFormat) {
		t.Fatalf("expected ErrUnexpectedResponseFormat, got %v", err)
	}
}

func TestReadBlockRejectsMalformedLengthField(t *testing.T) {
	// A sign byte is not a decimal digit; a negative length must never reach
	// the payload allocation.
	for _, wire := range []string{"#2-1xx", "#2+5hello", "#21aabbbbbbbbbbb"} {
		_, err := ReadBlock(bytes.NewReader([]byte(wire)), ReadConfig{})
		if !errors.Is(err, ErrUnexpectedResponseFormat) {
			t.Fatalf("wire %q: expected ErrUnexpectedResponseFormat, got %v", wire, err)
		}
	}
}

func TestReadBlockRejectsIndefiniteLength(t *testing.T) {
	_, err := ReadBlock(bytes.NewReader([]byte("#0data\n")), ReadConfig{})
	if !errors.Is(err, ErrUnsupportedBlockFormat) {
		t.Fatalf("expected ErrUnsupportedBlockFormat, got %v", err)
	}
}

func TestReadBlockPropagatesShortSource(t *testing.T) {
	_, err := ReadBlock(bytes.NewReader([]byte("#210short")), ReadConfig{})
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected unexpected EOF, got %v", err)
	}
	if errors.Is(err, ErrUnexpectedResponseFormat) || errors.Is(err, ErrInvalidBlockFormat) {
		t.Fatalf("transport failure misclassified as format error: %v", err)
	}
}

func TestReadBlockEmptyPayload(t *testing.T) {
	blk, err := ReadBlock(bytes.NewReader([]byte("#10\n")), ReadConfig{Termination: []byte("\n")})
	if err != nil {
		t.Fatalf("read block: %v", err)
	}
	if blk.Len() != 0 {
		t.Fatalf("expected empty payload, got %d bytes", blk.Len())
	}
}
