// Package stream frames a byte stream for exchange with the peer Blowfish
// stream implementation: a 4-byte little-endian payload length followed by
// the CFB ciphertext of the payload.
package stream

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/tkarsten/bluefin"
)

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("stream: write after close")

const headerSize = 4

// Writer collects plaintext and, on Close, emits the length header and the
// encrypted payload to the underlying writer. Close is mandatory; nothing
// reaches the underlying writer before it.
type Writer struct {
	w      io.Writer
	cfb    *bluefin.CFB
	buf    bytes.Buffer
	closed bool
}

// NewWriter returns a Writer encrypting with the given key. Both peers
// start from a fresh CFB state, so a Reader constructed with the same key
// recovers the payload.
func NewWriter(w io.Writer, key []byte) (*Writer, error) {
	cfb, err := bluefin.NewCFB(key)
	if err != nil {
		return nil, err
	}
	return &Writer{w: w, cfb: cfb}, nil
}

// Write buffers p in memory until Close.
func (sw *Writer) Write(p []byte) (int, error) {
	if sw.closed {
		return 0, ErrClosed
	}
	return sw.buf.Write(p)
}

// Close encrypts the buffered payload and writes the framed result. The
// buffered plaintext is wiped afterwards.
func (sw *Writer) Close() error {
	if sw.closed {
		return nil
	}
	sw.closed = true

	payload := sw.buf.Bytes()
	var header [headerSize]byte
	binary.LittleEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := sw.w.Write(header[:]); err != nil {
		return fmt.Errorf("writing stream header: %w", err)
	}

	if _, err := sw.cfb.Encrypt(payload, payload); err != nil {
		return fmt.Errorf("encrypting stream payload: %w", err)
	}
	if _, err := sw.w.Write(payload); err != nil {
		return fmt.Errorf("writing stream payload: %w", err)
	}

	for i := range payload {
		payload[i] = 0
	}
	sw.buf.Reset()
	return nil
}

// Reader decrypts a stream produced by Writer (or the peer implementation).
// The length header is consumed on the first read; reads past the framed
// payload return io.EOF.
type Reader struct {
	r         io.Reader
	cfb       *bluefin.CFB
	remaining uint32
	started   bool
}

// NewReader returns a Reader decrypting with the given key.
func NewReader(r io.Reader, key []byte) (*Reader, error) {
	cfb, err := bluefin.NewCFB(key)
	if err != nil {
		return nil, err
	}
	return &Reader{r: r, cfb: cfb}, nil
}

func (sr *Reader) Read(p []byte) (int, error) {
	if !sr.started {
		var header [headerSize]byte
		if _, err := io.ReadFull(sr.r, header[:]); err != nil {
			return 0, fmt.Errorf("reading stream header: %w", err)
		}
		sr.remaining = binary.LittleEndian.Uint32(header[:])
		sr.started = true
	}

	if sr.remaining == 0 {
		return 0, io.EOF
	}
	if uint32(len(p)) > sr.remaining {
		p = p[:sr.remaining]
	}

	n, err := sr.r.Read(p)
	if n > 0 {
		if _, derr := sr.cfb.Decrypt(p[:n], p[:n]); derr != nil {
			return 0, derr
		}
		sr.remaining -= uint32(n)
	}
	if err == io.EOF && sr.remaining > 0 {
		err = io.ErrUnexpectedEOF
	}
	return n, err
}
