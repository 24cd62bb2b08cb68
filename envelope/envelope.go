// Package envelope provides password-based string encryption compatible
// with the legacy Blowfish "simple" format: SHA-1 key derivation, CBC with
// a random IV prefix, count-valued padding and base64 framing. The format
// predates modern password KDFs; the single unsalted SHA-1 is preserved for
// wire compatibility and should not be mistaken for one.
package envelope

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"io"
	"unicode/utf16"

	"github.com/tkarsten/bluefin"
)

const (
	saltLength     = 20
	checksumLength = sha1.Size
)

// Simple encrypts and decrypts strings under a password. Instances are not
// safe for concurrent use.
type Simple struct {
	cbc         *bluefin.CBC
	keyChecksum string
	random      io.Reader
}

// New derives the cipher key from password and returns a ready envelope.
// random supplies the salt and every per-message IV; nil selects
// crypto/rand. The raw password bytes and derived key are wiped before New
// returns.
func New(password string, random io.Reader) (*Simple, error) {
	if random == nil {
		random = rand.Reader
	}

	keyRaw := encodeText(password)
	key := sha1.Sum(keyRaw)

	cbc, err := bluefin.NewCBC(key[:])
	if err != nil {
		eraseBytes(keyRaw)
		eraseBytes(key[:])
		return nil, err
	}

	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(random, salt); err != nil {
		eraseBytes(keyRaw)
		eraseBytes(key[:])
		return nil, err
	}

	h := sha1.New()
	h.Write(salt)
	h.Write(keyRaw)
	checksum := h.Sum(nil)

	eraseBytes(keyRaw)
	eraseBytes(key[:])

	return &Simple{
		cbc:         cbc,
		keyChecksum: base64.StdEncoding.EncodeToString(append(salt, checksum...)),
		random:      random,
	}, nil
}

// KeyChecksum returns the salted password checksum generated at setup,
// base64 over 40 bytes: 20 of salt followed by SHA1(salt || password).
// Store it and pass it to VerifyKey to vet a password without a ciphertext.
func (s *Simple) KeyChecksum() string {
	return s.keyChecksum
}

// Encrypt encrypts text and returns base64(IV || ciphertext). The IV is
// drawn fresh from the random source for every call.
func (s *Simple) Encrypt(text string) (string, error) {
	buf := encodeText(text)
	defer eraseBytes(buf)

	// Pad with n bytes of value n up to the next block boundary. An
	// aligned payload gains a full block of 0x08 so the count is always
	// recoverable.
	pad := bluefin.BlockSize - len(buf)%bluefin.BlockSize
	for i := 0; i < pad; i++ {
		buf = append(buf, byte(pad))
	}

	iv := make([]byte, bluefin.BlockSize)
	if _, err := io.ReadFull(s.random, iv); err != nil {
		return "", err
	}
	if err := s.cbc.SetIV(iv); err != nil {
		return "", err
	}

	out := make([]byte, len(iv)+len(buf))
	copy(out, iv)
	if _, err := s.cbc.Encrypt(out[len(iv):], buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt. The boolean is false for any malformed input:
// bad base64, a truncated ciphertext or an illegal pad byte. The failure
// cause is deliberately not distinguished.
func (s *Simple) Decrypt(cipherText string) (string, bool) {
	raw, err := base64.StdEncoding.DecodeString(cipherText)
	if err != nil {
		return "", false
	}
	if len(raw) < bluefin.BlockSize {
		return "", false
	}

	if err := s.cbc.SetIV(raw[:bluefin.BlockSize]); err != nil {
		return "", false
	}
	data := raw[bluefin.BlockSize:]
	dataLen := len(data) / bluefin.BlockSize * bluefin.BlockSize
	if dataLen == 0 {
		return "", false
	}

	plain := make([]byte, dataLen)
	defer eraseBytes(plain)
	if _, err := s.cbc.Decrypt(plain, data[:dataLen]); err != nil {
		return "", false
	}

	pad := int(plain[dataLen-1])
	if pad < 1 || pad > bluefin.BlockSize || pad > dataLen {
		return "", false
	}
	return decodeText(plain[:dataLen-pad]), true
}

// Invalidate wipes the cipher state. The envelope is unusable afterwards.
func (s *Simple) Invalidate() {
	s.cbc.Invalidate()
}

// VerifyKey reports whether password matches a checksum previously produced
// by KeyChecksum. The comparison is constant-time.
func VerifyKey(password, storedChecksum string) bool {
	raw, err := base64.StdEncoding.DecodeString(storedChecksum)
	if err != nil || len(raw) != saltLength+checksumLength {
		return false
	}

	keyRaw := encodeText(password)
	defer eraseBytes(keyRaw)

	h := sha1.New()
	h.Write(raw[:saltLength])
	h.Write(keyRaw)
	computed := h.Sum(nil)

	return subtle.ConstantTimeCompare(computed, raw[saltLength:]) == 1
}

// encodeText converts a string to UTF-16 big-endian bytes, the encoding the
// peer implementation feeds to both the key derivation and the payload.
func encodeText(s string) []byte {
	units := utf16.Encode([]rune(s))
	buf := make([]byte, 2*len(units))
	for i, u := range units {
		buf[2*i] = byte(u >> 8)
		buf[2*i+1] = byte(u)
	}
	return buf
}

// decodeText reverses encodeText. A trailing odd byte is dropped.
func decodeText(b []byte) string {
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
	}
	return string(utf16.Decode(units))
}

func eraseBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
