package bluefin

// CFB runs the cipher as a self-synchronising stream: the IV block is
// encrypted to produce keystream, and every ciphertext byte is fed back
// into the IV buffer so the keystream always derives from the last eight
// ciphertext bytes. Any byte count is accepted, and a message may be
// processed across any number of calls with identical results.
type CFB struct {
	cipher Cipher
	iv     [BlockSize]byte
	// ivLeft counts how many trailing bytes of iv are still unconsumed
	// keystream. Zero forces a fresh block encryption on the next byte.
	ivLeft int
}

// NewCFB returns a CFB mode instance keyed with the given key. The IV
// starts at zero with no keystream buffered.
func NewCFB(key []byte) (*CFB, error) {
	var m CFB
	if err := m.cipher.Reinitialize(key); err != nil {
		return nil, err
	}
	return &m, nil
}

// Reinitialize re-keys the mode, resets the IV to zero and discards any
// buffered keystream.
func (m *CFB) Reinitialize(key []byte) error {
	m.iv = [BlockSize]byte{}
	m.ivLeft = 0
	return m.cipher.Reinitialize(key)
}

// SetIV copies the first BlockSize bytes of iv in and discards any
// buffered keystream, so the next byte processed begins a fresh block.
func (m *CFB) SetIV(iv []byte) error {
	if len(iv) < BlockSize {
		return ErrShortBuffer
	}
	copy(m.iv[:], iv[:BlockSize])
	m.ivLeft = 0
	return nil
}

// IV returns a copy of the current IV buffer.
func (m *CFB) IV() []byte {
	iv := make([]byte, BlockSize)
	copy(iv, m.iv[:])
	return iv
}

// Encrypt encrypts len(src) bytes from src into dst and returns the number
// of bytes written. dst must be at least as long as src; the two may be the
// same slice.
func (m *CFB) Encrypt(dst, src []byte) (int, error) {
	if err := m.check(dst, src); err != nil {
		return 0, err
	}
	for i := range src {
		if m.ivLeft == 0 {
			if err := m.cipher.Encrypt(m.iv[:], m.iv[:]); err != nil {
				return i, err
			}
			m.ivLeft = BlockSize
		}
		j := BlockSize - m.ivLeft
		c := src[i] ^ m.iv[j]
		m.iv[j] = c
		dst[i] = c
		m.ivLeft--
	}
	return len(src), nil
}

// Decrypt decrypts len(src) bytes from src into dst and returns the number
// of bytes written. The incoming ciphertext byte, not the recovered
// plaintext, is what refills the IV buffer; this must hold on every path or
// a partial-block call would desynchronise the keystream.
func (m *CFB) Decrypt(dst, src []byte) (int, error) {
	if err := m.check(dst, src); err != nil {
		return 0, err
	}
	for i := range src {
		if m.ivLeft == 0 {
			if err := m.cipher.Encrypt(m.iv[:], m.iv[:]); err != nil {
				return i, err
			}
			m.ivLeft = BlockSize
		}
		j := BlockSize - m.ivLeft
		c := src[i]
		dst[i] = c ^ m.iv[j]
		m.iv[j] = c
		m.ivLeft--
	}
	return len(src), nil
}

// Clone returns an independent deep copy of the mode: key schedule, IV
// buffer and keystream cursor.
func (m *CFB) Clone() *CFB {
	dup := *m
	return &dup
}

// WeakKey reports the underlying cipher's weak-key flag.
func (m *CFB) WeakKey() bool { return m.cipher.WeakKey() }

// Invalidate zeroes the key schedule, the IV buffer and the cursor.
func (m *CFB) Invalidate() {
	m.iv = [BlockSize]byte{}
	m.ivLeft = 0
	m.cipher.Invalidate()
}

func (m *CFB) check(dst, src []byte) error {
	if m.cipher.invalidated {
		return ErrInvalidated
	}
	if len(dst) < len(src) {
		return ErrShortBuffer
	}
	return nil
}
