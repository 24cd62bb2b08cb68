package bluefin

// CBC chains each plaintext block into the next by XORing it with the
// previous ciphertext block before encryption. The IV seeds the chain and
// tracks the most recent ciphertext block across calls.
type CBC struct {
	cipher Cipher
	iv     [BlockSize]byte
}

// NewCBC returns a CBC mode instance keyed with the given key. The IV
// starts at zero; call SetIV before encrypting a new message.
func NewCBC(key []byte) (*CBC, error) {
	var m CBC
	if err := m.cipher.Reinitialize(key); err != nil {
		return nil, err
	}
	return &m, nil
}

// Reinitialize re-keys the mode and resets the IV to zero.
func (m *CBC) Reinitialize(key []byte) error {
	m.iv = [BlockSize]byte{}
	return m.cipher.Reinitialize(key)
}

// SetIV copies the first BlockSize bytes of iv into the chain state.
func (m *CBC) SetIV(iv []byte) error {
	if len(iv) < BlockSize {
		return ErrShortBuffer
	}
	copy(m.iv[:], iv[:BlockSize])
	return nil
}

// IV returns a copy of the current chain state: the IV as set, or the last
// ciphertext block processed since.
func (m *CBC) IV() []byte {
	iv := make([]byte, BlockSize)
	copy(iv, m.iv[:])
	return iv
}

// Encrypt encrypts len(src) bytes from src into dst and returns the number
// of bytes written. len(src) must be a multiple of BlockSize and dst must
// be at least as long as src. dst and src may be the same slice.
func (m *CBC) Encrypt(dst, src []byte) (int, error) {
	if err := m.check(dst, src); err != nil {
		return 0, err
	}
	for i := 0; i < len(src); i += BlockSize {
		for j := 0; j < BlockSize; j++ {
			dst[i+j] = src[i+j] ^ m.iv[j]
		}
		if err := m.cipher.Encrypt(dst[i:i+BlockSize], dst[i:i+BlockSize]); err != nil {
			return i, err
		}
		copy(m.iv[:], dst[i:i+BlockSize])
	}
	return len(src), nil
}

// Decrypt decrypts len(src) bytes from src into dst and returns the number
// of bytes written, under the same alignment contract as Encrypt.
func (m *CBC) Decrypt(dst, src []byte) (int, error) {
	if err := m.check(dst, src); err != nil {
		return 0, err
	}
	var saved [BlockSize]byte
	for i := 0; i < len(src); i += BlockSize {
		// src and dst may alias, so hold on to the ciphertext block
		// before decrypting over it.
		copy(saved[:], src[i:i+BlockSize])
		if err := m.cipher.Decrypt(dst[i:i+BlockSize], src[i:i+BlockSize]); err != nil {
			return i, err
		}
		for j := 0; j < BlockSize; j++ {
			dst[i+j] ^= m.iv[j]
		}
		m.iv = saved
	}
	return len(src), nil
}

// Clone returns an independent deep copy of the mode, key schedule and IV
// included.
func (m *CBC) Clone() *CBC {
	dup := *m
	return &dup
}

// WeakKey reports the underlying cipher's weak-key flag.
func (m *CBC) WeakKey() bool { return m.cipher.WeakKey() }

// Invalidate zeroes the key schedule and the IV.
func (m *CBC) Invalidate() {
	m.iv = [BlockSize]byte{}
	m.cipher.Invalidate()
}

func (m *CBC) check(dst, src []byte) error {
	if m.cipher.invalidated {
		return ErrInvalidated
	}
	if len(src)%BlockSize != 0 {
		return ErrUnalignedInput
	}
	if len(dst) < len(src) {
		return ErrShortBuffer
	}
	return nil
}
