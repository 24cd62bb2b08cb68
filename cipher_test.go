package bluefin

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func vectorBytes(v uint64) []byte {
	b := make([]byte, BlockSize)
	putbe(b[0:4], uint32(v>>32))
	putbe(b[4:8], uint32(v))
	return b
}

func TestCipher_Vectors(t *testing.T) {
	for i, v := range selfTestVectors {
		c, err := NewCipher(vectorBytes(v.key))
		require.NoError(t, err, "vector %d", i)

		block := vectorBytes(v.plain)
		require.NoError(t, c.Encrypt(block, block))
		require.Equal(t, vectorBytes(v.cipher), block, "vector %d encrypt", i)

		require.NoError(t, c.Decrypt(block, block))
		require.Equal(t, vectorBytes(v.plain), block, "vector %d decrypt", i)
	}
}

func TestSelfTest(t *testing.T) {
	if !SelfTest() {
		t.Fatal("expected the embedded vector set to pass")
	}
}

func TestNewCipher_KeySize(t *testing.T) {
	tests := map[string]struct {
		keyLen  int
		wantErr bool
	}{
		"one_byte":     {keyLen: 1},
		"max_length":   {keyLen: MaxKeyLength},
		"empty":        {keyLen: 0},
		"over_max":     {keyLen: MaxKeyLength + 1, wantErr: true},
		"way_over_max": {keyLen: 443, wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewCipher(make([]byte, tt.keyLen))
			if tt.wantErr {
				var kse KeySizeError
				require.ErrorAs(t, err, &kse)
				require.Equal(t, tt.keyLen, int(kse))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// An empty key must leave the P-array unmixed: the schedule still streams
// the zero block through the state, so the result differs from the raw pi
// tables but matches any other empty-key instance.
func TestCipher_EmptyKey(t *testing.T) {
	a, err := NewCipher(nil)
	require.NoError(t, err)
	b, err := NewCipher([]byte{})
	require.NoError(t, err)

	block := vectorBytes(0x0123456789ABCDEF)
	require.NoError(t, a.Encrypt(block, block))
	require.NoError(t, b.Decrypt(block, block))
	require.Equal(t, vectorBytes(0x0123456789ABCDEF), block)
}

func TestCipher_Invalidate(t *testing.T) {
	c, err := NewCipher([]byte("invalidate me"))
	require.NoError(t, err)

	c.Invalidate()

	for _, v := range c.p {
		require.Zero(t, v, "P-array entry survived invalidation")
	}
	for _, box := range [][256]uint32{c.s0, c.s1, c.s2, c.s3} {
		for _, v := range box {
			require.Zero(t, v, "S-box entry survived invalidation")
		}
	}

	block := make([]byte, BlockSize)
	require.ErrorIs(t, c.Encrypt(block, block), ErrInvalidated)
	require.ErrorIs(t, c.Decrypt(block, block), ErrInvalidated)

	// Reinitializing brings the instance back.
	require.NoError(t, c.Reinitialize(vectorBytes(0)))
	require.NoError(t, c.Encrypt(block, block))
	require.Equal(t, vectorBytes(0x4EF997456198DD78), block)
}

func TestCipher_WeakKeyDetection(t *testing.T) {
	c, err := NewCipher([]byte("an ordinary key"))
	require.NoError(t, err)
	require.False(t, c.WeakKey(), "schedule of an ordinary key flagged weak")
	require.False(t, c.hasDuplicateSBoxEntry())

	// Plant a duplicate to confirm the scan notices one.
	c.s2[17] = c.s2[200]
	require.True(t, c.hasDuplicateSBoxEntry())
}

func TestCipher_ShortBuffers(t *testing.T) {
	c, err := NewCipher([]byte("key"))
	require.NoError(t, err)

	block := make([]byte, BlockSize)
	require.ErrorIs(t, c.Encrypt(block, block[:5]), ErrShortBuffer)
	require.ErrorIs(t, c.Encrypt(block[:5], block), ErrShortBuffer)
	require.ErrorIs(t, c.Decrypt(block[:7], block), ErrShortBuffer)
}

func TestCipher_ReinitializeResetsSchedule(t *testing.T) {
	c, err := NewCipher([]byte("first key"))
	require.NoError(t, err)

	one := make([]byte, BlockSize)
	require.NoError(t, c.Encrypt(one, vectorBytes(0)))

	require.NoError(t, c.Reinitialize([]byte("second key")))
	two := make([]byte, BlockSize)
	require.NoError(t, c.Encrypt(two, vectorBytes(0)))
	require.NotEqual(t, one, two, "different keys produced identical ciphertext")

	require.NoError(t, c.Reinitialize([]byte("first key")))
	again := make([]byte, BlockSize)
	require.NoError(t, c.Encrypt(again, vectorBytes(0)))
	require.Equal(t, one, again, "re-keying with the original key did not reproduce the schedule")
}
