package envelope

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

// seqReader hands out 0, 1, 2, ... so salt and IV draws are reproducible.
type seqReader struct {
	next byte
}

func (r *seqReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.next
		r.next++
	}
	return len(p), nil
}

// The fixture ciphertext was produced by the peer implementation; decrypting
// it proves key derivation, CBC chaining, padding and text decoding all
// match the wire format.
func TestSimple_DecryptPeerFixture(t *testing.T) {
	env, err := New("secret", &seqReader{})
	require.NoError(t, err)

	text, ok := env.Decrypt("4ceZqW4rH2PzSSfVtzWNnG/kzEfsMbeQAGQvXNKGAHs=")
	require.True(t, ok, "peer fixture failed to decrypt")
	require.Equal(t, "Protect me.", text)
}

func TestSimple_DeterministicEncrypt(t *testing.T) {
	env, err := New("secret", &seqReader{})
	require.NoError(t, err)

	// The fake random source yields bytes 0..19 for the salt, then 20..27
	// for the first IV.
	require.Equal(t,
		"AAECAwQFBgcICQoLDA0ODxAREhPSej1vCmnFyZOlweoztIPzkQ9fcA==",
		env.KeyChecksum())

	cipherText, err := env.Encrypt("Protect me.")
	require.NoError(t, err)
	require.Equal(t, "FBUWFxgZGhvFu/wfQlExXXicsu1ZejHW9aN5ZmK8k+Q=", cipherText)

	back, ok := env.Decrypt(cipherText)
	require.True(t, ok)
	require.Equal(t, "Protect me.", back)
}

func TestSimple_RoundTrip(t *testing.T) {
	tests := map[string]string{
		"empty":          "",
		"one_char":       "x",
		"block_aligned":  "abcd",
		"longer":         "a somewhat longer message that spans several blocks",
		"non_ascii":      "pāsswörd ☃",
		"supplementary":  "emoji: \U0001F41F",
		"trailing_space": "ends with a space ",
	}

	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			env, err := New("round trip password", nil)
			require.NoError(t, err)

			cipherText, err := env.Encrypt(text)
			require.NoError(t, err)

			got, ok := env.Decrypt(cipherText)
			require.True(t, ok)
			require.Equal(t, text, got)
		})
	}
}

func TestSimple_DistinctIVsPerMessage(t *testing.T) {
	env, err := New("password", nil)
	require.NoError(t, err)

	a, err := env.Encrypt("same message")
	require.NoError(t, err)
	b, err := env.Encrypt("same message")
	require.NoError(t, err)
	require.NotEqual(t, a, b, "two encryptions of one message must differ by IV")
}

func TestSimple_DecryptRejectsMalformedInput(t *testing.T) {
	env, err := New("password", nil)
	require.NoError(t, err)

	valid, err := env.Encrypt("target")
	require.NoError(t, err)

	tests := map[string]string{
		"not_base64":     "@@@ not base64 @@@",
		"empty":          "",
		"too_short":      base64.StdEncoding.EncodeToString([]byte{1, 2, 3}),
		"iv_only":        base64.StdEncoding.EncodeToString(make([]byte, 8)),
		"wrong_password": valid,
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			target := env
			if name == "wrong_password" {
				target, err = New("a different password", nil)
				require.NoError(t, err)
			}
			// A wrong password nearly always yields an illegal pad byte;
			// when it does not, the output is garbage but that is the
			// documented limit of an unauthenticated format, so only the
			// structural cases assert ok == false.
			got, ok := target.Decrypt(input)
			if name == "wrong_password" {
				if ok {
					require.NotEqual(t, "target", got)
				}
				return
			}
			require.False(t, ok, "malformed input %q decrypted", input)
			require.Empty(t, got)
		})
	}
}

func TestVerifyKey(t *testing.T) {
	env, err := New("correct horse", nil)
	require.NoError(t, err)
	checksum := env.KeyChecksum()

	raw, err := base64.StdEncoding.DecodeString(checksum)
	require.NoError(t, err)
	require.Len(t, raw, 40)

	require.True(t, VerifyKey("correct horse", checksum))
	require.False(t, VerifyKey("battery staple", checksum))
	require.False(t, VerifyKey("correct horse", "not base64 at all"))
	require.False(t, VerifyKey("correct horse", base64.StdEncoding.EncodeToString(raw[:39])))
}

func TestSimple_ChecksumsSaltedPerInstance(t *testing.T) {
	a, err := New("password", nil)
	require.NoError(t, err)
	b, err := New("password", nil)
	require.NoError(t, err)
	require.NotEqual(t, a.KeyChecksum(), b.KeyChecksum(),
		"two setups of one password must draw different salts")

	// Both checksums still verify against the shared password.
	require.True(t, VerifyKey("password", a.KeyChecksum()))
	require.True(t, VerifyKey("password", b.KeyChecksum()))
}

func TestSimple_Invalidate(t *testing.T) {
	env, err := New("password", nil)
	require.NoError(t, err)

	env.Invalidate()
	_, err = env.Encrypt("anything")
	require.Error(t, err)
}
