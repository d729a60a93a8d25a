package cryptox

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCipher(t *testing.T, passphrase string) *FieldCipher {
	t.Helper()
	c, err := NewFieldCipher(passphrase)
	require.NoError(t, err)
	return c
}

func TestDeriveKey_Deterministic(t *testing.T) {
	key1 := DeriveKey([]byte("secret-password"), []byte("fixed-salt"))
	key2 := DeriveKey([]byte("secret-password"), []byte("fixed-salt"))

	require.Len(t, key1, 32)
	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	key1 := DeriveKey([]byte("secret-password"), []byte("salt-1"))
	key2 := DeriveKey([]byte("secret-password"), []byte("salt-2"))

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestNewFieldCipher_RejectsEmptyPassphrase(t *testing.T) {
	_, err := NewFieldCipher("")
	require.Error(t, err)
}

func TestNewFieldCipherWithKey_BadLength(t *testing.T) {
	_, err := NewFieldCipherWithKey([]byte("short"))
	require.Error(t, err)
}

func TestFieldCipher_RoundTrip(t *testing.T) {
	c := newTestCipher(t, "dragon")

	for _, plain := range []string{"1234 5678 9012", "ABCDE1234F", "ü", "x"} {
		enc, err := c.Encrypt(plain)
		require.NoError(t, err)
		assert.NotEqual(t, plain, enc)

		dec, err := c.Decrypt(enc)
		require.NoError(t, err)
		assert.Equal(t, plain, dec)
	}
}

func TestFieldCipher_EncryptUsesFreshNonce(t *testing.T) {
	c := newTestCipher(t, "dragon")

	a, err := c.Encrypt("same")
	require.NoError(t, err)
	b, err := c.Encrypt("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestFieldCipher_EmptyPassesThrough(t *testing.T) {
	c := newTestCipher(t, "dragon")

	enc, err := c.Encrypt("")
	require.NoError(t, err)
	assert.Equal(t, "", enc)

	dec, err := c.Decrypt("")
	require.NoError(t, err)
	assert.Equal(t, "", dec)
}

func TestFieldCipher_CorruptedYieldsEmpty(t *testing.T) {
	c := newTestCipher(t, "dragon")
	enc, err := c.Encrypt("1234 5678 9012")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(enc)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	flipped := base64.StdEncoding.EncodeToString(raw)

	tests := map[string]string{
		"not base64": "%%%",
		"too short":  base64.StdEncoding.EncodeToString([]byte("abc")),
		"tampered":   flipped,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			dec, err := c.Decrypt(in)
			require.ErrorIs(t, err, ErrUndecryptable)
			assert.Equal(t, "", dec)
		})
	}
}

func TestFieldCipher_WrongKeyYieldsEmpty(t *testing.T) {
	enc, err := newTestCipher(t, "dragon").Encrypt("secret")
	require.NoError(t, err)

	dec, err := newTestCipher(t, "other").Decrypt(enc)
	require.ErrorIs(t, err, ErrUndecryptable)
	assert.Equal(t, "", dec)
}
