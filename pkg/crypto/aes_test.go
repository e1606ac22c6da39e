package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestFieldCipherRoundTrip(t *testing.T) {
	f, err := NewFieldCipher(testKey)
	require.NoError(t, err)

	sealed, err := f.Seal("12345678")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "12345678")

	again, err := f.Seal("12345678")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per call")

	plain, err := f.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "12345678", plain)
}

func TestFieldCipherEmpty(t *testing.T) {
	f, err := NewFieldCipher(testKey)
	require.NoError(t, err)

	sealed, err := f.Seal("")
	require.NoError(t, err)
	assert.Empty(t, sealed)

	plain, err := f.Open("")
	require.NoError(t, err)
	assert.Empty(t, plain)
}

func TestKeyFromHex(t *testing.T) {
	_, err := KeyFromHex("zz")
	assert.Error(t, err)

	_, err = KeyFromHex(strings.Repeat("ab", 16))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestOpenTampered(t *testing.T) {
	f, err := NewFieldCipher(testKey)
	require.NoError(t, err)

	sealed, err := f.Seal("secret")
	require.NoError(t, err)

	_, err = f.Open(sealed[:len(sealed)-4] + "AAAA")
	assert.Error(t, err)

	_, err = f.Open("AAAA")
	assert.ErrorIs(t, err, ErrCiphertextTooShort)

	other, err := NewFieldCipher(strings.Repeat("ff", 32))
	require.NoError(t, err)
	_, err = other.Open(sealed)
	assert.Error(t, err)
}
