package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestNewSecretBox_keyValidation(t *testing.T) {
	_, err := NewSecretBox("not-hex")
	assert.Error(t, err)

	_, err = NewSecretBox("00ff") // 2 bytes
	assert.Error(t, err)

	_, err = NewSecretBox(testKeyHex)
	assert.NoError(t, err)
}

func TestSecretBox_roundTrip(t *testing.T) {
	box, err := NewSecretBox(testKeyHex)
	require.NoError(t, err)

	encrypted, err := box.Encrypt("evolution-api-key")
	require.NoError(t, err)
	assert.NotContains(t, encrypted, "evolution-api-key")

	plain, err := box.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "evolution-api-key", plain)

	// Nonces are random, so the same plaintext encrypts differently.
	again, err := box.Encrypt("evolution-api-key")
	require.NoError(t, err)
	assert.NotEqual(t, encrypted, again)
}

func TestSecretBox_decryptRejectsBadInput(t *testing.T) {
	box, err := NewSecretBox(testKeyHex)
	require.NoError(t, err)

	for _, in := range []string{"", "zz", "00ff", strings.Repeat("00", 64)} {
		_, err := box.Decrypt(in)
		assert.ErrorIs(t, err, ErrInvalidCiphertext, "input %q", in)
	}

	encrypted, err := box.Encrypt("secret")
	require.NoError(t, err)
	tampered := encrypted[:len(encrypted)-2] + "ff"
	if tampered == encrypted {
		tampered = encrypted[:len(encrypted)-2] + "00"
	}
	_, err = box.Decrypt(tampered)
	assert.ErrorIs(t, err, ErrInvalidCiphertext)

	other, err := NewSecretBox(strings.Repeat("ab", 32))
	require.NoError(t, err)
	_, err = other.Decrypt(encrypted)
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}
