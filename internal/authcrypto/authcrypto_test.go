package authcrypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := []byte("hunter2")
	challenge := make([]byte, 16)
	for i := range challenge {
		challenge[i] = byte(i)
	}

	ct, err := EncryptChallenge(key, challenge)
	require.NoError(t, err)
	assert.NotEqual(t, challenge, ct)

	got, err := DecryptChallenge(key, ct)
	require.NoError(t, err)
	assert.Equal(t, challenge, got)
}

func TestDecryptRejectsBadKey(t *testing.T) {
	challenge := []byte("some challenge bytes, 31 long!!")
	ct, err := EncryptChallenge([]byte("correct-key"), challenge)
	require.NoError(t, err)

	_, err = DecryptChallenge([]byte("wrong-key"), ct)
	assert.Error(t, err)
}

func TestEncryptRandomisesIV(t *testing.T) {
	key := []byte("k")
	challenge := []byte("same challenge bytes")
	ct1, err := EncryptChallenge(key, challenge)
	require.NoError(t, err)
	ct2, err := EncryptChallenge(key, challenge)
	require.NoError(t, err)
	assert.NotEqual(t, ct1, ct2)
}
