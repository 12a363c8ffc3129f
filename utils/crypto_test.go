package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plaintext := `{"cookies":[{"name":"JSESSIONID","value":"abc123"}]}`

	enc, err := EncryptString(plaintext, "secret-key")
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, enc)

	dec, err := DecryptString(enc, "secret-key")
	require.NoError(t, err)
	assert.Equal(t, plaintext, dec)
}

func TestDecryptWithWrongSecretFails(t *testing.T) {
	enc, err := EncryptString("session material", "right-key")
	require.NoError(t, err)

	_, err = DecryptString(enc, "wrong-key")
	assert.Error(t, err)
}

func TestDecryptRejectsGarbage(t *testing.T) {
	_, err := DecryptString("not base64!!", "key")
	assert.Error(t, err)

	_, err = DecryptString("c2hvcnQ=", "key") // valid base64, too short
	assert.Error(t, err)
}
