package webhook

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecret(t *testing.T) {
	a, err := GenerateSecret()
	require.NoError(t, err)
	assert.Len(t, a, 64)

	b, err := GenerateSecret()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSignAndVerify(t *testing.T) {
	secret, err := GenerateSecret()
	require.NoError(t, err)
	body := []byte(`{"event":"credits.changed","data":{"new_balance":42}}`)

	sig := Sign(body, secret)
	assert.True(t, VerifySignature(body, sig, secret))

	// Uppercase hex still verifies.
	assert.True(t, VerifySignature(body, strings.ToUpper(sig), secret))
}

func TestVerifyRejects(t *testing.T) {
	secret, err := GenerateSecret()
	require.NoError(t, err)
	other, err := GenerateSecret()
	require.NoError(t, err)
	body := []byte(`{"event":"stream.started"}`)
	sig := Sign(body, secret)

	assert.False(t, VerifySignature(body, sig, other), "wrong secret")
	assert.False(t, VerifySignature([]byte(`{"event":"tampered"}`), sig, secret), "tampered body")
	assert.False(t, VerifySignature(body, "not-hex", secret), "malformed signature")
	assert.False(t, VerifySignature(body, "", secret), "empty signature")
	assert.False(t, VerifySignature(body, sig, ""), "empty secret")
}
