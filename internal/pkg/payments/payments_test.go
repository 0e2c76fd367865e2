package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackageCatalog(t *testing.T) {
	packages := Packages()
	require.Len(t, packages, 3)

	starter, ok := FindPackage("starter")
	require.True(t, ok)
	assert.Equal(t, int64(100), starter.Credits)
	assert.Equal(t, int64(999), starter.PriceCts)

	pro, ok := FindPackage("PRO")
	require.True(t, ok)
	assert.Equal(t, int64(500), pro.Credits)

	enterprise, ok := FindPackage(" enterprise ")
	require.True(t, ok)
	assert.Equal(t, int64(12999), enterprise.PriceCts)

	_, ok = FindPackage("mega")
	assert.False(t, ok)
}

func TestCreateIntent(t *testing.T) {
	pkg, ok := FindPackage("pro")
	require.True(t, ok)

	intent, err := NewProvider().CreateIntent(7, pkg)
	require.NoError(t, err)
	assert.NotEmpty(t, intent.IntentID)
	assert.NotEmpty(t, intent.ClientSecret)
	assert.Equal(t, pkg.PriceCts, intent.Amount)
	assert.Equal(t, pkg.Credits, intent.Credits)
}

func signBody(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyNotificationSignature(t *testing.T) {
	t.Setenv("PAYMENT_WEBHOOK_SECRET", "test-secret")

	body := []byte(`{"type":"payment.succeeded","data":{"payment_id":"pi_1"}}`)
	sig := signBody(body, "test-secret")

	assert.True(t, VerifyNotificationSignature(body, sig))
	assert.False(t, VerifyNotificationSignature(body, signBody(body, "wrong-secret")))
	assert.False(t, VerifyNotificationSignature([]byte(`{"type":"tampered"}`), sig))
	assert.False(t, VerifyNotificationSignature(body, ""))
}

func TestVerifyNotificationSignatureNoSecretConfigured(t *testing.T) {
	t.Setenv("PAYMENT_WEBHOOK_SECRET", "")

	body := []byte(`{}`)
	assert.False(t, VerifyNotificationSignature(body, signBody(body, "")))
}

func TestParseNotification(t *testing.T) {
	n, err := ParseNotification([]byte(`{
		"type": "payment.succeeded",
		"data": {"payment_id": "pi_1", "account_id": 7, "package_id": "starter", "amount": 999, "credits": 100}
	}`))
	require.NoError(t, err)
	assert.Equal(t, NotificationSucceeded, n.Type)
	assert.Equal(t, "pi_1", n.Data.PaymentID)
	assert.Equal(t, uint(7), n.Data.AccountID)
	assert.Equal(t, int64(100), n.Data.Credits)

	_, err = ParseNotification([]byte(`not json`))
	assert.Error(t, err)

	_, err = ParseNotification([]byte(`{"type":"payment.succeeded","data":{}}`))
	assert.Error(t, err)
}
