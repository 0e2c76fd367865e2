package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/env"
)

// Intent is what the frontend needs to complete a checkout with the
// external processor.
type Intent struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Credits      int64  `json:"credits"`
}

// Notification is the processor's signed callback after a charge settles.
type Notification struct {
	Type string `json:"type"`
	Data struct {
		PaymentID string `json:"payment_id"`
		AccountID uint   `json:"account_id"`
		PackageID string `json:"package_id"`
		Amount    int64  `json:"amount"`
		Credits   int64  `json:"credits"`
	} `json:"data"`
}

const (
	// ProviderName identifies the processor in payment records.
	ProviderName = "streampay"

	// NotificationSucceeded is the only notification type that credits an account.
	NotificationSucceeded = "payment.succeeded"
	// NotificationFailed is logged and acknowledged without any balance change.
	NotificationFailed = "payment.failed"
)

var ErrUnknownPackage = errors.New("payments: unknown package")

// Provider creates checkout intents with the external processor. The real
// processor call is out of process; this client records what the checkout is
// for so the notification can be reconciled later.
type Provider interface {
	CreateIntent(accountID uint, pkg Package) (Intent, error)
}

type provider struct{}

// NewProvider returns the default processor client.
func NewProvider() Provider {
	return provider{}
}

func (provider) CreateIntent(accountID uint, pkg Package) (Intent, error) {
	ref := uuid.New().String()
	return Intent{
		IntentID:     fmt.Sprintf("pi_%s", ref),
		ClientSecret: fmt.Sprintf("pi_%s_secret_%s", ref, uuid.New().String()),
		Amount:       pkg.PriceCts,
		Currency:     pkg.Currency,
		Credits:      pkg.Credits,
	}, nil
}

// VerifyNotificationSignature checks the processor's hex HMAC-SHA256 signature
// over the raw request body.
func VerifyNotificationSignature(payload []byte, signatureHeader string) bool {
	secret := strings.TrimSpace(env.GetEnv("PAYMENT_WEBHOOK_SECRET", ""))
	return verifySignature(payload, signatureHeader, secret)
}

func verifySignature(payload []byte, signatureHeader, secret string) bool {
	sig := strings.TrimSpace(signatureHeader)
	if sig == "" || secret == "" {
		return false
	}

	decodedSig, err := hex.DecodeString(strings.ToLower(sig))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), decodedSig)
}

// ParseNotification decodes a verified callback body.
func ParseNotification(payload []byte) (Notification, error) {
	var n Notification
	if err := json.Unmarshal(payload, &n); err != nil {
		return Notification{}, err
	}
	if n.Type == "" || n.Data.PaymentID == "" {
		return Notification{}, errors.New("payments: malformed notification")
	}
	return n, nil
}
