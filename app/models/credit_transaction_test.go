package models

import "testing"

func TestTransactionKindValid(t *testing.T) {
	valid := []TransactionKind{
		TxKindPurchase, TxKindChat, TxKindContentGeneration, TxKindVideoGeneration,
		TxKindRepurpose, TxKindSEO, TxKindSocialPublish, TxKindRefund, TxKindAdminAdjustment,
	}
	for _, k := range valid {
		if !k.Valid() {
			t.Fatalf("expected kind %q to be valid", k)
		}
	}

	for _, k := range []TransactionKind{"", "spend", "CHAT", "purchase "} {
		if k.Valid() {
			t.Fatalf("expected kind %q to be invalid", k)
		}
	}
}
