package crypto

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSigner_ReceiptRoundTrip(t *testing.T) {
	s := NewSigner("test-secret", nil)
	amount := decimal.RequireFromString("500")
	balance := decimal.RequireFromString("1500")

	sig := s.SignReceipt("acc1", "deposit", amount, balance, 1700000000)

	ok, err := s.VerifyReceipt("acc1", "deposit", amount, balance, 1700000000, sig)
	if !ok || err != nil {
		t.Fatalf("expected valid signature, got ok=%v err=%v", ok, err)
	}
}

func TestSigner_ReceiptTampered(t *testing.T) {
	s := NewSigner("test-secret", nil)
	amount := decimal.RequireFromString("500")
	sig := s.SignReceipt("acc1", "deposit", amount, amount, 1)

	ok, err := s.VerifyReceipt("acc1", "deposit", amount, decimal.RequireFromString("5000"), 1, sig)

	if ok || err == nil {
		t.Fatal("expected tampered receipt to fail verification")
	}
}

func TestSigner_TrailingZerosIgnored(t *testing.T) {
	s := NewSigner("k", nil)

	a := s.SignReceipt("x", "interest", decimal.RequireFromString("3"), decimal.RequireFromString("1003"), 7)
	b := s.SignReceipt("x", "interest", decimal.RequireFromString("3.000"), decimal.RequireFromString("1003.0"), 7)

	if a != b {
		t.Fatalf("expected equal signatures, got %s and %s", a, b)
	}
}

func TestSigner_DifferentKeys(t *testing.T) {
	data := []byte("payload")

	if NewSigner("a", nil).Sign(data) == NewSigner("b", nil).Sign(data) {
		t.Fatal("expected signatures from different keys to differ")
	}
}
