package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
)

type Signer struct {
	secretKey []byte
	logger    *slog.Logger
}

func NewSigner(secretKey string, logger *slog.Logger) *Signer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Signer{
		secretKey: []byte(secretKey),
		logger:    logger,
	}
}

func (s *Signer) Sign(data []byte) string {
	mac := hmac.New(sha256.New, s.secretKey)
	mac.Write(data)
	signature := mac.Sum(nil)
	return hex.EncodeToString(signature)
}

func (s *Signer) Verify(data []byte, signature string) (bool, error) {
	expectedSignature := s.Sign(data)

	if !hmac.Equal([]byte(expectedSignature), []byte(signature)) {
		s.logger.Warn("Signature verification failed",
			slog.String("received", signature))
		return false, fmt.Errorf("invalid signature")
	}

	return true, nil
}

func (s *Signer) SignReceipt(accountID, operation string, amount, balance decimal.Decimal, timestamp int64) string {
	return s.Sign(receiptPayload(accountID, operation, amount, balance, timestamp))
}

func (s *Signer) VerifyReceipt(accountID, operation string, amount, balance decimal.Decimal, timestamp int64, signature string) (bool, error) {
	return s.Verify(receiptPayload(accountID, operation, amount, balance, timestamp), signature)
}

// Amounts are rendered with String so 3 and 3.00 sign identically.
func receiptPayload(accountID, operation string, amount, balance decimal.Decimal, timestamp int64) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s:%s:%d", accountID, operation, amount.String(), balance.String(), timestamp))
}
