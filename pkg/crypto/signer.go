package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
)

var ErrInvalidSignature = errors.New("invalid signature")

// Signer produces and checks HMAC-SHA256 signatures, hex encoded.
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
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *Signer) Verify(data []byte, signature string) error {
	received, err := hex.DecodeString(signature)
	if err != nil {
		s.logger.Warn("Signature is not valid hex", slog.Int("length", len(signature)))
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, s.secretKey)
	mac.Write(data)
	if !hmac.Equal(mac.Sum(nil), received) {
		s.logger.Warn("Signature verification failed", slog.Int("payload_bytes", len(data)))
		return ErrInvalidSignature
	}

	return nil
}
