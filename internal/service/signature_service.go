package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// HMACSignatureService implements ports.SignatureService using HMAC-SHA256
// over timestamp||body, the scheme the gateway signs its webhooks with.
type HMACSignatureService struct {
	secret []byte
}

// NewHMACSignatureService creates a signature service bound to one webhook
// secret.
func NewHMACSignatureService(secret string) *HMACSignatureService {
	return &HMACSignatureService{secret: []byte(secret)}
}

// Sign computes HMAC-SHA256 of timestamp concatenated with the raw body.
// Returns the base64-encoded signature.
func (s *HMACSignatureService) Sign(timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(timestamp))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify checks signature against HMAC-SHA256(secret, timestamp||body).
// Uses constant-time comparison to prevent timing attacks.
func (s *HMACSignatureService) Verify(timestamp string, body []byte, signature string) bool {
	expected := s.Sign(timestamp, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
