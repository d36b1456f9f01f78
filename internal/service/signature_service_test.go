package service

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACSignatureService_SignVerify(t *testing.T) {
	svc := NewHMACSignatureService("test-webhook-secret")
	body := []byte(`{"type":"PAYMENT_SUCCESS_WEBHOOK","data":{"order":{"order_id":"INV_1"}}}`)
	ts := "1756700000"

	sig := svc.Sign(ts, body)

	// Signature is base64 over a 32-byte SHA-256 MAC.
	raw, err := base64.StdEncoding.DecodeString(sig)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	// Deterministic for identical inputs.
	assert.Equal(t, sig, svc.Sign(ts, body))

	assert.True(t, svc.Verify(ts, body, sig))
}

func TestHMACSignatureService_VerifyRejects(t *testing.T) {
	svc := NewHMACSignatureService("test-webhook-secret")
	body := []byte(`{"type":"PAYMENT_SUCCESS_WEBHOOK"}`)
	ts := "1756700000"
	sig := svc.Sign(ts, body)

	testCases := []struct {
		name      string
		svc       *HMACSignatureService
		timestamp string
		body      []byte
		signature string
	}{
		{name: "tampered body", svc: svc, timestamp: ts, body: []byte(`{"type":"PAYMENT_FAILED_WEBHOOK"}`), signature: sig},
		{name: "different timestamp", svc: svc, timestamp: "1756700001", body: body, signature: sig},
		{name: "wrong secret", svc: NewHMACSignatureService("other-secret"), timestamp: ts, body: body, signature: sig},
		{name: "garbage signature", svc: svc, timestamp: ts, body: body, signature: "bm90LWEtc2lnbmF0dXJl"},
		{name: "empty signature", svc: svc, timestamp: ts, body: body, signature: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, tc.svc.Verify(tc.timestamp, tc.body, tc.signature))
		})
	}
}
