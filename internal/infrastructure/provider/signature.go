package provider

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"

	"github.com/metropass/settlement-engine/internal/domain"
)

// WebhookVerifier checks webhook authenticity and decodes the envelope.
type WebhookVerifier struct {
	secret []byte
}

func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: []byte(secret)}
}

// VerifySignature checks the HMAC-SHA512 hex signature the provider sends
// over the raw payload bytes.
func (v *WebhookVerifier) VerifySignature(payload []byte, signature string) bool {
	mac := hmac.New(sha512.New, v.secret)
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

// Sign computes the signature for a payload. Exists so tests and the
// sandbox simulator can build genuine-looking deliveries.
func (v *WebhookVerifier) Sign(payload []byte) string {
	mac := hmac.New(sha512.New, v.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// ParseEvent verifies and decodes a webhook delivery. Anything that fails
// verification or lacks the fields settlement needs is rejected as an
// invalid payload before any side effect can happen.
func (v *WebhookVerifier) ParseEvent(payload []byte, signature string) (*WebhookEvent, error) {
	if !v.VerifySignature(payload, signature) {
		return nil, domain.NewInvalidPayloadError("signature mismatch")
	}

	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, domain.NewInvalidPayloadError("malformed JSON envelope")
	}
	if event.ID == "" {
		return nil, domain.NewInvalidPayloadError("missing event id")
	}
	if event.Data.Object.ID == "" {
		return nil, domain.NewInvalidPayloadError("missing session id")
	}
	return &event, nil
}
