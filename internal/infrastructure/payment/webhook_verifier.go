package payment

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-jose/go-jose/v3"

	"dvlottery.backend/internal/domain/entities"
	domainerrors "dvlottery.backend/internal/domain/errors"
)

var ErrInvalidSignature = domainerrors.ErrInvalidSignature

// WebhookVerifier authenticates provider callbacks delivered as compact HS256 JWS
type WebhookVerifier struct {
	secret []byte
}

func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: []byte(secret)}
}

// Verify checks the signature and decodes the event. Any failure wraps ErrInvalidSignature
// except a payload that verifies but is not a valid event.
func (v *WebhookVerifier) Verify(body []byte) (*entities.WebhookEvent, error) {
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("%w: webhook secret not configured", ErrInvalidSignature)
	}

	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidSignature)
	}

	jws, err := jose.ParseSigned(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if len(jws.Signatures) != 1 {
		return nil, fmt.Errorf("%w: expected exactly one signature", ErrInvalidSignature)
	}
	if alg := jws.Signatures[0].Header.Algorithm; alg != string(jose.HS256) {
		return nil, fmt.Errorf("%w: unexpected algorithm %q", ErrInvalidSignature, alg)
	}

	payload, err := jws.Verify(v.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	var event entities.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("invalid webhook payload: %w", err)
	}
	if event.Type == "" {
		return nil, fmt.Errorf("invalid webhook payload: missing event type")
	}
	return &event, nil
}
