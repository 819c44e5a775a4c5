package token

import "time"

// Verifier is the single validation path for inbound tokens. Checks run in a
// fixed order: signature (via the codec), then expiry, then declared type.
// Payload fields cannot be trusted before the signature has been verified, so
// that order is load-bearing, not cosmetic.
type Verifier struct {
	codec *Codec
	now   func() time.Time
}

func NewVerifier(cfg Config) *Verifier {
	return &Verifier{
		codec: NewCodec(cfg),
		now:   time.Now,
	}
}

// Verify decodes tokenString and enforces expiry and the expected type. Any
// decode failure surfaces as ErrTokenInvalid. A token is already expired at
// the exact expiry instant: now >= exp rejects.
func (v *Verifier) Verify(tokenString string, expected Type) (*Payload, error) {
	payload, err := v.codec.Decode(tokenString)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if v.now().Unix() >= payload.ExpiresAt {
		return nil, ErrTokenExpired
	}
	if payload.TokenType != expected {
		return nil, ErrTokenInvalid
	}
	return payload, nil
}
