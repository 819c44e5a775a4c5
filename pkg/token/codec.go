package token

import (
	"errors"

	"github.com/golang-jwt/jwt/v4"
)

// Codec serializes payloads into signed compact JWS strings and parses them
// back. Decode verifies the signature only; expiry and type checks belong to
// the Verifier, so an expired token still decodes cleanly here.
type Codec struct {
	cfg    Config
	parser *jwt.Parser
}

func NewCodec(cfg Config) *Codec {
	cfg = cfg.withDefaults()
	return &Codec{
		cfg: cfg,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{cfg.Algorithm}),
			jwt.WithoutClaimsValidation(),
		),
	}
}

func (c *Codec) Encode(p Payload) (string, error) {
	method, err := c.cfg.signingMethod()
	if err != nil {
		return "", err
	}
	return jwt.NewWithClaims(method, p.toClaims()).SignedString([]byte(c.cfg.Secret))
}

// Decode parses tokenString and checks its signature against the configured
// secret. A token signed with any algorithm other than the configured one
// fails as ErrSignatureInvalid, the same as tampering or a wrong secret.
func (c *Codec) Decode(tokenString string) (*Payload, error) {
	var cl claims
	_, err := c.parser.ParseWithClaims(tokenString, &cl, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(c.cfg.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, ErrTokenMalformed
		}
		return nil, ErrSignatureInvalid
	}
	return cl.toPayload(), nil
}
