package token

import (
	"errors"
	"time"
)

// Issuer mints access/refresh pairs for authenticated subjects.
type Issuer struct {
	cfg   Config
	codec *Codec
	now   func() time.Time
}

func NewIssuer(cfg Config) *Issuer {
	cfg = cfg.withDefaults()
	return &Issuer{
		cfg:   cfg,
		codec: NewCodec(cfg),
		now:   time.Now,
	}
}

// IssuePair builds a fresh pair sharing one issued-at instant. Both tokens
// carry the same subject and extra claims; only the lifetime and declared
// type differ.
func (i *Issuer) IssuePair(subject string, extra map[string]any) (*Pair, error) {
	if subject == "" {
		return nil, errors.New("subject is required")
	}

	now := i.now().UTC().Unix()

	accessToken, err := i.codec.Encode(Payload{
		Subject:   subject,
		IssuedAt:  now,
		ExpiresAt: now + int64(i.cfg.AccessTokenTTL.Seconds()),
		TokenType: TypeAccess,
		Extra:     extra,
	})
	if err != nil {
		return nil, err
	}

	refreshToken, err := i.codec.Encode(Payload{
		Subject:   subject,
		IssuedAt:  now,
		ExpiresAt: now + int64(i.cfg.RefreshTokenTTL.Seconds()),
		TokenType: TypeRefresh,
		Extra:     extra,
	})
	if err != nil {
		return nil, err
	}

	return &Pair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    BearerScheme,
		ExpiresIn:    int64(i.cfg.AccessTokenTTL.Seconds()),
	}, nil
}
