package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Codec-level failures say why a string could not be decoded. The Verifier
// folds both into ErrTokenInvalid so callers only ever branch on expired vs
// invalid, which is exactly what the HTTP layer needs.
var (
	ErrTokenMalformed   = errors.New("token malformed")
	ErrSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenInvalid     = errors.New("token invalid")
)

// Type separates access tokens from refresh tokens. A token presented as one
// type but issued as the other never verifies.
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

// BearerScheme is the token_type label carried by every issued pair.
const BearerScheme = "Bearer"

const (
	DefaultAlgorithm       = "HS256"
	DefaultAccessTokenTTL  = 30 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Config holds the signing parameters shared by every token operation. It is
// built once at startup and passed by value into the constructors below;
// nothing mutates it afterwards, so concurrent use needs no locking.
type Config struct {
	Secret          string
	Algorithm       string // HMAC family only, e.g. "HS256"
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

func (c Config) withDefaults() Config {
	if c.Algorithm == "" {
		c.Algorithm = DefaultAlgorithm
	}
	if c.AccessTokenTTL <= 0 {
		c.AccessTokenTTL = DefaultAccessTokenTTL
	}
	if c.RefreshTokenTTL <= 0 {
		c.RefreshTokenTTL = DefaultRefreshTokenTTL
	}
	return c
}

func (c Config) signingMethod() (jwt.SigningMethod, error) {
	method := jwt.GetSigningMethod(c.Algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); method == nil || !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", c.Algorithm)
	}
	return method, nil
}

// Payload is the claim set carried by every token. Extra is an open bag of
// business claims (role, display name, ...) that the token layer never
// interprets; downstream guards impose their own key contracts on it.
type Payload struct {
	Subject   string
	IssuedAt  int64 // unix seconds
	ExpiresAt int64 // unix seconds, always > IssuedAt
	TokenType Type
	Extra     map[string]any
}

// Pair is the issuance result handed to login and refresh callers. ExpiresIn
// is the access token lifetime in seconds so clients can schedule refreshes.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type claims struct {
	TokenType string         `json:"token_type"`
	Extra     map[string]any `json:"extra"`
	jwt.RegisteredClaims
}

func (p Payload) toClaims() claims {
	extra := p.Extra
	if extra == nil {
		extra = map[string]any{}
	}
	return claims{
		TokenType: string(p.TokenType),
		Extra:     extra,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Subject,
			IssuedAt:  jwt.NewNumericDate(time.Unix(p.IssuedAt, 0)),
			ExpiresAt: jwt.NewNumericDate(time.Unix(p.ExpiresAt, 0)),
		},
	}
}

func (c claims) toPayload() *Payload {
	p := &Payload{
		Subject:   c.Subject,
		TokenType: Type(c.TokenType),
		Extra:     c.Extra,
	}
	if c.IssuedAt != nil {
		p.IssuedAt = c.IssuedAt.Unix()
	}
	if c.ExpiresAt != nil {
		p.ExpiresAt = c.ExpiresAt.Unix()
	}
	if p.Extra == nil {
		p.Extra = map[string]any{}
	}
	return p
}
