package token

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Secret:          "unit-test-secret",
		Algorithm:       "HS256",
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// flipChar swaps a base64url character for one that is guaranteed to decode
// to different bits, including in the final partially-used character of a
// signature segment.
func flipChar(ch byte) byte {
	switch ch {
	case 'A', 'B', 'C', 'D':
		return 'Q'
	default:
		return 'A'
	}
}

func TestCodecRoundTrip(t *testing.T) {
	codec := NewCodec(testConfig())

	now := time.Now().UTC().Unix()
	original := Payload{
		Subject:   "42",
		IssuedAt:  now,
		ExpiresAt: now + 1800,
		TokenType: TypeAccess,
		Extra:     map[string]any{"role": "admin", "name": "yang"},
	}

	encoded, err := codec.Encode(original)
	require.NoError(t, err)
	require.Len(t, strings.Split(encoded, "."), 3)

	decoded, err := codec.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, original.Subject, decoded.Subject)
	assert.Equal(t, original.TokenType, decoded.TokenType)
	assert.Equal(t, original.IssuedAt, decoded.IssuedAt)
	assert.Equal(t, original.ExpiresAt, decoded.ExpiresAt)
	assert.Equal(t, original.Extra, decoded.Extra)
}

func TestCodecNilExtraDecodesAsEmptyMap(t *testing.T) {
	codec := NewCodec(testConfig())

	now := time.Now().UTC().Unix()
	encoded, err := codec.Encode(Payload{
		Subject:   "7",
		IssuedAt:  now,
		ExpiresAt: now + 60,
		TokenType: TypeAccess,
	})
	require.NoError(t, err)

	decoded, err := codec.Decode(encoded)
	require.NoError(t, err)
	assert.NotNil(t, decoded.Extra)
	assert.Empty(t, decoded.Extra)
}

func TestCodecRejectsTamperedSignature(t *testing.T) {
	codec := NewCodec(testConfig())

	now := time.Now().UTC().Unix()
	encoded, err := codec.Encode(Payload{
		Subject:   "42",
		IssuedAt:  now,
		ExpiresAt: now + 1800,
		TokenType: TypeAccess,
		Extra:     map[string]any{"role": "admin"},
	})
	require.NoError(t, err)

	parts := strings.Split(encoded, ".")
	require.Len(t, parts, 3)
	sig := parts[2]

	for i := 0; i < len(sig); i++ {
		mutated := sig[:i] + string(flipChar(sig[i])) + sig[i+1:]
		tampered := parts[0] + "." + parts[1] + "." + mutated

		_, err := codec.Decode(tampered)
		assert.ErrorIs(t, err, ErrSignatureInvalid, "flipped signature byte %d must not verify", i)
	}
}

func TestCodecRejectsWrongSecret(t *testing.T) {
	codec := NewCodec(testConfig())

	now := time.Now().UTC().Unix()
	encoded, err := codec.Encode(Payload{
		Subject:   "42",
		IssuedAt:  now,
		ExpiresAt: now + 1800,
		TokenType: TypeAccess,
	})
	require.NoError(t, err)

	other := NewCodec(Config{Secret: "a-different-secret", Algorithm: "HS256"})
	_, err = other.Decode(encoded)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestCodecRejectsAlgorithmMismatch(t *testing.T) {
	cfg := testConfig()
	cfg.Algorithm = "HS384"
	hs384 := NewCodec(cfg)

	now := time.Now().UTC().Unix()
	encoded, err := hs384.Encode(Payload{
		Subject:   "42",
		IssuedAt:  now,
		ExpiresAt: now + 1800,
		TokenType: TypeAccess,
	})
	require.NoError(t, err)

	// Same secret, different declared algorithm: still a signature failure.
	hs256 := NewCodec(testConfig())
	_, err = hs256.Decode(encoded)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestCodecRejectsMalformedStrings(t *testing.T) {
	codec := NewCodec(testConfig())

	for _, tokenString := range []string{
		"",
		"garbage",
		"one.two",
		"!!!.###.$$$",
	} {
		_, err := codec.Decode(tokenString)
		assert.ErrorIs(t, err, ErrTokenMalformed, "input %q", tokenString)
	}
}

func TestVerifierExpiryBoundary(t *testing.T) {
	cfg := testConfig()
	codec := NewCodec(cfg)

	at := time.Unix(1700000000, 0)
	encodeExpiring := func(exp int64) string {
		encoded, err := codec.Encode(Payload{
			Subject:   "42",
			IssuedAt:  exp - 60,
			ExpiresAt: exp,
			TokenType: TypeAccess,
		})
		require.NoError(t, err)
		return encoded
	}

	verifier := NewVerifier(cfg)
	verifier.now = fixedClock(at)

	// Expired at the exact expiry instant.
	_, err := verifier.Verify(encodeExpiring(at.Unix()), TypeAccess)
	assert.ErrorIs(t, err, ErrTokenExpired)

	// One second of remaining lifetime is enough.
	payload, err := verifier.Verify(encodeExpiring(at.Unix()+1), TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "42", payload.Subject)
}

func TestVerifierEnforcesTokenType(t *testing.T) {
	cfg := testConfig()
	issuer := NewIssuer(cfg)
	verifier := NewVerifier(cfg)

	pair, err := issuer.IssuePair("42", map[string]any{"role": "admin"})
	require.NoError(t, err)

	_, err = verifier.Verify(pair.RefreshToken, TypeAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = verifier.Verify(pair.AccessToken, TypeRefresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = verifier.Verify(pair.AccessToken, TypeAccess)
	assert.NoError(t, err)
}

func TestVerifierMapsDecodeFailuresToInvalid(t *testing.T) {
	verifier := NewVerifier(testConfig())

	_, err := verifier.Verify("not-a-token", TypeAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	other := NewIssuer(Config{Secret: "somebody-else"})
	pair, err := other.IssuePair("42", nil)
	require.NoError(t, err)

	_, err = verifier.Verify(pair.AccessToken, TypeAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestIssuePair(t *testing.T) {
	cfg := testConfig()
	issuer := NewIssuer(cfg)
	issuedAt := time.Unix(1700000000, 0)
	issuer.now = fixedClock(issuedAt)

	pair, err := issuer.IssuePair("42", map[string]any{"role": "level_1"})
	require.NoError(t, err)
	assert.Equal(t, BearerScheme, pair.TokenType)
	assert.Equal(t, int64(1800), pair.ExpiresIn)

	codec := NewCodec(cfg)
	access, err := codec.Decode(pair.AccessToken)
	require.NoError(t, err)
	refresh, err := codec.Decode(pair.RefreshToken)
	require.NoError(t, err)

	assert.Equal(t, TypeAccess, access.TokenType)
	assert.Equal(t, TypeRefresh, refresh.TokenType)
	assert.Equal(t, access.Subject, refresh.Subject)
	assert.Equal(t, access.Extra, refresh.Extra)
	assert.Equal(t, issuedAt.Unix(), access.IssuedAt)
	assert.Equal(t, access.IssuedAt, refresh.IssuedAt)

	// Access lifetime < refresh lifetime must hold in the encoded expiries.
	assert.Greater(t, access.ExpiresAt, access.IssuedAt)
	assert.Greater(t, refresh.ExpiresAt, refresh.IssuedAt)
	assert.Less(t, access.ExpiresAt, refresh.ExpiresAt)
}

func TestIssuePairRequiresSubject(t *testing.T) {
	issuer := NewIssuer(testConfig())

	_, err := issuer.IssuePair("", nil)
	assert.Error(t, err)
}

func TestRefreshPreservesIdentity(t *testing.T) {
	cfg := testConfig()

	issuer := NewIssuer(cfg)
	issuer.now = fixedClock(time.Now().Add(-2 * time.Hour))
	pair, err := issuer.IssuePair("42", map[string]any{"role": "admin", "name": "yang"})
	require.NoError(t, err)

	refresher := NewRefresher(cfg)
	renewed, err := refresher.Refresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, renewed.AccessToken)
	assert.NotEqual(t, pair.RefreshToken, renewed.RefreshToken)

	codec := NewCodec(cfg)
	oldRefresh, err := codec.Decode(pair.RefreshToken)
	require.NoError(t, err)
	newAccess, err := codec.Decode(renewed.AccessToken)
	require.NoError(t, err)

	assert.Equal(t, oldRefresh.Subject, newAccess.Subject)
	assert.Equal(t, oldRefresh.Extra, newAccess.Extra)
	assert.Greater(t, newAccess.IssuedAt, oldRefresh.IssuedAt)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	cfg := testConfig()
	issuer := NewIssuer(cfg)
	refresher := NewRefresher(cfg)

	pair, err := issuer.IssuePair("42", nil)
	require.NoError(t, err)

	_, err = refresher.Refresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRefreshRejectsExpiredRefreshToken(t *testing.T) {
	cfg := testConfig()
	issuer := NewIssuer(cfg)
	issuer.now = fixedClock(time.Now().Add(-8 * 24 * time.Hour))

	pair, err := issuer.IssuePair("42", nil)
	require.NoError(t, err)

	refresher := NewRefresher(cfg)
	_, err = refresher.Refresh(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

// Full credential lifecycle: issue, verify, expire, refresh, verify again.
func TestTokenLifecycle(t *testing.T) {
	cfg := testConfig()
	issuedAt := time.Now().Add(-time.Minute)

	issuer := NewIssuer(cfg)
	issuer.now = fixedClock(issuedAt)

	pair, err := issuer.IssuePair("42", map[string]any{"role": "admin"})
	require.NoError(t, err)

	verifier := NewVerifier(cfg)
	payload, err := verifier.Verify(pair.AccessToken, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "42", payload.Subject)
	assert.Equal(t, "admin", payload.Extra["role"])

	// Clock past the access expiry: verification now reports expiry.
	lateVerifier := NewVerifier(cfg)
	lateVerifier.now = fixedClock(issuedAt.Add(cfg.AccessTokenTTL + time.Second))
	_, err = lateVerifier.Verify(pair.AccessToken, TypeAccess)
	assert.ErrorIs(t, err, ErrTokenExpired)

	// The refresh token is still live and mints a working pair.
	renewed, err := NewRefresher(cfg).Refresh(pair.RefreshToken)
	require.NoError(t, err)

	payload, err = verifier.Verify(renewed.AccessToken, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "42", payload.Subject)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{Secret: "s"}.withDefaults()
	assert.Equal(t, DefaultAlgorithm, cfg.Algorithm)
	assert.Equal(t, DefaultAccessTokenTTL, cfg.AccessTokenTTL)
	assert.Equal(t, DefaultRefreshTokenTTL, cfg.RefreshTokenTTL)
}

func TestConfigRejectsNonHMACAlgorithm(t *testing.T) {
	for _, alg := range []string{"RS256", "none", "ES256", "bogus"} {
		cfg := Config{Secret: "s", Algorithm: alg}
		_, err := cfg.signingMethod()
		assert.Error(t, err, fmt.Sprintf("algorithm %q must be rejected", alg))
	}
}
