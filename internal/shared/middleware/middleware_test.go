package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tally/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTokenConfig = token.Config{Secret: "middleware-test-secret"}

var testAllowedPaths = []string{
	"/api/account/user/login",
	"/api/account/user/register",
	"/api/account/user/refresh",
	"/health",
	"/ping",
}

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Authentication(token.NewVerifier(testTokenConfig), testAllowedPaths))

	probe := func(c *gin.Context) {
		userID, _ := CurrentUserID(c)
		role, _ := CurrentRole(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "role": role})
	}
	engine.GET("/health", probe)
	engine.GET("/healthz", probe)
	engine.POST("/api/account/user/login", probe)
	engine.POST("/api/account/user/login/verify_code", probe)
	engine.GET("/api/account/user/me", probe)
	engine.GET("/api/account/user/list", RequireAdmin(), probe)
	return engine
}

func doRequest(t *testing.T, engine *gin.Engine, method, path, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// encodeAccess mints an access token with full control over the claims, so
// tests can produce expired or mistyped tokens at will.
func encodeAccess(t *testing.T, tokenType token.Type, issuedAt, expiresAt int64, role string) string {
	t.Helper()
	s, err := token.NewCodec(testTokenConfig).Encode(token.Payload{
		Subject:   "user-1",
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
		TokenType: tokenType,
		Extra:     map[string]any{"role": role},
	})
	require.NoError(t, err)
	return s
}

func freshAccess(t *testing.T, role string) string {
	now := time.Now().Unix()
	return encodeAccess(t, token.TypeAccess, now, now+600, role)
}

func TestAuthenticationAllowsListedPaths(t *testing.T) {
	engine := newTestEngine()

	rec := doRequest(t, engine, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, engine, http.MethodPost, "/api/account/user/login", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticationPrefixMatchCoversSubPaths(t *testing.T) {
	engine := newTestEngine()

	// Child of an allow-listed prefix passes, bearer or not.
	rec := doRequest(t, engine, http.MethodPost, "/api/account/user/login/verify_code", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Prefix matching is literal: /healthz begins with /health.
	rec = doRequest(t, engine, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticationRejectsMissingToken(t *testing.T) {
	engine := newTestEngine()

	rec := doRequest(t, engine, http.MethodGet, "/api/account/user/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	body := decodeEnvelope(t, rec)
	assert.Equal(t, float64(401), body["code"])
	assert.Equal(t, "缺少认证 Token", body["message"])
}

func TestAuthenticationSchemeIsCaseSensitive(t *testing.T) {
	engine := newTestEngine()
	access := freshAccess(t, "level_1")

	for _, header := range []string{
		"bearer " + access,
		"BEARER " + access,
		"Bearer" + access, // no space
		"Token " + access,
		"Bearer",
	} {
		rec := doRequest(t, engine, http.MethodGet, "/api/account/user/me", header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
		assert.Equal(t, "缺少认证 Token", decodeEnvelope(t, rec)["message"], "header %q", header)
	}
}

func TestAuthenticationAcceptsValidToken(t *testing.T) {
	engine := newTestEngine()

	rec := doRequest(t, engine, http.MethodGet, "/api/account/user/me", "Bearer "+freshAccess(t, "level_1"))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeEnvelope(t, rec)
	assert.Equal(t, "user-1", body["user_id"])
	assert.Equal(t, "level_1", body["role"])
}

func TestAuthenticationRejectsExpiredToken(t *testing.T) {
	engine := newTestEngine()
	now := time.Now().Unix()
	expired := encodeAccess(t, token.TypeAccess, now-3600, now-60, "level_1")

	rec := doRequest(t, engine, http.MethodGet, "/api/account/user/me", "Bearer "+expired)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token 已过期", decodeEnvelope(t, rec)["message"])
}

func TestAuthenticationRejectsRefreshTokenAsAccess(t *testing.T) {
	engine := newTestEngine()
	now := time.Now().Unix()
	refresh := encodeAccess(t, token.TypeRefresh, now, now+3600, "level_1")

	rec := doRequest(t, engine, http.MethodGet, "/api/account/user/me", "Bearer "+refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token 无效", decodeEnvelope(t, rec)["message"])
}

func TestAuthenticationRejectsGarbageToken(t *testing.T) {
	engine := newTestEngine()

	for _, tok := range []string{"not-a-jwt", "a.b.c", freshAccess(t, "level_1") + "x"} {
		rec := doRequest(t, engine, http.MethodGet, "/api/account/user/me", "Bearer "+tok)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "token %q", tok)
		assert.Equal(t, "Token 无效", decodeEnvelope(t, rec)["message"], "token %q", tok)
	}
}

func TestAuthenticationRejectsForeignSignature(t *testing.T) {
	engine := newTestEngine()
	now := time.Now().Unix()

	foreign, err := token.NewCodec(token.Config{Secret: "some-other-secret"}).Encode(token.Payload{
		Subject:   "user-1",
		IssuedAt:  now,
		ExpiresAt: now + 600,
		TokenType: token.TypeAccess,
	})
	require.NoError(t, err)

	rec := doRequest(t, engine, http.MethodGet, "/api/account/user/me", "Bearer "+foreign)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token 无效", decodeEnvelope(t, rec)["message"])
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	engine := newTestEngine()

	rec := doRequest(t, engine, http.MethodGet, "/api/account/user/list", "Bearer "+freshAccess(t, "admin"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdminRejectsRegularUser(t *testing.T) {
	engine := newTestEngine()

	rec := doRequest(t, engine, http.MethodGet, "/api/account/user/list", "Bearer "+freshAccess(t, "level_1"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	body := decodeEnvelope(t, rec)
	assert.Equal(t, float64(403), body["code"])
	assert.Equal(t, "权限不足", body["message"])
}

func TestRequireRolesAnyMatchSuffices(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Authentication(token.NewVerifier(testTokenConfig), nil))
	engine.GET("/guarded", RequireRoles("admin", "level_1"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := doRequest(t, engine, http.MethodGet, "/guarded", "Bearer "+freshAccess(t, "level_1"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, engine, http.MethodGet, "/guarded", "Bearer "+freshAccess(t, "level_2"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRolesWithoutIdentityFailsClosed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	// Guard mounted without the authentication gate in front of it.
	engine.GET("/guarded", RequireRoles("admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := doRequest(t, engine, http.MethodGet, "/guarded", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "权限不足", decodeEnvelope(t, rec)["message"])
}

func TestRequireRolesRejectsRolelessToken(t *testing.T) {
	engine := newTestEngine()

	// Valid access token whose claim bag carries no role at all.
	issuer := token.NewIssuer(testTokenConfig)
	pair, err := issuer.IssuePair("user-1", nil)
	require.NoError(t, err)

	rec := doRequest(t, engine, http.MethodGet, "/api/account/user/list", "Bearer "+pair.AccessToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "权限不足", decodeEnvelope(t, rec)["message"])
}

func TestIsAllowedPathIsCaseSensitive(t *testing.T) {
	assert.True(t, isAllowedPath("/health", testAllowedPaths))
	assert.True(t, isAllowedPath("/health/db", testAllowedPaths))
	assert.False(t, isAllowedPath("/Health", testAllowedPaths))
	assert.False(t, isAllowedPath("/api/account/category/get_all", testAllowedPaths))
	assert.False(t, isAllowedPath("/api", testAllowedPaths))
}
