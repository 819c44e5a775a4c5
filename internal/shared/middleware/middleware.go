package middleware

import (
	"errors"
	"strings"

	"tally/internal/shared/utils/response"
	"tally/pkg/logger"
	"tally/pkg/token"

	"github.com/gin-gonic/gin"
)

// Gate messages are part of the wire contract. Clients match on the exact
// strings, so they never change casually.
const (
	MsgMissingToken = "缺少认证 Token"
	MsgTokenExpired = "Token 已过期"
	MsgTokenInvalid = "Token 无效"
	MsgForbidden    = "权限不足"
)

// bearerPrefix is stripped verbatim from the Authorization header: exact
// case, one trailing space. "bearer x" or a bare "Bearer" do not count as
// carrying a token.
const bearerPrefix = token.BearerScheme + " "

// Context keys injected by Authentication. The gate is the only writer;
// handlers read through the Current* helpers.
const (
	ContextUserIDKey = "user_id"
	ContextRoleKey   = "user_role"
	ContextExtraKey  = "token_extra"
)

// Authentication builds the global authentication gate. Requests whose path
// starts with one of allowedPaths pass through untouched; every other request
// must present a verifiable access token. Failures answer 401 with the gate
// message that names what went wrong, without echoing the token.
func Authentication(verifier *token.Verifier, allowedPaths []string) gin.HandlerFunc {
	appLogger := logger.GetDefault()
	return func(c *gin.Context) {
		if isAllowedPath(c.Request.URL.Path, allowedPaths) {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			appLogger.LogAuthFailure(c.Request.Context(), "missing bearer token", c.ClientIP())
			response.Unauthorized(c, MsgMissingToken)
			c.Abort()
			return
		}

		payload, err := verifier.Verify(header[len(bearerPrefix):], token.TypeAccess)
		if err != nil {
			if errors.Is(err, token.ErrTokenExpired) {
				appLogger.LogAuthFailure(c.Request.Context(), "token expired", c.ClientIP())
				response.Unauthorized(c, MsgTokenExpired)
			} else {
				appLogger.LogAuthFailure(c.Request.Context(), "token invalid", c.ClientIP())
				response.Unauthorized(c, MsgTokenInvalid)
			}
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, payload.Subject)
		if role, ok := payload.Extra["role"].(string); ok {
			c.Set(ContextRoleKey, role)
		}
		c.Set(ContextExtraKey, payload.Extra)

		c.Next()
	}
}

// isAllowedPath reports whether path begins with any allow-listed prefix.
// Matching is case-sensitive and purely literal.
func isAllowedPath(path string, allowedPaths []string) bool {
	for _, prefix := range allowedPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// RequireRole middleware checks if user has required role
func RequireRole(requiredRole string) gin.HandlerFunc {
	return RequireRoles(requiredRole)
}

// RequireRoles middleware checks if user has any of the required roles. It
// trusts the identity the gate injected and does no token parsing of its own.
// A missing role claim counts as no match, so role-less tokens and requests
// that somehow bypassed the gate both fail closed with 403.
func RequireRoles(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, _ := CurrentRole(c)

		hasRole := false
		for _, role := range requiredRoles {
			if userRole == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			response.Forbidden(c, MsgForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}

// adminRole mirrors users.RoleAdmin. Kept as a local string so feature
// packages can import this one without a cycle through users.
const adminRole = "admin"

// RequireAdmin middleware that requires admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(adminRole)
}

// CurrentUserID returns the authenticated user's ID from the request context.
func CurrentUserID(c *gin.Context) (string, bool) {
	value, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", false
	}
	id, ok := value.(string)
	return id, ok && id != ""
}

// CurrentRole returns the authenticated user's role from the request context.
func CurrentRole(c *gin.Context) (string, bool) {
	value, exists := c.Get(ContextRoleKey)
	if !exists {
		return "", false
	}
	role, ok := value.(string)
	return role, ok && role != ""
}

// CurrentExtra returns the full claim bag the token carried, for handlers
// that need more than the identity and role.
func CurrentExtra(c *gin.Context) (map[string]any, bool) {
	value, exists := c.Get(ContextExtraKey)
	if !exists {
		return nil, false
	}
	extra, ok := value.(map[string]any)
	return extra, ok
}
