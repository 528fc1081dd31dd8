package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/signet-id/core/internal/models"
	"github.com/signet-id/core/internal/pkg/jwt"
	"github.com/signet-id/core/internal/pkg/response"
)

const (
	ContextKeyUserID = "user_id"
	ContextKeySID    = "session_id"
	ContextKeyRole   = "role"
	ContextKeyEmail  = "email"
)

// SessionValidator is the narrow session-manager surface the middleware
// needs: check a session is alive and stamp activity on use.
type SessionValidator interface {
	Validate(ctx context.Context, sessionID string) (*models.AuthSession, error)
	Touch(ctx context.Context, sessionID string)
}

// Auth returns a middleware that enforces bearer-token authentication.
// The JWT must parse AND its bound session record must still be valid.
func Auth(sessions SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := validateTokenClaims(c, sessions)
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			return
		}
		setClaims(c, claims)
		sessions.Touch(c.Request.Context(), claims.SessionID)
		c.Next()
	}
}

// OptionalAuth sets identity context if a valid token is present, but does
// not block the request.
func OptionalAuth(sessions SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := validateTokenClaims(c, sessions); err == nil {
			setClaims(c, claims)
			sessions.Touch(c.Request.Context(), claims.SessionID)
		}
		c.Next()
	}
}

func validateTokenClaims(c *gin.Context, sessions SessionValidator) (*jwt.Claims, error) {
	token := extractToken(c)
	if token == "" {
		return nil, errTokenRequired
	}
	claims, err := jwt.Parse(token)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(claims.SessionID) == "" {
		return nil, errSessionRequired
	}
	sess, err := sessions.Validate(c.Request.Context(), claims.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.UserID != claims.UserID {
		return nil, errSessionMismatch
	}
	return claims, nil
}

func setClaims(c *gin.Context, claims *jwt.Claims) {
	c.Set(ContextKeyUserID, claims.UserID)
	c.Set(ContextKeySID, claims.SessionID)
	c.Set(ContextKeyRole, claims.Role)
	c.Set(ContextKeyEmail, claims.Email)
}

// CurrentUserID extracts the authenticated user ID from context.
func CurrentUserID(c *gin.Context) string {
	v, _ := c.Get(ContextKeyUserID)
	id, _ := v.(string)
	return id
}

// CurrentSessionID extracts the authenticated session ID from context.
func CurrentSessionID(c *gin.Context) string {
	v, _ := c.Get(ContextKeySID)
	id, _ := v.(string)
	return id
}

// IsAuthenticated returns true if the request has a valid auth token.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentUserID(c) != ""
}

func extractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		return NormalizeToken(auth)
	}
	return NormalizeToken(c.Query("token"))
}

// NormalizeToken trims spaces and strips optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
