package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tradie-match-server/apperror"
	"tradie-match-server/logger"
	"tradie-match-server/types"
)

// Context keys set by the auth middlewares.
const (
	ContextAccountID = "account_id"
	ContextRole      = "role"
	ContextClaims    = "claims"
)

// TokenValidator checks an access token and returns its claims.
type TokenValidator interface {
	ValidateAccessToken(token string) (*types.Claims, error)
}

// AuthMiddleware validates the Bearer token and sets the account in context.
func AuthMiddleware(tokens TokenValidator, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, apperror.NewUnauthorized("Authorization header required", nil))
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			abort(c, apperror.NewUnauthorized("Token must be in format: Bearer <token>", nil))
			return
		}
		authenticate(c, tokens, log, tokenString)
	}
}

// OptionalAuthMiddleware sets the account when a valid token is present and
// lets the request through either way.
func OptionalAuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if tokenString != "" {
			if claims, err := tokens.ValidateAccessToken(tokenString); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// WebSocketAuthMiddleware reads the token from the query string, since
// browsers cannot set headers on a WebSocket upgrade.
func WebSocketAuthMiddleware(tokens TokenValidator, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if tokenString == "" {
			abort(c, apperror.NewUnauthorized("Please provide a valid token in query parameters", nil))
			return
		}
		authenticate(c, tokens, log, tokenString)
	}
}

// RequireRole lets through only accounts with one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		abort(c, apperror.NewPermissionDenied("role "+role+" cannot use this endpoint"))
	}
}

func authenticate(c *gin.Context, tokens TokenValidator, log logger.Logger, tokenString string) {
	claims, err := tokens.ValidateAccessToken(tokenString)
	if err != nil {
		log.Debug("🔐 Rejected token", zap.String("path", c.Request.URL.Path), zap.Error(err))
		abort(c, err)
		return
	}
	setClaims(c, claims)
	c.Next()
}

func setClaims(c *gin.Context, claims *types.Claims) {
	c.Set(ContextAccountID, claims.AccountID)
	c.Set(ContextRole, claims.Role)
	c.Set(ContextClaims, claims)
}

// AccountID returns the authenticated account, or "".
func AccountID(c *gin.Context) string {
	return c.GetString(ContextAccountID)
}

// Claims returns the token claims of the request, or nil.
func Claims(c *gin.Context) *types.Claims {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*types.Claims)
	return claims
}

func abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperror.ToHTTPStatus(err), apperror.ToJSON(err))
}
