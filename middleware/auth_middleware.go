package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/princinho/streamcatalog/logging"
	"github.com/princinho/streamcatalog/models"
	"github.com/princinho/streamcatalog/utils"
)

const principalKey = "principal"

// TokenVerifier is satisfied by *utils.TokenService.
type TokenVerifier interface {
	Verify(token string) (*utils.Claims, error)
}

// RevocationChecker is satisfied by the revocation stores.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, userID string, now time.Time) (bool, error)
}

// AuthMiddleware requires a valid bearer token. A missing header and a token
// that fails verification both answer 401; a token whose user was banned or
// deleted since issuance answers 403.
func AuthMiddleware(tokens TokenVerifier, revocations RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		claims, err := tokens.Verify(tokenStr)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, utils.ErrTokenExpired) {
				msg = "token expired"
			}
			logging.FromContext(c).WithError(err).Debug("token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		if revocations != nil {
			revoked, err := revocations.IsRevoked(c.Request.Context(), claims.UserID, time.Now())
			if err != nil {
				logging.FromContext(c).WithError(err).Error("revocation lookup failed")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
				return
			}
			if revoked {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account access revoked"})
				return
			}
		}

		p := claims.Principal()
		c.Set(principalKey, p)
		c.Set("userID", p.UserID)
		c.Set("username", p.Username)
		c.Set("role", string(p.Role))
		c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
			return
		}
		if p.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Next()
	}
}

func PrincipalFrom(c *gin.Context) (models.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return models.Principal{}, false
	}
	p, ok := v.(models.Principal)
	return p, ok
}
