package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/cliniflow/clinic-manager/internal/config"
	"github.com/cliniflow/clinic-manager/internal/policy"
)

const (
	ContextProfileID = "profileID"
	ContextUserRole  = "userRole"
	ContextTokenID   = "tokenID"
	ContextTokenExp  = "tokenExp"
)

// RevocationKey is the Redis key holding a revoked token id until its
// natural expiry.
func RevocationKey(jti string) string {
	return "auth:revoked:" + jti
}

// AuthMiddleware validates the bearer token and loads the identity into the
// request context. rdb may be nil, in which case revocation is not checked.
func AuthMiddleware(cfg *config.Config, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_authorization_header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_authorization_header"})
			return
		}

		tokenString := parts[1]

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenMalformed
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token_claims"})
			return
		}

		sub, ok1 := claims["sub"].(string)
		role, ok2 := claims["role"].(string)
		jti, _ := claims["jti"].(string)
		exp, _ := claims["exp"].(float64)
		if !ok1 || !ok2 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token_payload"})
			return
		}

		profileID, err := uuid.Parse(sub)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token_payload"})
			return
		}

		if rdb != nil && jti != "" {
			n, err := rdb.Exists(c.Request.Context(), RevocationKey(jti)).Result()
			if err == nil && n > 0 {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token_revoked"})
				return
			}
		}

		c.Set(ContextProfileID, profileID)
		c.Set(ContextUserRole, role)
		c.Set(ContextTokenID, jti)
		c.Set(ContextTokenExp, int64(exp))

		c.Next()
	}
}

// IdentityFromContext rebuilds the caller identity set by AuthMiddleware.
func IdentityFromContext(c *gin.Context) policy.Identity {
	return policy.Identity{
		ProfileID: c.MustGet(ContextProfileID).(uuid.UUID),
		Role:      c.MustGet(ContextUserRole).(string),
	}
}
