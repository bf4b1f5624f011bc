package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"municipal-reports-service/models"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// ContextUserID is the gin context key carrying the authenticated user id.
	ContextUserID = "user_id"
	// ContextRole is the gin context key carrying the authenticated role.
	ContextRole = "role"
)

// Roles carried in the token's role claim.
const (
	RoleMunicipality       = "municipality"
	RoleExternalMaintainer = "external_maintainer"
	RoleCitizen            = "citizen"
)

// AuthMiddleware validates Bearer JWT tokens and puts user id and role into
// the request context.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		tokenString := extractToken(authHeader)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			c.Abort()
			return
		}

		userID, role, err := ValidateToken(tokenString, jwtSecret)
		if err != nil {
			log.Warnf("Rejected token from %s: %v", c.ClientIP(), err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextRole, role)
		c.Next()
	}
}

// RequireRoles aborts with 403 unless the authenticated role is one of the
// given roles. It must run after AuthMiddleware.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
		c.Abort()
	}
}

// ValidateToken parses and validates an HS256 JWT and returns the user id
// and role claims.
func ValidateToken(tokenString, jwtSecret string) (int64, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return 0, "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return 0, "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", fmt.Errorf("invalid token claims")
	}

	userIDClaim, ok := claims["user_id"].(float64)
	if !ok {
		return 0, "", fmt.Errorf("missing user_id claim")
	}
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return 0, "", fmt.Errorf("missing role claim")
	}

	return int64(userIDClaim), role, nil
}

// AuthorType maps the context role onto the comment channel's author type.
// Citizens have no author type; the comment guard rejects them.
func AuthorType(role string) models.AuthorType {
	switch role {
	case RoleMunicipality:
		return models.AuthorMunicipality
	case RoleExternalMaintainer:
		return models.AuthorExternalMaintainer
	default:
		return models.AuthorType(strings.ToUpper(role))
	}
}

func extractToken(authHeader string) string {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
