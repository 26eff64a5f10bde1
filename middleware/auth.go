package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"gbp-agency-api/config"
	"gbp-agency-api/models"
)

// Claims is the token payload minted by the hosted auth provider after it
// verifies the operator's sign-in.
type Claims struct {
	OperatorID uint   `json:"operator_id"`
	AgencyID   uint   `json:"agency_id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates the bearer token and confirms the operator row
// still exists and is active, then stashes the identity on the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required", "code": "UNAUTHORIZED"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format", "code": "UNAUTHORIZED"})
			c.Abort()
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(os.Getenv("AUTH_JWT_SECRET")), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "code": "UNAUTHORIZED"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(*Claims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims", "code": "UNAUTHORIZED"})
			c.Abort()
			return
		}

		// The provider's token may outlive the operator: check the row.
		var operator models.Operator
		if err := config.DB.Where("id = ? AND agency_id = ? AND is_active = ?", claims.OperatorID, claims.AgencyID, true).
			First(&operator).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Operator not found", "code": "UNAUTHORIZED"})
			c.Abort()
			return
		}

		c.Set("operatorID", operator.ID)
		c.Set("agencyID", operator.AgencyID)
		c.Set("email", operator.Email)
		c.Set("role", operator.Role)

		c.Next()
	}
}

// RequireRole allows the request through only for the named operator roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "Role not found", "code": "FORBIDDEN"})
			c.Abort()
			return
		}

		operatorRole := role.(string)
		allowed := false
		for _, r := range roles {
			if operatorRole == r {
				allowed = true
				break
			}
		}

		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions", "code": "FORBIDDEN"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// OperatorID reads the authenticated operator id off the context.
func OperatorID(c *gin.Context) uint {
	v, _ := c.Get("operatorID")
	id, _ := v.(uint)
	return id
}

// AgencyID reads the authenticated agency id off the context.
func AgencyID(c *gin.Context) uint {
	v, _ := c.Get("agencyID")
	id, _ := v.(uint)
	return id
}
