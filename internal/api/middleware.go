package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"postboard/internal/token"
)

const claimsKey = "claims"

// Identifier authenticates the request from the Authorization header
// or cookie and stores the token claims for handlers.
func Identifier(issuer *token.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := token.Extract(c.Request)
		if raw == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized!"})
			c.Abort()
			return
		}

		claims, err := issuer.Parse(raw)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized!"})
			c.Abort()
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// MustClaims returns the claims set by Identifier. Only valid on
// routes behind that middleware.
func MustClaims(c *gin.Context) *token.Claims {
	return c.MustGet(claimsKey).(*token.Claims)
}
