// SPDX-License-Identifier: Apache-2.0

package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// IAMVerifier checks a bearer token against the IAM service named by
// api_iam and returns the claims if valid. Full JWKS fetch/refresh
// against that service is out of scope; callers wire a concrete
// implementation.
type IAMVerifier interface {
	Verify(tokenString string) (jwt.Claims, error)
}

// NewAuthMiddleware returns gin middleware that requires a bearer token
// valid per verifier, storing its claims on the request context under
// "claims", mirroring bitswalk-ldf's authRequired middleware.
func NewAuthMiddleware(verifier IAMVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{
				Error:   "unauthorized",
				Message: "missing bearer token",
			})
			return
		}

		claims, err := verifier.Verify(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{
				Error:   "unauthorized",
				Message: "invalid or expired token",
			})
			return
		}

		c.Set("claims", claims)
		c.Next()
	}
}
