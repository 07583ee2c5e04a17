package middleware

import (
	"strings"

	"eventreward/pkg/errutil"
	"eventreward/pkg/token"

	"github.com/gin-gonic/gin"
)

const claimsKey = "auth.claims"

type TokenVerifier interface {
	Verify(raw string, kind token.Kind) (*token.Claims, error)
}

// Authenticate requires a valid bearer access token.
func Authenticate(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, raw, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
			Abort(c, errutil.Unauthorized("missing bearer token", nil))
			return
		}

		claims, err := v.Verify(strings.TrimSpace(raw), token.KindAccess)
		if err != nil {
			Abort(c, errutil.Unauthorized("invalid access token", err))
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by Authenticate.
func ClaimsFrom(c *gin.Context) (*token.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*token.Claims)
	return claims, ok
}
