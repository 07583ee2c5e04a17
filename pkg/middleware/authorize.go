package middleware

import (
	_ "embed"
	"fmt"

	"eventreward/pkg/config"
	"eventreward/pkg/errutil"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
	"github.com/gin-gonic/gin"
)

var (
	//go:embed rbac/model.conf
	defaultModel string
	//go:embed rbac/policy.csv
	defaultPolicy string
)

// NewEnforcer loads the role policy from ACCESS_CONTROL paths, or the
// built-in route policy when they are unset.
func NewEnforcer(cfg *config.Config) (*casbin.Enforcer, error) {
	if cfg.AccessControl.Model != "" && cfg.AccessControl.Policy != "" {
		return casbin.NewEnforcer(cfg.AccessControl.Model, cfg.AccessControl.Policy)
	}
	return NewDefaultEnforcer()
}

func NewDefaultEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(defaultModel)
	if err != nil {
		return nil, fmt.Errorf("load rbac model: %w", err)
	}
	return casbin.NewEnforcer(m, stringadapter.NewAdapter(defaultPolicy))
}

// Authorize lets the request through when any role of the caller may perform
// the method on the path. Must run after Authenticate.
func Authorize(e *casbin.Enforcer) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			Abort(c, errutil.Unauthorized("missing credentials", nil))
			return
		}

		for _, role := range claims.Roles {
			allowed, err := e.Enforce(role, c.Request.URL.Path, c.Request.Method)
			if err != nil {
				Abort(c, errutil.Internal("failed to authorize request", err))
				return
			}
			if allowed {
				c.Next()
				return
			}
		}
		Abort(c, errutil.Forbidden("insufficient role", nil))
	}
}
