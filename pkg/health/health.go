package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("health",
	fx.Provide(ProvideHealth),
	fx.Invoke(Register),
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

const pingTimeout = 2 * time.Second

type Dependency struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type Health struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Deps    []Dependency `json:"deps,omitempty"`
}

type HealthService interface {
	Liveness(c *gin.Context)
	Readiness(c *gin.Context)
}

type health struct {
	db    *gorm.DB
	redis redis.UniversalClient
}

type HealthParams struct {
	fx.In
	DB    *gorm.DB      `optional:"true"`
	Redis *redis.Client `optional:"true"`
}

func ProvideHealth(p HealthParams) HealthService {
	h := &health{db: p.DB}
	if p.Redis != nil {
		h.redis = p.Redis
	}
	return h
}

func Register(r *gin.Engine, h HealthService) {
	r.GET("/healthz", h.Liveness)
	r.GET("/readyz", h.Readiness)
}

func (h *health) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, &Health{
		Status:  statusHealthy,
		Message: "OK",
	})
}

// Readiness pings every configured dependency. Any failure turns the response into a 503.
func (h *health) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	this := &Health{
		Status:  statusHealthy,
		Message: "OK",
	}

	if h.db != nil {
		this.add("database", h.pingDB(ctx))
	}
	if h.redis != nil {
		this.add("redis", h.redis.Ping(ctx).Err())
	}

	code := http.StatusOK
	if this.Status != statusHealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, this)
}

func (h *health) pingDB(ctx context.Context) error {
	sql, err := h.db.DB()
	if err != nil {
		return err
	}
	return sql.PingContext(ctx)
}

func (s *Health) add(name string, err error) {
	dep := Dependency{Name: name, Status: statusHealthy, Message: "OK"}
	if err != nil {
		dep.Status = statusUnhealthy
		dep.Message = err.Error()
		s.Status = statusUnhealthy
		s.Message = "dependency unavailable"
	}
	s.Deps = append(s.Deps, dep)
}
