// Package httpapi builds the gin engine served by the HTTP server.
package httpapi

import (
	"net/http"
	"time"

	"eventreward/pkg/config"
	"eventreward/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("httpapi",
	fx.Provide(
		NewEngine,
		func(e *gin.Engine) http.Handler { return e },
	),
	fx.Invoke(registerMetricsEndpoint),
)

func NewEngine(cfg *config.Config) *gin.Engine {
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		accessLog(),
		gin.CustomRecovery(func(c *gin.Context, p any) {
			zap.L().Error("recovered from panic in HTTP handler", zap.Any("panic", p), zap.Stack("stack"))
			c.AbortWithStatus(http.StatusInternalServerError)
		}),
		middleware.Error(),
	)
	r.HandleMethodNotAllowed = true
	return r
}

func registerMetricsEndpoint(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", middleware.GetRequestID(c.Request.Context())),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			zap.L().Error("http request", append(fields, zap.String("errors", c.Errors.String()))...)
			return
		}
		zap.L().Info("http request", fields...)
	}
}
