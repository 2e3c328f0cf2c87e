package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"user-api/internal/core/config"
	"user-api/internal/core/database"
	"user-api/internal/core/server"
	mdw "user-api/internal/transport/http/middleware"
	resp "user-api/internal/transport/http/response"
)

// Deps 两个引擎共用的依赖
type Deps struct {
	Log      *zap.Logger
	Cfg      *config.Config
	DB       *gorm.DB
	Tokens   mdw.TokenVerifier
	RoleOf   mdw.RoleLookup
	Registry *Registry
}

func ginMode(env string) string {
	switch env {
	case "local", "dev":
		return gin.DebugMode
	case "test":
		return gin.TestMode
	}
	return gin.ReleaseMode
}

// newEngine 公共中间件链 + /health + /metrics
func newEngine(d Deps) *gin.Engine {
	lim := d.Cfg.Limits
	r := server.NewRouter(server.Options{
		Mode:        ginMode(d.Cfg.App.Env),
		CORSOrigins: lim.CORSOrigins,
	})

	r.Use(mdw.RequestID(), mdw.Recovery(d.Log))
	if lim.RPS > 0 {
		r.Use(mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst))
	}
	if lim.PerIPRPS > 0 {
		r.Use(mdw.RateLimitPerIP(rate.Limit(lim.PerIPRPS), lim.PerIPBurst))
	}
	if lim.MaxConcurrent > 0 {
		r.Use(mdw.ConcurrencyLimit(lim.MaxConcurrent))
	}
	if lim.MaxBodyBytes > 0 {
		r.Use(mdw.MaxBodyBytes(lim.MaxBodyBytes))
	}
	if lim.TimeoutSec > 0 {
		r.Use(mdw.Timeout(time.Duration(lim.TimeoutSec) * time.Second))
	}
	r.Use(mdw.Metrics(), mdw.AccessLog(d.Log))

	r.NoRoute(func(c *gin.Context) { resp.Abort(c, http.StatusNotFound, resp.MsgRouteNotFound) })

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		if err := database.Ping(c.Request.Context(), d.DB); err != nil {
			d.Log.Warn("health check failed", zap.Error(err))
			resp.Abort(c, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		resp.JSON(c, http.StatusOK, "ok", gin.H{"db": "up"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

func NewAPIEngine(d Deps) *gin.Engine {
	r := newEngine(d)

	api := r.Group(d.Cfg.App.HTTP.Prefix)
	g := Groups{
		Public:    api.Group("", mdw.AuthJWT(d.Tokens, false)),
		Protected: api.Group("", mdw.AuthJWT(d.Tokens, d.Cfg.Auth.ProtectRoutes)),
	}
	d.Registry.MountAllAPI(g)
	return r
}
