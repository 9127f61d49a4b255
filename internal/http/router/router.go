package router

import (
	"context"
	"net/http"
	"time"

	apphttp "rental_quote_backend/internal/http"
	"rental_quote_backend/platform/httpkit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const healthTimeout = 2 * time.Second

// New builds the gin engine: global middleware, health checks and every module's routes.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestID())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(cors.New(corsConfig(app.Config)))

	health := healthHandler(app)
	engine.GET("/health", health)
	engine.GET("/api/health", health)

	limiter := httpkit.NewIPRateLimiter(rate.Limit(app.Config.GetRateLimitRPS()), app.Config.GetRateLimitBurst(), app.Logger)
	v1 := engine.Group("/api/v1")
	v1.Use(limiter.RateLimit())

	operator := v1.Group("")
	operator.Use(httpkit.OperatorRequired(app.Config))

	rc := &apphttp.RouterContext{
		Engine:   engine,
		V1:       v1,
		Operator: operator,
		Config:   app.Config,
	}
	for _, m := range app.Modules {
		m.RegisterRoutes(rc)
		app.Logger.Debug("registered module routes", "module", m.Name())
	}

	return engine
}

func corsConfig(cfg apphttp.RouterConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", httpkit.HeaderRequestID},
		ExposeHeaders:    []string{httpkit.HeaderRequestID, "Content-Disposition"},
		AllowCredentials: cfg.GetCORSAllowCreds(),
		MaxAge:           12 * time.Hour,
	}
	if cfg.GetCORSAllowAll() && !cfg.GetCORSAllowCreds() {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.GetCORSOrigins()
	}
	return c
}

func healthHandler(app *apphttp.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		status := http.StatusOK
		body := gin.H{"status": "ok", "database": "ok", "cache": "disabled"}

		if app.Health != nil {
			if err := app.Health.Ping(ctx); err != nil {
				app.Logger.DatabaseError("health ping", err)
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body["database"] = "unreachable"
			}
		}
		// The cache is optional; an outage is reported but never fails the check.
		if app.Cache != nil {
			body["cache"] = "ok"
			if err := app.Cache.Ping(ctx); err != nil {
				body["cache"] = "unreachable"
			}
		}

		c.JSON(status, body)
	}
}
