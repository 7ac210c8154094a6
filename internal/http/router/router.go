package router

import (
	"github.com/gin-gonic/gin"

	"github.com/rutgers-seed/proposal-portal/internal/config"
	"github.com/rutgers-seed/proposal-portal/internal/http/middleware"
	"github.com/rutgers-seed/proposal-portal/internal/interface/http/handler"
	"github.com/rutgers-seed/proposal-portal/internal/metrics"
)

// Handlers набор хэндлеров, которые подключает роутер.
type Handlers struct {
	Proposal *handler.ProposalHandler
	Admin    *handler.AdminHandler
	Health   *handler.HealthHandler
	WS       *handler.WSHandler
}

func SetupRouter(cfg *config.Config, h Handlers, sessions middleware.SessionVerifier) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(metrics.GinMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")

	submitRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
	api.POST("/proposals", submitRateLimit, h.Proposal.Submit)

	adminGroup := api.Group("/admin")
	loginRateLimit := middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod)
	adminGroup.POST("/login", loginRateLimit, h.Admin.Login)
	adminGroup.POST("/logout", h.Admin.Logout)

	protected := adminGroup.Group("")
	protected.Use(middleware.AdminSessionMiddleware(sessions))
	{
		protected.GET("/proposals", h.Admin.List)
		protected.GET("/proposals/:id", middleware.IDValidator("id"), h.Admin.Get)
		protected.DELETE("/proposals/:id", middleware.IDValidator("id"), h.Admin.Delete)
		protected.GET("/proposals/:id/export", middleware.IDValidator("id"), h.Admin.ExportOne)
		protected.GET("/stats", h.Admin.Stats)
		protected.GET("/export", h.Admin.Export)
		protected.GET("/ws", h.WS.Handle)
	}

	return r
}
