package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/nineball/internal/api/handlers"
	"github.com/playmatatu/nineball/internal/config"
	"github.com/playmatatu/nineball/internal/game"
	"github.com/playmatatu/nineball/internal/middleware"
	"github.com/playmatatu/nineball/internal/ws"
)

// SetupRoutes configures all API routes. validateAdmin may be nil when no
// database is configured; admin routes then answer 503.
func SetupRoutes(router *gin.Engine, mm *game.MatchManager, hub *ws.Hub, cfg *config.Config, validateAdmin middleware.AdminValidator) {
	router.Use(middleware.CORSMiddleware(cfg))

	if !cfg.IsProduction() {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		slog.Info("no-cache headers enabled", "component", "api", "env", cfg.Environment)
	}

	router.GET("/health", handlers.HealthCheck(mm))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(mm))
		v1.GET("/config", handlers.GetConfig(cfg, mm))

		matches := v1.Group("/matches")
		{
			matches.POST("", handlers.CreateMatch(mm, cfg))
			matches.GET("/:id", handlers.GetMatch(mm))
			matches.GET("/:id/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleMatchWebSocket(ws.NewHandler(hub, mm, cfg)))
		}

		adm := v1.Group("/admin", middleware.AdminAuth(validateAdmin))
		{
			adm.GET("/matches", handlers.AdminListMatches(mm))
			adm.POST("/matches/:id/:action", handlers.AdminMatchAction(mm))
			adm.DELETE("/matches/:id", handlers.AdminDeleteMatch(mm))
			adm.GET("/history", handlers.AdminMatchHistory(mm))
			adm.GET("/history/:id/turns", handlers.AdminMatchTurns(mm))
		}
	}
}
