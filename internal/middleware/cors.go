package middleware

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/nineball/internal/config"
)

var devOrigins = []string{
	"http://localhost:5173", // Vite dev server
	"http://127.0.0.1:5173",
}

// allowedOrigins lists the browser origins allowed outside development.
func allowedOrigins(cfg *config.Config) []string {
	if cfg.FrontendURL == "" {
		return nil
	}
	return []string{cfg.FrontendURL}
}

// CORSMiddleware returns a CORS middleware configured for the environment
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods: []string{
			"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin", "Content-Length", "Content-Type", "Authorization",
			"X-Admin-Phone", "X-Admin-Token", "X-Seat-Token", "Accept",
			"Cache-Control", "X-Requested-With",
		},
		ExposeHeaders: []string{
			"Content-Length", "X-Match-ID",
		},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if cfg.IsProduction() {
		corsConfig.AllowOrigins = allowedOrigins(cfg)
		if len(corsConfig.AllowOrigins) == 0 {
			slog.Warn("FRONTEND_URL not set; cross-origin requests are refused", "component", "cors")
			corsConfig.AllowOriginFunc = func(string) bool { return false }
		}
	} else {
		corsConfig.AllowOrigins = append([]string{}, devOrigins...)
		if cfg.FrontendURL != "" && !contains(devOrigins, cfg.FrontendURL) {
			corsConfig.AllowOrigins = append(corsConfig.AllowOrigins, cfg.FrontendURL)
		}
	}

	slog.Info("cors configured", "component", "cors", "env", cfg.Environment, "origins", corsConfig.AllowOrigins)
	return cors.New(corsConfig)
}

// WebSocketCORSCheck validates WebSocket upgrade origins
func WebSocketCORSCheck(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
			c.Next()
			return
		}

		origin := c.GetHeader("Origin")
		if origin == "" {
			c.AbortWithStatusJSON(400, gin.H{"error": "WebSocket origin required"})
			return
		}

		var allowed bool
		if cfg.IsProduction() {
			allowed = contains(allowedOrigins(cfg), origin)
		} else {
			allowed = strings.HasPrefix(origin, "http://localhost:") ||
				strings.HasPrefix(origin, "http://127.0.0.1:") ||
				origin == cfg.FrontendURL
		}

		if !allowed {
			slog.Warn("websocket origin rejected", "component", "cors", "origin", origin)
			c.AbortWithStatusJSON(403, gin.H{"error": "WebSocket origin not allowed"})
			return
		}

		c.Next()
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
