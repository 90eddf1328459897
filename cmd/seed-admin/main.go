package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/playmatatu/nineball/internal/admin"
	"github.com/playmatatu/nineball/internal/config"
	"github.com/playmatatu/nineball/internal/database"
)

func main() {
	cfg := config.Load()
	config.SetupLogging(cfg.LogLevel)

	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	phone := os.Getenv("ADMIN_PHONE")
	if phone == "" {
		phone = "256700000000"
		slog.Info("using default admin phone", "phone", phone)
	}

	adminToken := os.Getenv("ADMIN_TOKEN")
	if adminToken == "" {
		adminToken = "change-me-in-production"
		slog.Warn("using default admin token; set ADMIN_TOKEN in production")
	}

	displayName := os.Getenv("ADMIN_NAME")
	if displayName == "" {
		displayName = "Admin"
	}
	roles := []string{"super_admin"}
	if r := os.Getenv("ADMIN_ROLES"); r != "" {
		roles = strings.Split(r, ",")
	}

	if err := admin.CreateAdminAccount(ctx, db, phone, displayName, adminToken, roles); err != nil {
		slog.Error("failed to create admin account", "error", err)
		os.Exit(1)
	}

	slog.Info("admin account created or updated", "phone", phone, "display_name", displayName, "roles", roles)
}
