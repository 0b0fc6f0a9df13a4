package main

import (
	"context"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"fitness-tracker/internal/app"
	"fitness-tracker/internal/core/config"
	"fitness-tracker/internal/core/logger"
	"fitness-tracker/internal/core/server"
	"fitness-tracker/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		l, _ := logger.New("info", false)
		l.Fatal("load config", zap.Error(err))
	}
	log, cleanup := logger.FromConfig(cfg.Log, zap.String("service", "admin"), zap.String("env", cfg.App.Env))
	defer cleanup()
	undo := logger.RedirectStdLog(log, zapcore.InfoLevel)
	defer undo()

	ctx := context.Background()
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer a.Close()

	// 确保管理员账号存在
	b := cfg.Bootstrap
	if u, created, err := a.Services.Auth.EnsureAdmin(ctx, b.AdminName, b.AdminEmail, b.AdminPassword); err != nil {
		log.Fatal("ensure admin failed", zap.Error(err))
	} else if u != nil {
		log.Info("admin account ready", zap.String("name", u.Name), zap.Bool("created", created))
	}

	// 路由（后台端）
	r := router.NewAdminEngine(a.Deps, a.Registry)

	addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	srv := server.BuildServer(addr, r, 5*time.Second, 10*time.Second, 60*time.Second, log)

	baseURL := server.HumanURL(cfg.App.Admin.Host, cfg.App.Admin.Port)
	log.Info("admin api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("admin_v1", baseURL+"/admin/v1"),
	)
	if err := a.Serve("admin api", srv); err != nil {
		log.Error("admin api FAILED", zap.Error(err))
	}
}
