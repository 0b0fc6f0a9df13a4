package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"fitness-tracker/internal/core/auth"
	"fitness-tracker/internal/core/cache"
	"fitness-tracker/internal/core/config"
	"fitness-tracker/internal/core/database"
	"fitness-tracker/internal/core/server"
	"fitness-tracker/internal/repo"
	"fitness-tracker/internal/service"
	"fitness-tracker/internal/transport/http/router"
)

// App 两个进程共用的依赖：DB、可选 redis、服务与路由依赖
type App struct {
	Cfg      *config.Config
	Log      *zap.Logger
	DB       *gorm.DB
	Cache    *cache.Cache
	Services *service.Services
	Registry *router.Registry
	Deps     router.Deps
}

// New 打开 DB（按配置自动迁移），连接 redis（不可用时降级为直连 DB）
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Logger:             log.Named("gorm"),
	})
	if err != nil {
		return nil, err
	}
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	store := repo.NewStore(db)
	if cfg.DB.AutoMigrate {
		if err := store.AutoMigrate(); err != nil {
			_ = database.Close(db)
			return nil, err
		}
		log.Info("automigrate done")
	}

	var c *cache.Cache
	if cfg.Redis.Addr != "" {
		c = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := c.Ping(pctx)
		cancel()
		if err != nil {
			log.Warn("redis unavailable, catalog cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = c.Close()
			c = nil
		} else {
			log.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
		}
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
		Leeway: 30 * time.Second,
	}
	svc := service.New(store, c, time.Duration(cfg.Redis.CatalogTTLSec)*time.Second, jwter, log)

	mode := gin.ReleaseMode
	if cfg.App.Env == "local" || cfg.App.Env == "dev" {
		mode = gin.DebugMode
	}
	a := &App{
		Cfg:      cfg,
		Log:      log,
		DB:       db,
		Cache:    c,
		Services: svc,
		Registry: router.Modules(svc, log.Named("http")),
	}
	a.Deps = router.Deps{
		Log:      log.Named("http"),
		Services: svc,
		Server: server.Options{
			Name:           cfg.App.Name,
			Mode:           mode,
			CORSOrigins:    cfg.App.CORSOrigins,
			TrustedProxies: cfg.App.TrustedProxies,
		},
		Health: a.ping,
	}
	return a, nil
}

func (a *App) ping(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (a *App) Close() {
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
	if err := database.Close(a.DB); err != nil {
		a.Log.Warn("close database", zap.Error(err))
	}
}

// Serve 异步启动，收到 SIGINT/SIGTERM 后优雅关闭
func (a *App) Serve(name string, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	a.Log.Info(name+" started", zap.String("addr", srv.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-quit:
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	a.Log.Info(name + " stopped gracefully")
	return nil
}
