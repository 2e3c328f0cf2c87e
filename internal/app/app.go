// Package app 两个进程共用的装配：DB、缓存、JWT、用户服务
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-api/internal/core/auth"
	"user-api/internal/core/cache"
	"user-api/internal/core/config"
	"user-api/internal/core/database"
	"user-api/internal/repo"
	"user-api/internal/service"
	"user-api/internal/transport/http/handler"
	"user-api/internal/transport/http/router"
	"user-api/pkg/utils"
)

type App struct {
	Cfg   *config.Config
	Log   *zap.Logger
	DB    *gorm.DB
	JWT   *auth.JWTer
	Users *service.UserService

	closers []func()
}

func New(cfg *config.Config, l *zap.Logger) (*App, error) {
	a := &App{Cfg: cfg, Log: l}

	db, err := database.NewGorm(database.OptsFromConfig(cfg.DB), l)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	a.DB = db
	a.closers = append(a.closers, func() { _ = database.Close(db) })
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))

	userRepo := repo.NewUserRepo(db)
	if cfg.DB.AutoMigrate {
		if err := userRepo.Migrate(); err != nil {
			a.Close()
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		l.Info("automigrate done")
	}

	hasher, err := utils.NewPasswordHasher(cfg.Auth.BcryptCost)
	if err != nil {
		a.Close()
		return nil, err
	}
	policy, err := service.ParseRolePolicy(cfg.Auth.RolePolicy)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.JWT = &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    auth.TokenTTL,
		Leeway: time.Duration(cfg.JWT.LeewaySec) * time.Second,
	}

	opts := []service.Option{
		service.WithLogger(l.Named("users")),
		service.WithRolePolicy(policy),
	}
	if c := a.openCache(); c != nil {
		opts = append(opts, service.WithCache(c, time.Duration(cfg.Redis.TTLSec)*time.Second))
	}
	a.Users = service.NewUserService(userRepo, hasher, a.JWT, opts...)
	return a, nil
}

// openCache redis 不可用时降级为直读库
func (a *App) openCache() *cache.Cache {
	rc := a.Cfg.Redis
	if rc.Addr == "" {
		return nil
	}
	c := cache.New(rc.Addr, rc.Password, rc.DB)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		a.Log.Warn("redis unavailable, cache disabled", zap.String("addr", rc.Addr), zap.Error(err))
		_ = c.Close()
		return nil
	}
	a.closers = append(a.closers, func() { _ = c.Close() })
	a.Log.Info("redis cache enabled", zap.String("addr", rc.Addr))
	return c
}

func (a *App) Deps() router.Deps {
	return router.Deps{
		Log:    a.Log,
		Cfg:    a.Cfg,
		DB:     a.DB,
		Tokens: a.JWT,
		RoleOf: a.Users.RoleOf,
		Registry: router.NewRegistry(
			handler.NewUserHandler(a.Users),
			handler.NewAdminHandler(a.Users),
		),
	}
}

// Close 逆序释放
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
