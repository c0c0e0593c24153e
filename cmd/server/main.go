package main

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	_ "github.com/plexusfit/fitplan/docs"
	"github.com/plexusfit/fitplan/internal/cache"
	"github.com/plexusfit/fitplan/internal/config"
	"github.com/plexusfit/fitplan/internal/db"
	"github.com/plexusfit/fitplan/internal/generation"
	"github.com/plexusfit/fitplan/internal/handler"
	"github.com/plexusfit/fitplan/internal/identity"
	"github.com/plexusfit/fitplan/internal/model"
	"github.com/plexusfit/fitplan/internal/repository"
	"github.com/plexusfit/fitplan/internal/router"
	"github.com/plexusfit/fitplan/internal/service"
	"github.com/plexusfit/fitplan/internal/session"
)

// @title FitPlan API
// @version 1.0
// @description Personal fitness service: profile-driven weekly training and diet plans with versioned history.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logger.Fatal("database init", zap.Error(err))
	}

	if err := gormDB.AutoMigrate(
		&model.AuthUser{},
		&model.Profile{},
		&model.Plan{},
	); err != nil {
		logger.Fatal("auto-migrate", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Repositories
	authUserRepo := repository.NewAuthUserRepository(gormDB)
	profileRepo := repository.NewProfileRepository(gormDB)
	planRepo := repository.NewPlanRepository(gormDB)

	// Identity provider
	jwtService := identity.NewJWTService(cfg.JWTSecret)
	tokenStore := identity.NewTokenStore(cacheClient)
	provider := identity.NewJWTProvider(authUserRepo, jwtService, tokenStore, logger)

	// Generation
	generator := generation.NewOpenAIGenerator(cfg.OpenAIKey, cfg.OpenAIModel)
	orchestrator := generation.NewOrchestrator(generator, planRepo, cacheClient, logger, cfg.GenerationTimeout)

	// Session core
	core := session.NewCore(provider, profileRepo, orchestrator, cfg.AdminEmail, cfg.ProviderTimeout, logger)
	if err := core.Subscribe(); err != nil {
		logger.Fatal("session subscription", zap.Error(err))
	}
	defer core.Close()
	core.Initialize(context.Background())

	// Services
	planService := service.NewPlanService(planRepo, orchestrator, cacheClient)
	adminService := service.NewAdminService(profileRepo, logger)

	// Handlers
	authHandler := handler.NewAuthHandler(core, provider)
	profileHandler := handler.NewProfileHandler(core)
	planHandler := handler.NewPlanHandler(core, planService)
	adminHandler := handler.NewAdminHandler(adminService)

	router.Register(
		e,
		cfg,
		core,
		authHandler,
		profileHandler,
		planHandler,
		adminHandler,
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server start", zap.Error(err))
	}
}
