package app

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"coinflip-platform/internal/audit"
	"coinflip-platform/internal/authority"
	"coinflip-platform/internal/cache"
	"coinflip-platform/internal/config"
	"coinflip-platform/internal/db"
	"coinflip-platform/internal/event"
	"coinflip-platform/internal/game"
	"coinflip-platform/internal/jobs"
	"coinflip-platform/internal/ledger"
	"coinflip-platform/internal/logger"
	"coinflip-platform/internal/monitoring"
	"coinflip-platform/internal/security"
	"coinflip-platform/internal/vault"
	"coinflip-platform/internal/wallet"
	"coinflip-platform/internal/ws"
)

type Server struct {
	app  *fiber.App
	jobs *jobs.Manager
}

func NewServer() *Server {
	cfg := config.Load()
	logger.Init()
	monitoring.Init()
	database := db.Init(cfg.DBPath)

	bus := event.NewBus()
	hub := ws.NewHub()

	auditService := audit.New(database)
	ledgerService := ledger.New(database)
	walletService := wallet.New(database)
	authorityService := authority.New(database, auditService, cfg.SuperAdmin, cfg.Rtp, cfg.MinBet, cfg.MaxWin)
	vaultService := vault.New(database, ledgerService, walletService, authorityService, auditService, bus)
	gameService := game.New(database, authorityService, vaultService, bus, cfg.MaxRounds)

	var sessionCache *cache.Cache
	if cfg.RedisAddr != "" {
		sessionCache = cache.New(cfg.RedisAddr)
	}

	game.RegisterConsumers(bus, hub)

	manager := jobs.New()
	manager.Register(jobs.NewBankrollGauge(vaultService, 30*time.Second))

	app := fiber.New()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/ws", websocket.New(hub.Handler))

	api := app.Group("/api", security.APIKeyGuard())
	game.RegisterRoutes(api, gameService, sessionCache)
	wallet.RegisterRoutes(api, walletService)

	admin := app.Group("/admin", security.AdminGuard())
	authority.RegisterRoutes(admin, authorityService)
	vault.RegisterRoutes(admin, vaultService)

	return &Server{app: app, jobs: manager}
}

func (s *Server) Start() error {
	go s.jobs.Start(context.Background())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return s.app.Listen(":" + port)
}
