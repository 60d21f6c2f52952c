package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"pocketdesk/configs"
	"pocketdesk/internal/adapter"
	"pocketdesk/internal/adapter/telegram"
	"pocketdesk/internal/database"
	delivery "pocketdesk/internal/delivery/http"
	"pocketdesk/internal/domain"
	"pocketdesk/internal/infra"
	"pocketdesk/internal/logger"
	"pocketdesk/internal/middleware"
	"pocketdesk/internal/repository"
	"pocketdesk/internal/service"
	"pocketdesk/internal/source"
	"pocketdesk/internal/usecase"
	"pocketdesk/internal/utils"
)

var log = logrus.WithField("module", "main")

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Warn("[WARN] .env file not found, using environment variables")
	}

	// Load configuration
	cfg := configs.Load()
	if err := logger.Init(logger.DefaultConfig(cfg.Log.Level, cfg.Log.File)); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.Timezone != "" {
		utils.SetDisplayLocation(cfg.Timezone)
	}

	ctx := context.Background()
	mode := cfg.RefreshMode()
	period := cfg.RefreshPeriod()
	now := time.Now // one clock for the session and its source

	// Notifications and loss guard
	notifier := telegram.NewNotificationService(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if notifier.Enabled() {
		log.Info("[OK] Telegram notifications enabled")
	}
	guard := service.NewLossGuard(notifier)

	// Refresh source, settings store and initial snapshot per mode
	var (
		src     domain.Source
		deps    = usecase.SessionDeps{Notifier: notifier, Guard: guard, Now: now}
		initial *domain.Snapshot
		db      *pgxpool.Pool
	)

	switch mode {
	case configs.ModeRemote:
		client := adapter.NewProviderClient(adapter.ProviderConfig{
			BaseURL: cfg.Provider.URL,
			UserID:  cfg.Provider.UserID,
			Stake:   cfg.Session.TradeStake,
			Timeout: period,
		})

		go func() {
			log.Info("Checking provider health...")
			if err := client.HealthCheck(ctx); err != nil {
				log.Warnf("[WARN] Provider is not available: %v", err)
				log.Warn("Refresh will continue, reads will fail until the provider is running")
				return
			}
			log.Info("[OK] Provider is healthy")
		}()

		src = source.NewRemoteSource(client, now)
		deps.Store = client
		deps.Submitter = client
		initial = domain.NewSnapshot(cfg.Session.InitialBalance, nil, nil)

	default:
		localCfg := source.DefaultLocalConfig()
		localCfg.Stake = cfg.Session.TradeStake
		src = source.NewLocalSource(localCfg, rand.New(rand.NewSource(now().UnixNano())), now)
		initial = domain.NewSnapshot(cfg.Session.InitialBalance, source.DefaultPairs(), source.DefaultTrades())

		if cfg.Database.URL != "" {
			pool, err := infra.NewDatabase(ctx, cfg.Database.URL, infra.SettingsPool())
			if err != nil {
				log.Fatalf("Failed to connect to database: %v", err)
			}
			db = pool
			if err := database.RunMigrations(ctx, db); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
			deps.Store = repository.NewPostgresSettingsStore(repository.NewUserSettingsRepository(db))
		} else {
			log.Info("DATABASE_URL not set, settings are kept in memory")
			deps.Store = repository.NewMemorySettingsStore()
		}
	}
	if db != nil {
		defer db.Close()
	}

	// Session, synchronization loop and scheduler
	session := usecase.NewSession(initial, deps)
	syncService := usecase.NewSyncService(session, src, period)

	scheduler := infra.NewScheduler(syncService, period)

	// HTTP server
	auth := middleware.NewJWTAuth(cfg.Auth.JWTSecret)
	authHandler := delivery.NewAuthHandler(auth, cfg.Auth.OperatorUsername, cfg.Auth.OperatorPasswordHash)
	if !authHandler.Enabled() {
		log.Warn("[WARN] OPERATOR_PASSWORD_HASH not set, operator routes are open")
	}

	e := echo.New()
	e.HideBanner = true
	delivery.SetupRoutes(e, &delivery.RouterConfig{
		AuthHandler:      authHandler,
		DashboardHandler: delivery.NewDashboardHandler(session, cfg.Session.BestSignals),
		OperatorHandler:  delivery.NewOperatorHandler(session),
		Auth:             auth,
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Infof("PocketDesk dashboard starting on %s", addr)
	log.Infof("Environment: %s", cfg.Server.Env)
	log.Infof("Refresh: %s every %s", mode, period)
	log.Infof("Initial balance: $%.2f", cfg.Session.InitialBalance)
	log.Info("========================================")

	// The server comes up first so clients see the loading state of the
	// initial cycle
	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := scheduler.Stop(shutdownCtx); err != nil {
		log.Errorf("[ERROR] Scheduler did not stop cleanly: %v", err)
	}
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("[ERROR] Server forced to shutdown: %v", err)
	}

	log.Info("[OK] Server exited gracefully")
}
