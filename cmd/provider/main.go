package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"pocketdesk/configs"
	"pocketdesk/internal/database"
	"pocketdesk/internal/delivery/provider"
	"pocketdesk/internal/infra"
	"pocketdesk/internal/logger"
	"pocketdesk/internal/repository"
	"pocketdesk/internal/service"
	"pocketdesk/internal/source"
)

var log = logrus.WithField("module", "main")

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn("[WARN] .env file not found, using environment variables")
	}

	cfg := configs.Load()
	if err := logger.Init(logger.DefaultConfig(cfg.Log.Level, cfg.Log.File)); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()

	// Initialize database
	db, err := infra.NewDatabase(ctx, cfg.Database.URL, infra.ProviderPool())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	signalRepo := repository.NewSignalRepository(db)
	handler := provider.NewHandler(
		signalRepo,
		repository.NewTradeRepository(db),
		repository.NewUserSettingsRepository(db),
		db,
	)

	// Simulated signal feed
	cronScheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if cfg.Provider.FeedInterval > 0 {
		walker := source.NewLocalSource(source.DefaultLocalConfig(), nil, nil)
		feed := service.NewSignalFeed(signalRepo, walker, source.DefaultPairs())

		_, err := cronScheduler.AddFunc(fmt.Sprintf("@every %s", cfg.Provider.FeedInterval), func() {
			if _, err := feed.Publish(context.Background()); err != nil {
				log.Errorf("[ERROR] Signal feed failed: %v", err)
			}
		})
		if err != nil {
			log.Fatalf("Failed to add signal feed cron job: %v", err)
		}
		cronScheduler.Start()
		log.Infof("[OK] Signal feed publishing every %s", cfg.Provider.FeedInterval)
	}

	addr := fmt.Sprintf(":%s", cfg.Provider.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      provider.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Infof("PocketDesk provider starting on %s", addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down provider...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	<-cronScheduler.Stop().Done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("[ERROR] Server forced to shutdown: %v", err)
	}

	log.Info("[OK] Provider exited gracefully")
}
