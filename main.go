package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queueapp/config"
	"github.com/yeremiapane/queueapp/database"
	"github.com/yeremiapane/queueapp/live"
	"github.com/yeremiapane/queueapp/router"
	"github.com/yeremiapane/queueapp/services"
	"github.com/yeremiapane/queueapp/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}
	utils.InitLogger(cfg.Server.LogLevel)
	utils.SetJWTSecret(cfg.Auth.JWTSecret)
	if cfg.Auth.JWTSecret == "" {
		utils.InfoLogger.Warn("JWT_SECRET not set, using development secret")
	}

	if cfg.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg.Database)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate database: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	gormStore := database.NewGormStore(db)
	var store services.RestaurantStore = gormStore
	if client := config.NewRedisClient(cfg.Mirror); client != nil {
		mirror := database.NewRedisStore(client, cfg.Mirror.Prefix)
		if err := mirror.Ping(context.Background()); err != nil {
			utils.ErrorLogger.Printf("Redis mirror unavailable, continuing without it: %v", err)
		} else {
			store = services.NewReplicatedStore(gormStore, mirror)
			utils.InfoLogger.Printf("Redis mirror enabled at %s", cfg.Mirror.Addr)
		}
	}

	hub := live.NewHub()
	notifiers := live.Fanout{hub}
	if cfg.Events.NATSURL != "" {
		publisher, err := live.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.SubjectPrefix)
		if err != nil {
			utils.ErrorLogger.Printf("NATS unavailable, live events stay in-process: %v", err)
		} else {
			defer publisher.Close()
			notifiers = append(notifiers, publisher)
			utils.InfoLogger.Printf("Publishing events to NATS at %s", cfg.Events.NATSURL)
		}
	}

	clock := services.SystemClock{Location: cfg.Location()}
	selector := services.NewSchemeSelector(cfg.Archive.CutoverMonth)
	splitter := services.Splitter{
		MaxBytes:     cfg.Archive.MaxDocBytes,
		SafetyBuffer: cfg.Archive.SafetyBuffer,
		RecordBytes:  cfg.Archive.RecordBytes,
	}

	queueSvc := services.NewQueueService(store, clock, notifiers, cfg.Queue.FreeMonthlyLimit)
	archiver := services.NewArchiver(store, selector, splitter, clock, notifiers)
	reader := services.NewArchiveReader(store, selector)
	analyticsSvc := services.NewAnalyticsService(store, reader, services.NewAggregator(clock.Location))
	planSvc := services.NewPlanService(store, clock, notifiers)

	if cfg.Archive.AutoCleanup {
		scheduler := services.NewCleanupScheduler(store, archiver, clock, cfg.Archive.CleanupInterval)
		scheduler.Start()
		defer scheduler.Stop()
	}

	r := router.SetupRouter(router.Dependencies{
		Queue:             queueSvc,
		Archiver:          archiver,
		Analytics:         analyticsSvc,
		Plans:             planSvc,
		Hub:               hub,
		Clock:             clock,
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		JoinRateLimit:     cfg.Server.JoinRateLimit,
		JoinBurst:         cfg.Server.JoinBurst,
		PlatformAdminUser: cfg.Auth.PlatformAdminUser,
		PlatformAdminHash: cfg.Auth.PlatformAdminHash,
	})
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		utils.ErrorLogger.Printf("Error setting trusted proxies: %v", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
	}
	go func() {
		utils.InfoLogger.Printf("Listening on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.InfoLogger.Println("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.ErrorLogger.Printf("Server shutdown failed: %v", err)
	}
}
