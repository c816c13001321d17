package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/binghan60/EKERA-LunchBOT/config"
	"github.com/binghan60/EKERA-LunchBOT/internal/app/controller"
	"github.com/binghan60/EKERA-LunchBOT/internal/app/repository"
	"github.com/binghan60/EKERA-LunchBOT/internal/app/service"
	"github.com/binghan60/EKERA-LunchBOT/internal/bot"
	"github.com/binghan60/EKERA-LunchBOT/internal/db"
	"github.com/binghan60/EKERA-LunchBOT/internal/router"
	"github.com/binghan60/EKERA-LunchBOT/internal/scheduler"
	"github.com/binghan60/EKERA-LunchBOT/internal/storage"
	"github.com/binghan60/EKERA-LunchBOT/pkg/line"
	"github.com/binghan60/EKERA-LunchBOT/pkg/logger"
	"github.com/binghan60/EKERA-LunchBOT/pkg/mailer"
	"github.com/binghan60/EKERA-LunchBOT/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting LunchBOT Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis only backs webhook redelivery dedup, the bot works without it
	if cfg.Redis.Enabled() {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, webhook dedup disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer redis.Close()
		}
	}

	// External collaborators
	lineClient, err := line.NewClient(line.Config{
		ChannelAccessToken: cfg.Line.ChannelAccessToken,
		ChannelSecret:      cfg.Line.ChannelSecret,
		BaseURL:            cfg.Line.APIBaseURL,
	})
	if err != nil {
		logger.Fatal("Failed to initialize LINE client", err)
	}
	imageStore := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)
	alerts := mailer.New(cfg.Mail)

	// Initialize repositories
	restaurantRepo := repository.NewRestaurantRepository(db.GetDB())
	bindingRepo := repository.NewBindingRepository(db.GetDB())
	configRepo := repository.NewGroupConfigRepository(db.GetDB())
	historyRepo := repository.NewDrawHistoryRepository(db.GetDB())

	// Initialize services
	restaurantService := service.NewRestaurantService(restaurantRepo, bindingRepo, imageStore)
	bindingService := service.NewBindingService(bindingRepo, restaurantRepo, configRepo)
	configService := service.NewGroupConfigService(configRepo, bindingRepo)
	drawService := service.NewDrawService(bindingRepo, restaurantRepo, configRepo, historyRepo, alerts)
	historyService := service.NewHistoryService(historyRepo)
	notifyService := service.NewNotifyService(lineClient)

	// Chat command handler
	botHandler := bot.NewHandler(lineClient, restaurantService, bindingService, configService, drawService, notifyService)

	// Initialize controllers
	restaurantController := controller.NewRestaurantController(restaurantService)
	bindingController := controller.NewBindingController(bindingService)
	groupConfigController := controller.NewGroupConfigController(configService)
	drawController := controller.NewDrawController(drawService, notifyService)
	historyController := controller.NewHistoryController(historyService)
	webhookController := controller.NewWebhookController(cfg.Line.ChannelSecret, botHandler)

	// Scheduled lunch push
	lunchScheduler := scheduler.NewLunchScheduler(cfg.Scheduler.LunchCron, configService, drawService, notifyService)
	if err := lunchScheduler.Start(); err != nil {
		logger.Fatal("Failed to start lunch scheduler", err)
	}
	defer lunchScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		restaurantController,
		bindingController,
		groupConfigController,
		drawController,
		historyController,
		webhookController,
		alerts,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
