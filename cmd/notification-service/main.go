package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/adotepet/adotepet-backend/internal/config"
	"github.com/adotepet/adotepet-backend/internal/db"
	"github.com/adotepet/adotepet-backend/internal/goroutine"
	httpHandlers "github.com/adotepet/adotepet-backend/internal/http/handlers"
	httpRouter "github.com/adotepet/adotepet-backend/internal/http/router"
	"github.com/adotepet/adotepet-backend/internal/logger"
	"github.com/adotepet/adotepet-backend/internal/notify"
	"github.com/adotepet/adotepet-backend/internal/repository"
	"github.com/adotepet/adotepet-backend/internal/service"
	"github.com/adotepet/adotepet-backend/internal/ws"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer dbConn.Close()

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	// Реестр живых подключений.
	hub := ws.NewHub()

	notificationRepo := repository.NewNotificationRepository(dbConn)
	notificationService := service.NewNotificationService(notificationRepo, hub)

	// Потребитель очереди уведомлений.
	consumer := notify.NewConsumer(notify.ConsumerConfig{
		URL:                 cfg.RabbitURL,
		Queue:               cfg.NotificationQueue,
		Prefetch:            cfg.ConsumerPrefetch,
		MaxDeliveryAttempts: cfg.MaxDeliveryAttempts,
		ReconnectDelay:      cfg.ReconnectDelay,
	}, notificationService, hub)
	goroutine.SafeGoWithContext(ctx, consumer.Run)

	notificationHandler := httpHandlers.NewNotificationHandler(notificationService, hub)
	wsHandler := httpHandlers.NewWSHandler(hub, notificationService)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	engine := httpRouter.SetupNotificationRouter(cfg, notificationHandler, wsHandler, healthHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: сервис уведомлений запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}
