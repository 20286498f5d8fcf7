package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/adotepet/adotepet-backend/internal/config"
	"github.com/adotepet/adotepet-backend/internal/db"
	"github.com/adotepet/adotepet-backend/internal/goroutine"
	httpHandlers "github.com/adotepet/adotepet-backend/internal/http/handlers"
	httpRouter "github.com/adotepet/adotepet-backend/internal/http/router"
	"github.com/adotepet/adotepet-backend/internal/logger"
	"github.com/adotepet/adotepet-backend/internal/queue"
	"github.com/adotepet/adotepet-backend/internal/repository"
	"github.com/adotepet/adotepet-backend/internal/service"
	"github.com/adotepet/adotepet-backend/internal/storage"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Инициализируем вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	photoStorage, err := storage.NewPhotoStorage(cfg.MediaStoragePath, cfg.MediaBaseURL, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Публикация в очереди модерации и уведомлений.
	reportPublisher := queue.NewPublisher(cfg.RabbitURL)
	notificationPublisher := queue.NewNotificationPublisher(cfg.RabbitURL, cfg.NotificationQueue)
	defer notificationPublisher.Close()

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	petRepo := repository.NewPetRepository(dbConn)
	reportRepo := repository.NewReportRepository(dbConn)
	interactionRepo := repository.NewInteractionRepository(dbConn)
	favoriteRepo := repository.NewFavoriteRepository(dbConn)

	// Сервисы.
	authService := service.NewAuthService(userRepo, tokenManager)
	petService := service.NewPetService(petRepo, photoStorage, notificationPublisher)
	reportService := service.NewReportService(reportRepo, petRepo, reportPublisher, notificationPublisher, cfg.ReportQueue)
	interactionService := service.NewInteractionService(interactionRepo, petRepo)
	favoriteService := service.NewFavoriteService(favoriteRepo, petRepo)

	// Потребитель решений модерации живёт внутри процесса API.
	statusConsumer := queue.NewStatusConsumer(queue.StatusConsumerConfig{
		URL:                 cfg.RabbitURL,
		Queue:               cfg.ReportStatusQueue,
		Prefetch:            cfg.ConsumerPrefetch,
		MaxDeliveryAttempts: cfg.MaxDeliveryAttempts,
		ReconnectDelay:      cfg.ReconnectDelay,
	}, reportService)
	goroutine.SafeGoWithContext(ctx, statusConsumer.Run)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	petHandler := httpHandlers.NewPetHandler(petService)
	reportHandler := httpHandlers.NewReportHandler(reportService)
	interactionHandler := httpHandlers.NewInteractionHandler(interactionService)
	favoriteHandler := httpHandlers.NewFavoriteHandler(favoriteService)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupAPIRouter(cfg, authHandler, petHandler, reportHandler, interactionHandler, favoriteHandler, healthHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
