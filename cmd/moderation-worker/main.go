package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adotepet/adotepet-backend/internal/config"
	"github.com/adotepet/adotepet-backend/internal/db"
	"github.com/adotepet/adotepet-backend/internal/logger"
	"github.com/adotepet/adotepet-backend/internal/moderation"
	"github.com/adotepet/adotepet-backend/internal/repository"
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

	// Фотографии анкет читаются напрямую из общей базы.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer dbConn.Close()

	petRepo := repository.NewPetRepository(dbConn)
	classifier := moderation.NewClassifier(cfg.AIBaseURL, cfg.AIModel, cfg.AIAPIKey, cfg.ClassifyTimeout)

	worker := moderation.NewWorker(moderation.WorkerConfig{
		URL:                 cfg.RabbitURL,
		ReportQueue:         cfg.ReportQueue,
		StatusQueue:         cfg.ReportStatusQueue,
		Prefetch:            cfg.ConsumerPrefetch,
		MaxDeliveryAttempts: cfg.MaxDeliveryAttempts,
		ReconnectDelay:      cfg.ReconnectDelay,
		ClassifyTimeout:     cfg.ClassifyTimeout,
	}, classifier, petRepo)

	// Служебный HTTP для метрик и liveness.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	metricsServer := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: mux,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("main: ошибка служебного http сервера: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	log.Printf("main: воркер модерации запущен, очередь %s", cfg.ReportQueue)

	// Блокируется до отмены контекста.
	worker.Run(ctx)

	log.Printf("main: воркер модерации остановлен")
}
