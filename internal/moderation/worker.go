package moderation

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/adotepet/adotepet-backend/internal/logger"
	"github.com/adotepet/adotepet-backend/internal/metrics"
	"github.com/adotepet/adotepet-backend/internal/models"
	"github.com/adotepet/adotepet-backend/internal/queue"
)

// ReportClassifier выносит решение модерации по тексту жалобы и фотографии.
type ReportClassifier interface {
	Classify(ctx context.Context, reportText string, img *Image) (string, error)
}

// PetPhotoSource отдаёт первую фотографию питомца.
type PetPhotoSource interface {
	FirstPhotoByPetID(ctx context.Context, petID uuid.UUID) (*models.PetPhoto, error)
}

// WorkerConfig содержит параметры воркера модерации.
type WorkerConfig struct {
	URL                 string
	ReportQueue         string
	StatusQueue         string
	Prefetch            int
	MaxDeliveryAttempts int
	ReconnectDelay      time.Duration
	ClassifyTimeout     time.Duration
}

// Worker читает очередь жалоб, прогоняет каждую через AI
// и публикует решение в очередь статусов.
type Worker struct {
	cfg        WorkerConfig
	classifier ReportClassifier
	pets       PetPhotoSource
	httpClient *http.Client
	log        *logrus.Entry
}

// NewWorker создаёт воркер модерации.
func NewWorker(cfg WorkerConfig, classifier ReportClassifier, pets PetPhotoSource) *Worker {
	return &Worker{
		cfg:        cfg,
		classifier: classifier,
		pets:       pets,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        logger.WithComponent("moderation.worker"),
	}
}

// Run подключается к брокеру и обрабатывает жалобы до отмены контекста.
// При обрыве подключения переподключается с фиксированной задержкой.
func (w *Worker) Run(ctx context.Context) {
	for {
		if err := w.consume(ctx); err != nil {
			w.log.Errorf("сессия воркера завершилась: %v", err)
		}

		select {
		case <-ctx.Done():
			w.log.Info("воркер модерации остановлен")
			return
		case <-time.After(w.cfg.ReconnectDelay):
		}
	}
}

// consume обслуживает одну сессию подключения к брокеру.
func (w *Worker) consume(ctx context.Context) error {
	conn, err := amqp.Dial(w.cfg.URL)
	if err != nil {
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := queue.DeclareDurable(ch, w.cfg.ReportQueue); err != nil {
		return err
	}
	if err := queue.DeclareDurable(ch, w.cfg.StatusQueue); err != nil {
		return err
	}
	if err := ch.Qos(w.cfg.Prefetch, 0, false); err != nil {
		return err
	}

	deliveries, err := ch.Consume(w.cfg.ReportQueue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	w.log.WithField("queue", w.cfg.ReportQueue).Info("ожидаем жалобы")

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-closed:
			return err
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			w.handle(ctx, ch, d)
		}
	}
}

// handle обрабатывает одну жалобу: фото, AI, публикация решения.
func (w *Worker) handle(ctx context.Context, ch *amqp.Channel, d amqp.Delivery) {
	var req queue.ModerationRequest
	if err := json.Unmarshal(d.Body, &req); err != nil {
		// Неразборчивое сообщение не станет разборчивым при повторе.
		w.log.Errorf("не удалось распарсить жалобу: %v", err)
		metrics.SwallowedFailures.WithLabelValues("moderation_parse").Inc()
		if ackErr := d.Ack(false); ackErr != nil {
			w.log.Errorf("не удалось подтвердить сообщение: %v", ackErr)
		}
		return
	}

	log := w.log.WithFields(logrus.Fields{
		"reportId": req.ReportID,
		"petId":    req.PetID,
	})
	log.Info("жалоба получена")

	decision, err := w.moderate(ctx, req)
	if err != nil {
		log.Errorf("не удалось обработать жалобу: %v", err)
		w.retryOrDrop(ctx, ch, d, log)
		return
	}

	metrics.ModerationDecisions.WithLabelValues(decision).Inc()
	log.WithField("decision", decision).Info("решение модерации вынесено")

	update := queue.StatusUpdate{ReportID: req.ReportID, Status: decision}
	if err := queue.PublishJSON(ctx, ch, w.cfg.StatusQueue, 1, update); err != nil {
		log.Errorf("не удалось опубликовать решение: %v", err)
		w.retryOrDrop(ctx, ch, d, log)
		return
	}

	if err := d.Ack(false); err != nil {
		log.Errorf("не удалось подтвердить сообщение: %v", err)
	}
}

// moderate выполняет содержательную часть обработки: фото питомца,
// скачивание изображения и вызов классификатора с таймаутом.
func (w *Worker) moderate(ctx context.Context, req queue.ModerationRequest) (string, error) {
	// Питомец без фото тоже уходит в retryOrDrop: фото может появиться,
	// но вечный цикл на таком сообщении недопустим.
	photo, err := w.pets.FirstPhotoByPetID(ctx, req.PetID)
	if err != nil {
		return "", err
	}

	img, err := FetchImage(ctx, w.httpClient, photo.URL)
	if err != nil {
		return "", err
	}

	classifyCtx, cancel := context.WithTimeout(ctx, w.cfg.ClassifyTimeout)
	defer cancel()

	start := time.Now()
	decision, err := w.classifier.Classify(classifyCtx, req.ReportText, img)
	if err != nil {
		return "", err
	}
	w.log.WithField("reportId", req.ReportID).
		Infof("время ответа AI: %s", time.Since(start))

	return decision, nil
}

// retryOrDrop переиздаёт сообщение с инкрементом попыток либо
// отправляет его в dead-letter очередь после исчерпания лимита.
func (w *Worker) retryOrDrop(ctx context.Context, ch *amqp.Channel, d amqp.Delivery, log *logrus.Entry) {
	deadLettered, err := queue.RetryOrDeadLetter(ctx, ch, w.cfg.ReportQueue, d, w.cfg.MaxDeliveryAttempts)
	if err != nil {
		log.Errorf("не удалось переиздать сообщение: %v", err)
		if nackErr := d.Nack(false, true); nackErr != nil {
			log.Errorf("не удалось вернуть сообщение в очередь: %v", nackErr)
		}
		return
	}
	if deadLettered {
		log.Error("жалоба отправлена в dead-letter очередь")
		metrics.DeadLetteredMessages.WithLabelValues(w.cfg.ReportQueue).Inc()
	}
}
