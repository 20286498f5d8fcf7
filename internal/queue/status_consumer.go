package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/adotepet/adotepet-backend/internal/logger"
	"github.com/adotepet/adotepet-backend/internal/metrics"
	"github.com/adotepet/adotepet-backend/internal/pkg/apperror"
)

// DecisionApplier применяет решение модерации к жалобе и питомцу.
type DecisionApplier interface {
	ApplyDecision(ctx context.Context, reportID uuid.UUID, status string) error
}

// StatusConsumerConfig содержит параметры консьюмера очереди статусов.
type StatusConsumerConfig struct {
	URL                 string
	Queue               string
	Prefetch            int
	MaxDeliveryAttempts int
	ReconnectDelay      time.Duration
}

// StatusConsumer читает очередь reportStatus внутри процесса API
// и применяет решения модерации через сервис жалоб.
type StatusConsumer struct {
	cfg     StatusConsumerConfig
	applier DecisionApplier
	log     *logrus.Entry
}

// NewStatusConsumer создаёт консьюмер статусов жалоб.
func NewStatusConsumer(cfg StatusConsumerConfig, applier DecisionApplier) *StatusConsumer {
	return &StatusConsumer{
		cfg:     cfg,
		applier: applier,
		log:     logger.WithComponent("queue.status_consumer"),
	}
}

// Run подключается к брокеру и обрабатывает сообщения до отмены контекста.
// При обрыве подключения переподключается с фиксированной задержкой.
func (c *StatusConsumer) Run(ctx context.Context) {
	for {
		if err := c.consume(ctx); err != nil {
			c.log.Errorf("сессия консьюмера завершилась: %v", err)
		}

		select {
		case <-ctx.Done():
			c.log.Info("консьюмер статусов остановлен")
			return
		case <-time.After(c.cfg.ReconnectDelay):
		}
	}
}

// consume обслуживает одну сессию подключения к брокеру.
func (c *StatusConsumer) consume(ctx context.Context) error {
	conn, err := amqp.Dial(c.cfg.URL)
	if err != nil {
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := DeclareDurable(ch, c.cfg.Queue); err != nil {
		return err
	}
	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return err
	}

	deliveries, err := ch.Consume(c.cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	c.log.WithField("queue", c.cfg.Queue).Info("ожидаем статусы жалоб")

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
			c.handle(ctx, ch, d)
		}
	}
}

// handle обрабатывает одну доставку: парсит, применяет решение, подтверждает.
func (c *StatusConsumer) handle(ctx context.Context, ch *amqp.Channel, d amqp.Delivery) {
	var update StatusUpdate
	if err := json.Unmarshal(d.Body, &update); err != nil {
		// Неразборчивое сообщение не станет разборчивым при повторе.
		c.log.Errorf("не удалось распарсить статус жалобы: %v", err)
		metrics.SwallowedFailures.WithLabelValues("status_consumer_parse").Inc()
		if ackErr := d.Ack(false); ackErr != nil {
			c.log.Errorf("не удалось подтвердить сообщение: %v", ackErr)
		}
		return
	}

	err := c.applier.ApplyDecision(ctx, update.ReportID, update.Status)
	if err == nil {
		if ackErr := d.Ack(false); ackErr != nil {
			c.log.Errorf("не удалось подтвердить сообщение: %v", ackErr)
		}
		return
	}

	if apperror.IsNotFound(err) || apperror.IsValidation(err) {
		// Жалоба не существует или статус невалиден, повтор не поможет.
		c.log.WithField("reportId", update.ReportID).
			Errorf("решение невозможно применить: %v", err)
		metrics.SwallowedFailures.WithLabelValues("status_consumer_apply").Inc()
		if ackErr := d.Ack(false); ackErr != nil {
			c.log.Errorf("не удалось подтвердить сообщение: %v", ackErr)
		}
		return
	}

	c.log.WithField("reportId", update.ReportID).
		Errorf("временная ошибка применения решения: %v", err)

	deadLettered, retryErr := RetryOrDeadLetter(ctx, ch, c.cfg.Queue, d, c.cfg.MaxDeliveryAttempts)
	if retryErr != nil {
		c.log.Errorf("не удалось переиздать сообщение: %v", retryErr)
		if nackErr := d.Nack(false, true); nackErr != nil {
			c.log.Errorf("не удалось вернуть сообщение в очередь: %v", nackErr)
		}
		return
	}
	if deadLettered {
		c.log.WithField("reportId", update.ReportID).Error("статус отправлен в dead-letter очередь")
		metrics.DeadLetteredMessages.WithLabelValues(c.cfg.Queue).Inc()
	}
}
