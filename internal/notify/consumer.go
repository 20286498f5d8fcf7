package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/adotepet/adotepet-backend/internal/logger"
	"github.com/adotepet/adotepet-backend/internal/metrics"
	"github.com/adotepet/adotepet-backend/internal/models"
	"github.com/adotepet/adotepet-backend/internal/queue"
)

// NotificationWriter сохраняет уведомление в БД.
type NotificationWriter interface {
	Create(ctx context.Context, userID uuid.UUID, ntype, title, message string, data any) (*models.Notification, error)
}

// LivePusher доставляет уведомление в открытое WebSocket подключение.
type LivePusher interface {
	SendToUser(userID uuid.UUID, event string, data any) bool
}

// ConsumerConfig содержит параметры консьюмера очереди уведомлений.
type ConsumerConfig struct {
	URL                 string
	Queue               string
	Prefetch            int
	MaxDeliveryAttempts int
	ReconnectDelay      time.Duration
}

// Consumer читает очередь уведомлений: сначала сохраняет уведомление
// в БД, затем пытается доставить его вживую. Живая доставка
// best-effort: офлайн пользователь увидит уведомление через REST.
type Consumer struct {
	cfg    ConsumerConfig
	writer NotificationWriter
	pusher LivePusher
	log    *logrus.Entry
}

// NewConsumer создаёт консьюмер уведомлений.
func NewConsumer(cfg ConsumerConfig, writer NotificationWriter, pusher LivePusher) *Consumer {
	return &Consumer{
		cfg:    cfg,
		writer: writer,
		pusher: pusher,
		log:    logger.WithComponent("notify.consumer"),
	}
}

// Run подключается к брокеру и обрабатывает события до отмены контекста.
// При обрыве подключения переподключается с фиксированной задержкой.
func (c *Consumer) Run(ctx context.Context) {
	for {
		if err := c.consume(ctx); err != nil {
			c.log.Errorf("сессия консьюмера завершилась: %v", err)
		}

		select {
		case <-ctx.Done():
			c.log.Info("консьюмер уведомлений остановлен")
			return
		case <-time.After(c.cfg.ReconnectDelay):
		}
	}
}

// consume обслуживает одну сессию подключения к брокеру.
func (c *Consumer) consume(ctx context.Context) error {
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

	if err := queue.DeclareDurable(ch, c.cfg.Queue); err != nil {
		return err
	}
	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return err
	}

	deliveries, err := ch.Consume(c.cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	c.log.WithField("queue", c.cfg.Queue).Info("ожидаем события уведомлений")

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

// handle обрабатывает одну доставку: сохранить, потом доставить вживую.
func (c *Consumer) handle(ctx context.Context, ch *amqp.Channel, d amqp.Delivery) {
	var event queue.NotificationEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		c.log.Errorf("не удалось распарсить событие уведомления: %v", err)
		metrics.SwallowedFailures.WithLabelValues("notify_parse").Inc()
		if ackErr := d.Ack(false); ackErr != nil {
			c.log.Errorf("не удалось подтвердить сообщение: %v", ackErr)
		}
		return
	}

	log := c.log.WithFields(logrus.Fields{
		"type":   event.Type,
		"userId": event.UserID,
	})
	log.Info("событие уведомления получено")

	notification, wsEvent, err := c.process(ctx, event)
	if err != nil {
		if err == errUnknownType {
			// Неизвестный тип подтверждается и отбрасывается без сохранения.
			log.Warnf("неизвестный тип события: %s", event.Type)
			metrics.SwallowedFailures.WithLabelValues("notify_unknown_type").Inc()
			if ackErr := d.Ack(false); ackErr != nil {
				log.Errorf("не удалось подтвердить сообщение: %v", ackErr)
			}
			return
		}

		log.Errorf("не удалось сохранить уведомление: %v", err)
		c.retryOrDrop(ctx, ch, d, log)
		return
	}

	metrics.NotificationsProcessed.WithLabelValues(event.Type).Inc()

	// Живая доставка после сохранения. Её неуспех не влияет на ack:
	// уведомление уже лежит в БД.
	delivered := c.pusher.SendToUser(notification.UserID, wsEvent, notification)
	if delivered {
		metrics.NotificationsDelivered.WithLabelValues("delivered").Inc()
	} else {
		metrics.NotificationsDelivered.WithLabelValues("stored_only").Inc()
	}

	if err := d.Ack(false); err != nil {
		log.Errorf("не удалось подтвердить сообщение: %v", err)
	}
}

var errUnknownType = fmt.Errorf("notify: неизвестный тип события")

// process сохраняет уведомление для известного типа события
// и возвращает его вместе с именем WebSocket события.
func (c *Consumer) process(ctx context.Context, event queue.NotificationEvent) (*models.Notification, string, error) {
	switch event.Type {
	case queue.EventReportProcessed:
		n, err := c.handleReportProcessed(ctx, event)
		return n, "report_processed", err
	case queue.EventPetAdopted:
		n, err := c.handlePetAdopted(ctx, event)
		return n, "notification", err
	case queue.EventUserMessage:
		n, err := c.handleUserMessage(ctx, event)
		return n, "notification", err
	default:
		return nil, "", errUnknownType
	}
}

// handleReportProcessed формирует уведомление об итоге модерации жалобы.
func (c *Consumer) handleReportProcessed(ctx context.Context, event queue.NotificationEvent) (*models.Notification, error) {
	var title, message string
	switch event.Action {
	case models.ReportStatusRemove:
		title = "Pet Removido"
		message = fmt.Sprintf("Obrigado pelo seu report! O pet %s foi removido da plataforma.", event.PetName)
	case models.ReportStatusDeactivate:
		title = "Pet Inativado"
		message = fmt.Sprintf("Obrigado pelo seu report! O pet %s foi marcado como inativo.", event.PetName)
	default:
		title = "Report Processado"
		message = fmt.Sprintf("Seu report sobre o pet %s foi processado.", event.PetName)
	}

	data := map[string]any{
		"reportId": event.ReportID,
		"petId":    event.PetID,
		"petName":  event.PetName,
		"action":   event.Action,
	}

	return c.writer.Create(ctx, event.UserID, models.NotificationTypeReportProcessed, title, message, data)
}

// handlePetAdopted формирует уведомление владельцу об усыновлении питомца.
func (c *Consumer) handlePetAdopted(ctx context.Context, event queue.NotificationEvent) (*models.Notification, error) {
	title := "Pet Adotado!"
	message := fmt.Sprintf("Parabéns! Seu pet %s foi adotado!", event.PetName)

	data := map[string]any{
		"petId":   event.PetID,
		"petName": event.PetName,
		"adopter": event.Adopter,
	}

	return c.writer.Create(ctx, event.UserID, models.NotificationTypePetAdopted, title, message, data)
}

// handleUserMessage формирует произвольное уведомление пользователю.
func (c *Consumer) handleUserMessage(ctx context.Context, event queue.NotificationEvent) (*models.Notification, error) {
	var data any
	if len(event.ExtraData) > 0 {
		data = event.ExtraData
	}
	return c.writer.Create(ctx, event.UserID, models.NotificationTypeUserMessage, event.Title, event.Message, data)
}

// retryOrDrop переиздаёт сообщение с инкрементом попыток либо
// отправляет его в dead-letter очередь после исчерпания лимита.
func (c *Consumer) retryOrDrop(ctx context.Context, ch *amqp.Channel, d amqp.Delivery, log *logrus.Entry) {
	deadLettered, err := queue.RetryOrDeadLetter(ctx, ch, c.cfg.Queue, d, c.cfg.MaxDeliveryAttempts)
	if err != nil {
		log.Errorf("не удалось переиздать сообщение: %v", err)
		if nackErr := d.Nack(false, true); nackErr != nil {
			log.Errorf("не удалось вернуть сообщение в очередь: %v", nackErr)
		}
		return
	}
	if deadLettered {
		log.Error("событие отправлено в dead-letter очередь")
		metrics.DeadLetteredMessages.WithLabelValues(c.cfg.Queue).Inc()
	}
}
