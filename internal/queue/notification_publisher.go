package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/adotepet/adotepet-backend/internal/logger"
)

// NotificationPublisher публикует события в очередь уведомлений.
// Подключение устанавливается лениво при первой публикации и
// переиспользуется; при любой ошибке кеш сбрасывается, и следующая
// публикация подключается заново.
type NotificationPublisher struct {
	url   string
	queue string
	log   *logrus.Entry

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewNotificationPublisher создаёт публикатор событий уведомлений.
func NewNotificationPublisher(url, queue string) *NotificationPublisher {
	return &NotificationPublisher{
		url:   url,
		queue: queue,
		log:   logger.WithComponent("queue.notifications"),
	}
}

// Publish отправляет событие в очередь уведомлений.
func (p *NotificationPublisher) Publish(ctx context.Context, event NotificationEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}

	if err := PublishJSON(ctx, ch, p.queue, 1, event); err != nil {
		// Канал мог протухнуть, сбрасываем кеш и пробуем один раз заново.
		p.reset()
		ch, retryErr := p.channel()
		if retryErr != nil {
			return err
		}
		if retryErr := PublishJSON(ctx, ch, p.queue, 1, event); retryErr != nil {
			p.reset()
			return retryErr
		}
	}

	p.log.WithFields(logrus.Fields{
		"type":   event.Type,
		"userId": event.UserID,
	}).Debug("событие уведомления опубликовано")
	return nil
}

// PublishReportProcessed публикует событие об обработанной жалобе.
func (p *NotificationPublisher) PublishReportProcessed(ctx context.Context, userID, reportID, petID uuid.UUID, petName, action string) error {
	return p.Publish(ctx, NotificationEvent{
		Type:     EventReportProcessed,
		UserID:   userID,
		ReportID: &reportID,
		PetID:    &petID,
		PetName:  petName,
		Action:   action,
	})
}

// PublishPetAdopted публикует событие об усыновлении питомца владельцу анкеты.
func (p *NotificationPublisher) PublishPetAdopted(ctx context.Context, ownerID, petID uuid.UUID, petName, adopter string) error {
	return p.Publish(ctx, NotificationEvent{
		Type:    EventPetAdopted,
		UserID:  ownerID,
		PetID:   &petID,
		PetName: petName,
		Adopter: adopter,
	})
}

// PublishUserMessage публикует произвольное сообщение пользователю.
func (p *NotificationPublisher) PublishUserMessage(ctx context.Context, userID uuid.UUID, title, message string, extra json.RawMessage) error {
	return p.Publish(ctx, NotificationEvent{
		Type:      EventUserMessage,
		UserID:    userID,
		Title:     title,
		Message:   message,
		ExtraData: extra,
	})
}

// Close закрывает кешированное подключение, если оно было установлено.
func (p *NotificationPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
}

// channel возвращает кешированный канал, при необходимости подключаясь к брокеру.
// Вызывается строго под мьютексом.
func (p *NotificationPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil {
		return p.ch, nil
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("queue: не удалось подключиться к брокеру: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("queue: не удалось открыть канал: %w", err)
	}

	if err := DeclareDurable(ch, p.queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	p.conn = conn
	p.ch = ch
	return ch, nil
}

// reset сбрасывает кешированные канал и подключение. Вызывается под мьютексом.
func (p *NotificationPublisher) reset() {
	if p.ch != nil {
		p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
}
