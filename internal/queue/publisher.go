package queue

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/adotepet/adotepet-backend/internal/logger"
)

// Publisher публикует одиночные сообщения по схеме
// подключился - объявил очередь - отправил - закрыл.
// Подходит для редких публикаций из HTTP обработчиков,
// где держать постоянное подключение не имеет смысла.
type Publisher struct {
	url string
	log *logrus.Entry
}

// NewPublisher создаёт публикатор для заданного адреса брокера.
func NewPublisher(url string) *Publisher {
	return &Publisher{
		url: url,
		log: logger.WithComponent("queue.publisher"),
	}
}

// Publish отправляет одно сообщение в устойчивую очередь.
// Подключение и канал живут только на время вызова.
func (p *Publisher) Publish(ctx context.Context, queue string, msg any) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("queue: не удалось подключиться к брокеру: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("queue: не удалось открыть канал: %w", err)
	}
	defer ch.Close()

	if err := DeclareDurable(ch, queue); err != nil {
		return err
	}

	if err := PublishJSON(ctx, ch, queue, 1, msg); err != nil {
		return err
	}

	p.log.WithField("queue", queue).Debug("сообщение опубликовано")
	return nil
}
