package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Заголовок конверта с числом попыток доставки. Счётчик ведём сами:
// nack с requeue не изменяет заголовки, поэтому при повторе сообщение
// публикуется заново с инкрементом.
const HeaderDeliveryAttempts = "x-delivery-attempts"

// DeadLetterQueue возвращает имя dead-letter очереди для рабочей очереди.
func DeadLetterQueue(queue string) string {
	return queue + ".dlq"
}

// DeclareDurable объявляет устойчивую очередь. Объявление идемпотентно,
// поэтому его выполняет каждая сторона перед публикацией или подпиской.
func DeclareDurable(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(name, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue: не удалось объявить очередь %s: %w", name, err)
	}
	return nil
}

// PublishJSON сериализует сообщение и публикует его в очередь
// с persistent delivery mode и переданным числом попыток.
func PublishJSON(ctx context.Context, ch *amqp.Channel, queue string, attempts int32, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("queue: не удалось сериализовать сообщение для %s: %w", queue, err)
	}

	err = ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers:      amqp.Table{HeaderDeliveryAttempts: attempts},
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("queue: не удалось опубликовать сообщение в %s: %w", queue, err)
	}
	return nil
}

// DeliveryAttempts читает счётчик попыток из заголовков доставки.
// Первая доставка без заголовка считается попыткой номер один.
func DeliveryAttempts(d amqp.Delivery) int32 {
	if d.Headers == nil {
		return 1
	}
	switch v := d.Headers[HeaderDeliveryAttempts].(type) {
	case int32:
		return v
	case int64:
		return int32(v)
	case int:
		return int32(v)
	default:
		return 1
	}
}

// RetryOrDeadLetter решает судьбу неудачно обработанного сообщения:
// пока попытки не исчерпаны, оно переиздаётся в ту же очередь с
// инкрементом счётчика; после исчерпания уходит в dead-letter очередь.
// Исходная доставка подтверждается в обоих случаях.
func RetryOrDeadLetter(ctx context.Context, ch *amqp.Channel, queue string, d amqp.Delivery, maxAttempts int) (deadLettered bool, err error) {
	attempts := DeliveryAttempts(d)

	if int(attempts) >= maxAttempts {
		dlq := DeadLetterQueue(queue)
		if err := DeclareDurable(ch, dlq); err != nil {
			return false, err
		}
		err := ch.PublishWithContext(ctx, "", dlq, false, false, amqp.Publishing{
			ContentType:  d.ContentType,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Headers:      d.Headers,
			Body:         d.Body,
		})
		if err != nil {
			return false, fmt.Errorf("queue: не удалось отправить сообщение в %s: %w", dlq, err)
		}
		if err := d.Ack(false); err != nil {
			return true, fmt.Errorf("queue: не удалось подтвердить сообщение после dead-letter: %w", err)
		}
		return true, nil
	}

	err = ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  d.ContentType,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers:      amqp.Table{HeaderDeliveryAttempts: attempts + 1},
		Body:         d.Body,
	})
	if err != nil {
		return false, fmt.Errorf("queue: не удалось переиздать сообщение в %s: %w", queue, err)
	}
	if err := d.Ack(false); err != nil {
		return false, fmt.Errorf("queue: не удалось подтвердить сообщение после переиздания: %w", err)
	}
	return false, nil
}
