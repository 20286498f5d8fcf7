package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Счётчики конвейера модерации и уведомлений. Каждое «проглоченное»
// исключение обязано оставлять метрику, а не только строку в логе.
var (
	ReportPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "report_publish_failures_total",
		Help: "Сколько раз не удалось опубликовать жалобу в очередь после сохранения в БД.",
	})

	SwallowedFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swallowed_failures_total",
		Help: "Проглоченные ошибки побочных эффектов по месту возникновения.",
	}, []string{"stage"})

	DeadLetteredMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dead_lettered_messages_total",
		Help: "Сообщения, отправленные в dead-letter очередь после исчерпания попыток.",
	}, []string{"queue"})

	ModerationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_decisions_total",
		Help: "Решения модерации по типу.",
	}, []string{"decision"})

	NotificationsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_processed_total",
		Help: "Обработанные события очереди уведомлений по типу.",
	}, []string{"type"})

	NotificationsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_delivered_total",
		Help: "Результат живой доставки уведомлений: delivered или stored_only.",
	}, []string{"outcome"})
)
