package rabbitmq

// Exchange — обменник событий приложения.
const Exchange = "events"

// Маршрутные ключи публикуемых событий.
const (
	RoutingKeySubscriptionExpired = "subscription.expired"
)

// QueueConfig описывает очередь и её маршрутный ключ.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди воркера уведомлений.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notifications.subscription-expired", RoutingKey: RoutingKeySubscriptionExpired},
	}
}
