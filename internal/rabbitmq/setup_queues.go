package rabbitmq

// Exchange — общий direct-обменник для писем.
const Exchange = "emails"

// QueueConfig описывает очередь и ключ маршрутизации для привязки к обменнику.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetEmailQueues возвращает очереди транзакционных писем.
func GetEmailQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "emails.transactional", RoutingKey: "transactional"},
		// при необходимости дополнительные очереди для других воркеров
	}
}
