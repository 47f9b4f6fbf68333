package rabbitmq

// QueueConfig описывает очередь и её routing key в exchange рассылки.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// Имена очередей и routing key почтовой подсистемы.
const (
	ConfirmQueue       = "newsletter.confirm"
	ConfirmRoutingKey  = "confirm"
	ReminderQueue      = "newsletter.reminder"
	ReminderRoutingKey = "reminder"
)

// GetNewsletterQueues возвращает очереди, которые обслуживает sender.
func GetNewsletterQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: ConfirmQueue, RoutingKey: ConfirmRoutingKey},
		{QueueName: ReminderQueue, RoutingKey: ReminderRoutingKey},
	}
}
