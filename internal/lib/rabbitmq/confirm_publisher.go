package rabbitmq

import (
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/course-platform/internal/models"
)

// ConfirmPublisher отправляет письма подтверждения через exchange рассылки.
type ConfirmPublisher struct {
	ch *amqp.Channel
}

// NewConfirmPublisher создает нового издателя писем подтверждения.
func NewConfirmPublisher(ch *amqp.Channel) *ConfirmPublisher {
	return &ConfirmPublisher{ch: ch}
}

// PublishConfirm публикует сообщение в очередь писем подтверждения.
func (p *ConfirmPublisher) PublishConfirm(msg models.ConfirmEmail) error {
	return PublishMessage(p.ch, Exchange, ConfirmRoutingKey, msg)
}
