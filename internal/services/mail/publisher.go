// Package mail реализует публикацию почтовых заданий в очередь RabbitMQ.
package mail

import (
	"fmt"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/task-tracker/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/task-tracker/internal/models"
)

// Publisher публикует задания в обменник почтового конвейера.
type Publisher struct {
	ch *amqp.Channel
}

// NewPublisher создает новый экземпляр Publisher.
func NewPublisher(ch *amqp.Channel) *Publisher {
	return &Publisher{ch: ch}
}

// Publish отправляет задание в очередь почтовых заданий.
func (p *Publisher) Publish(job models.MailJob) error {
	const op = "services.mail.Publish"
	if err := rabbitmq.PublishJSON(p.ch, rabbitmq.Exchange, "jobs", job); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
