package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// PublishJSON сериализует задание в JSON и публикует его с признаком
// Persistent: почтовое задание обязано пережить перезапуск брокера.
func PublishJSON(ch *amqp.Channel, exchange, routingKey string, payload any) error {
	const op = "rabbitmq.PublishJSON"

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	}
	if err := ch.Publish(exchange, routingKey, false, false, pub); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
