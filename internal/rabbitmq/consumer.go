package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/streadway/amqp"
)

// ErrBadMessage помечает сообщение, которое невозможно обработать ни при
// каком повторе (например, битый JSON). Такое сообщение отклоняется без
// возврата в очередь, иначе оно будет доставляться бесконечно.
var ErrBadMessage = errors.New("unprocessable message")

// ConsumerMessage создает потребителя сообщений из очереди RabbitMQ.
//
// Ошибка обработчика приводит к Nack с повторной постановкой в очередь;
// ошибка, обёрнутая в ErrBadMessage, — к Nack без повторной постановки.
func ConsumerMessage(ctx context.Context, ch *amqp.Channel, queueName string, handler func([]byte) error) error {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	sem := make(chan struct{}, 10)
	go func() {
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					return
				}
				sem <- struct{}{}
				go func(delivery amqp.Delivery) {
					defer func() { <-sem }()
					processDelivery(delivery, handler)
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

func processDelivery(delivery amqp.Delivery, handler func([]byte) error) {
	if err := handler(delivery.Body); err != nil {
		requeue := !errors.Is(err, ErrBadMessage)
		if nackErr := delivery.Nack(false, requeue); nackErr != nil {
			log.Printf("failed to nack message: %v", nackErr)
		}
		return
	}
	if ackErr := delivery.Ack(false); ackErr != nil {
		log.Printf("failed to ack message: %v", ackErr)
	}
}
