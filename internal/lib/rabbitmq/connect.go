// Package rabbitmq wraps the AMQP connection, topology, publishing and consuming
// of notification events.
package rabbitmq

import (
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Connect dials url. A failed dial is retried up to attempts times in total,
// sleeping delay between tries.
func Connect(url string, attempts int, delay time.Duration) (*amqp.Connection, error) {
	const op = "rabbitmq.Connect"

	var lastErr error
	for i := 0; i < max(attempts, 1); i++ {
		if i > 0 {
			time.Sleep(delay)
		}
		conn, err := amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%s: after %d attempts: %w", op, max(attempts, 1), lastErr)
}

// SetupChannel opens a channel with a prefetch of ten and declares the event
// topology: the notifications exchange, every queue in queues bound to it and
// the dead-letter queue collecting deliveries rejected twice.
func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: open channel: %w", op, err)
	}
	if err := declareTopology(ch, queues); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ch, nil
}

func declareTopology(ch *amqp.Channel, queues []QueueConfig) error {
	if err := ch.Qos(10, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}

	for _, exchange := range []string{Exchange, DeadLetterExchange} {
		if err := ch.ExchangeDeclare(exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare exchange %s: %w", exchange, err)
		}
	}

	if _, err := ch.QueueDeclare(QueueFailed, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", QueueFailed, err)
	}
	for _, q := range queues {
		if err := ch.QueueBind(QueueFailed, q.RoutingKey, DeadLetterExchange, false, nil); err != nil {
			return fmt.Errorf("bind %s to %s: %w", QueueFailed, q.RoutingKey, err)
		}
	}

	for _, q := range queues {
		args := amqp.Table{"x-dead-letter-exchange": DeadLetterExchange}
		if _, err := ch.QueueDeclare(q.QueueName, true, false, false, false, args); err != nil {
			return fmt.Errorf("declare queue %s: %w", q.QueueName, err)
		}
		if err := ch.QueueBind(q.QueueName, q.RoutingKey, Exchange, false, nil); err != nil {
			return fmt.Errorf("bind %s to %s: %w", q.QueueName, q.RoutingKey, err)
		}
	}
	return nil
}
