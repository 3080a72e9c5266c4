package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// DefaultExchange — topic exchange событий по умолчанию.
const DefaultExchange Exchange = "myx.events"

// RoutingKeyAll — шаблон, совпадающий с любым ключом.
const RoutingKeyAll RoutingKey = "#"

// AuditQueue — очередь, получающая все события exchange.
func AuditQueue(exchange Exchange) Queue {
	return Queue(string(exchange) + ".audit")
}

// EventRoutingKey — ключ для события журнала.
func EventRoutingKey(status string) RoutingKey {
	return RoutingKey("event." + status)
}

// RunRoutingKey — ключ для итога запуска flow.
func RunRoutingKey(status string) RoutingKey {
	return RoutingKey("run." + status)
}

// SetupTopology объявляет exchange и очередь аудита.
func SetupTopology(ctx context.Context, conn *Connection, exchange Exchange) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		// 1. Создаём exchange
		err := ch.ExchangeDeclare(
			string(exchange), // name
			"topic",          // type
			true,             // durable
			false,            // auto-deleted
			false,            // internal
			false,            // no-wait
			nil,              // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", exchange, err)
		}

		// 2. Создаём очередь аудита
		queue := AuditQueue(exchange)
		_, err = ch.QueueDeclare(
			string(queue), // name
			true,          // durable
			false,         // delete when unused
			false,         // exclusive
			false,         // no-wait
			nil,           // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", queue, err)
		}

		// 3. Привязываем очередь ко всем ключам
		err = ch.QueueBind(
			string(queue),         // queue name
			string(RoutingKeyAll), // routing key
			string(exchange),      // exchange
			false,                 // no-wait
			nil,                   // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", queue, exchange, err)
		}

		return nil
	})
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo(exchange Exchange) string {
	return fmt.Sprintf(`
  Myx RabbitMQ Topology:

    %[1]s (topic)
    ├── event.<start|success|error|skip>
    ├── run.<SUCCEEDED|FAILED|NOOP>
    └── %[2]s [routing: #]
  `, exchange, AuditQueue(exchange))
}
