package eventlog

import (
	"context"

	"github.com/shaiso/Myx/internal/domain"
)

// EventInserter — хранилище событий (repo.EventRepo).
type EventInserter interface {
	Insert(ctx context.Context, ev domain.ExecutionEvent) error
}

// EventPublisher — издатель событий (mq.Publisher).
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev domain.ExecutionEvent) error
}

// PostgresSink зеркалирует события в таблицу execution_events.
func PostgresSink(repo EventInserter) Mirror {
	return Mirror{Name: "postgres", Sink: SinkFunc(repo.Insert)}
}

// MQSink публикует события в RabbitMQ.
func MQSink(pub EventPublisher) Mirror {
	return Mirror{Name: "rabbitmq", Sink: SinkFunc(pub.PublishEvent)}
}
