package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Myx/internal/domain"
)

// ErrNotConnected — канал RabbitMQ недоступен.
var ErrNotConnected = errors.New("no amqp channel available")

// MessageType — тип сообщения.
type MessageType string

// Типы сообщений.
const (
	MessageTypeExecutionEvent MessageType = "execution.event"
	MessageTypeFlowRun        MessageType = "flow.run"
)

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn     *Connection
	exchange Exchange
	logger   *slog.Logger
}

// NewPublisher создаёт новый Publisher. Пустой exchange — DefaultExchange.
func NewPublisher(conn *Connection, exchange Exchange, logger *slog.Logger) *Publisher {
	if exchange == "" {
		exchange = DefaultExchange
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		conn:     conn,
		exchange: exchange,
		logger:   logger,
	}
}

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// EventPayload — payload события журнала выполнения.
type EventPayload struct {
	RunID      *uuid.UUID `json:"run_id,omitempty"`
	TS         time.Time  `json:"ts"`
	Treatment  string     `json:"treatment"`
	Status     string     `json:"status"`
	InputDir   string     `json:"input_dir"`
	OutputDir  string     `json:"output_dir"`
	DurationMS *float64   `json:"duration_ms,omitempty"`
	Error      string     `json:"error,omitempty"`
	TimeFrom   *time.Time `json:"time_from,omitempty"`
	TimeTo     *time.Time `json:"time_to,omitempty"`
}

// NewEventPayload строит payload из события.
func NewEventPayload(ev domain.ExecutionEvent) EventPayload {
	p := EventPayload{
		TS:        ev.Timestamp.UTC(),
		Treatment: ev.Treatment,
		Status:    string(ev.Status),
		InputDir:  ev.InputDir,
		OutputDir: ev.OutputDir,
		Error:     ev.Error,
		TimeFrom:  ev.Window.From,
		TimeTo:    ev.Window.To,
	}
	if ev.RunID != uuid.Nil {
		id := ev.RunID
		p.RunID = &id
	}
	if ms, ok := ev.DurationMS(); ok {
		p.DurationMS = &ms
	}
	return p
}

// Publish публикует сообщение в exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(p.exchange), // exchange
			string(routingKey), // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", p.exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", p.exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)

		return nil
	})
}

// PublishEvent публикует событие журнала выполнения.
func (p *Publisher) PublishEvent(ctx context.Context, ev domain.ExecutionEvent) error {
	msg := newMessage(MessageTypeExecutionEvent, NewEventPayload(ev))
	return p.Publish(ctx, EventRoutingKey(string(ev.Status)), msg)
}

// PublishRun публикует итог запуска flow.
func (p *Publisher) PublishRun(ctx context.Context, run *domain.FlowRun) error {
	msg := newMessage(MessageTypeFlowRun, run)
	return p.Publish(ctx, RunRoutingKey(string(run.Status)), msg)
}

func newMessage(t MessageType, payload any) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      t,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}
