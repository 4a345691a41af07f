// Package audit emits fire-and-forget audit events for operator actions
// to a RabbitMQ topic exchange. Auditing must never block or fail the
// action being audited; publish errors are logged and dropped.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"edhumeni-admin/internal/observability"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const exchangeName = "edhumeni.audit"

// Event is one audited operator action.
type Event struct {
	ID         string `json:"id"`
	Action     string `json:"action"` // e.g. "auth.login", "farmer.create"
	Operator   string `json:"operator,omitempty"`
	EntityID   string `json:"entity_id,omitempty"`
	Detail     string `json:"detail,omitempty"`
	OccurredAt int64  `json:"occurred_at"`
}

// Recorder is what handlers depend on. The zero-value NopRecorder
// satisfies it for brokerless deployments and tests.
type Recorder interface {
	Record(ctx context.Context, action, operator, entityID, detail string)
}

// Publisher records events to RabbitMQ.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewPublisher connects to the broker and declares the audit exchange.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare audit exchange: %w", err)
	}

	return &Publisher{conn: conn, channel: ch}, nil
}

// Record publishes the event. Errors are logged, never returned.
func (p *Publisher) Record(ctx context.Context, action, operator, entityID, detail string) {
	event := Event{
		ID:         uuid.New().String(),
		Action:     action,
		Operator:   operator,
		EntityID:   entityID,
		Detail:     detail,
		OccurredAt: time.Now().Unix(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal audit event", slog.String("error", err.Error()))
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(pubCtx,
		exchangeName,
		action, // routing key mirrors the action
		false,  // mandatory
		false,  // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		observability.FromContext(ctx).Error("failed to publish audit event",
			slog.String("action", action),
			slog.String("error", err.Error()))
	}
}

// Close tears down the broker connection.
func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// NopRecorder discards events. Used when no broker is configured.
type NopRecorder struct{}

func (NopRecorder) Record(ctx context.Context, action, operator, entityID, detail string) {}
