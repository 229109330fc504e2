package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const ExchangeName = "events"

// Routing keys for the domain events the service emits.
const (
	UserSignedUp = "user.signed_up"
	UserVerified = "user.verified"
	PostCreated  = "post.created"
)

type UserPayload struct {
	UserID string    `json:"user_id"`
	Email  string    `json:"email"`
	At     time.Time `json:"at"`
}

type PostPayload struct {
	PostID string    `json:"post_id"`
	UserID string    `json:"user_id"`
	Title  string    `json:"title"`
	At     time.Time `json:"at"`
}

// Publisher emits fire-and-forget domain events to a topic exchange.
// A nil *Publisher is valid and drops everything, so the service runs
// without a broker configured.
type Publisher struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	logger  *zap.Logger
}

func NewPublisher(url string, logger *zap.Logger) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		ExchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{conn: conn, channel: ch, logger: logger}, nil
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// Publish sends one event. Failures are logged, never surfaced: an
// event is an observer of an operation, not part of it.
func (p *Publisher) Publish(routingKey string, payload any) {
	if p == nil {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("Failed to marshal event", zap.String("routing_key", routingKey), zap.Error(err))
		return
	}

	err = p.channel.Publish(
		ExchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish event", zap.String("routing_key", routingKey), zap.Error(err))
	}
}
