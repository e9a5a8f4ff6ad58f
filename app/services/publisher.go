package services

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
)

// getRequestIDFromContext extracts request ID from context (avoiding import cycle)
func getRequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value("request_id").(string); ok {
		return requestID
	}
	return ""
}

// EventPublisher is the minimal surface AuthService needs to publish user
// lifecycle events. A nil publisher disables publishing.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, username, email string) error
}

// RabbitMQPublisher publishes events to the todo.events topic exchange.
type RabbitMQPublisher struct {
	ch *amqp.Channel
}

func NewRabbitMQPublisher(ch *amqp.Channel) *RabbitMQPublisher {
	return &RabbitMQPublisher{ch: ch}
}

type userRegisteredMessage struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// PublishUserRegistered publishes a user.registered event, carrying the
// request ID for tracing when one is present.
func (p *RabbitMQPublisher) PublishUserRegistered(ctx context.Context, username, email string) error {
	msg := userRegisteredMessage{
		Type:     "user_registered",
		Username: username,
		Email:    email,
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	headers := make(amqp.Table)
	if requestID := getRequestIDFromContext(ctx); requestID != "" {
		headers["X-Request-ID"] = requestID
	}

	return p.ch.PublishWithContext(
		ctx,
		"todo.events",     // exchange
		"user.registered", // routing key
		false,             // mandatory
		false,             // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
			Headers:     headers,
		},
	)
}
