package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/KRojowsky/beta-schoolweb/internal/models"
)

// EventPublisher feeds the notification and video-room collaborators.
// Both events are fire-and-forget: a publish failure is logged by the
// caller and never fails the originating request.
type EventPublisher interface {
	PublishLessonScheduled(ctx context.Context, event *models.LessonScheduledEvent) error
	PublishFeedbackSubmitted(ctx context.Context, event *models.FeedbackSubmittedEvent) error
	Close() error
}

type rabbitMQPublisher struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchange     string
	scheduledKey string
	feedbackKey  string
	logger       zerolog.Logger
}

func NewRabbitMQPublisher(url, exchange, scheduledKey, feedbackKey string, logger zerolog.Logger) (EventPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	logger.Info().
		Str("exchange", exchange).
		Str("scheduled_key", scheduledKey).
		Str("feedback_key", feedbackKey).
		Msg("Connected to RabbitMQ")

	return &rabbitMQPublisher{
		conn:         conn,
		channel:      channel,
		exchange:     exchange,
		scheduledKey: scheduledKey,
		feedbackKey:  feedbackKey,
		logger:       logger,
	}, nil
}

func (c *rabbitMQPublisher) PublishLessonScheduled(ctx context.Context, event *models.LessonScheduledEvent) error {
	if err := c.publish(ctx, c.scheduledKey, event); err != nil {
		return err
	}

	c.logger.Info().
		Str("lesson_id", event.LessonID).
		Str("invite_code", event.InviteCode).
		Msg("Lesson scheduled event published")

	return nil
}

func (c *rabbitMQPublisher) PublishFeedbackSubmitted(ctx context.Context, event *models.FeedbackSubmittedEvent) error {
	if err := c.publish(ctx, c.feedbackKey, event); err != nil {
		return err
	}

	c.logger.Info().
		Str("lesson_id", event.LessonID).
		Str("outcome", event.Outcome).
		Msg("Feedback submitted event published")

	return nil
}

func (c *rabbitMQPublisher) publish(ctx context.Context, routingKey string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		publishCtx,
		c.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
		},
	)

	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

func (c *rabbitMQPublisher) Close() error {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Failed to close RabbitMQ channel")
		}
	}

	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	return nil
}
