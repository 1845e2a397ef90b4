package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"thryft-club/internal/catalog"

	amqp "github.com/rabbitmq/amqp091-go"
)

const consumerTag = "activity-service"

type Options struct {
	Queue           string
	DeadLetterQueue string
	Prefetch        int
}

type Consumer struct {
	channel *amqp.Channel
	opts    Options
	logger  *slog.Logger
}

func NewConsumer(conn *amqp.Connection, opts Options, logger *slog.Logger) (*Consumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	for _, queue := range []string{opts.Queue, opts.DeadLetterQueue} {
		if queue == "" {
			continue
		}
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("declare queue %q: %w", queue, err)
		}
	}

	if err := ch.Qos(opts.Prefetch, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("set prefetch %d: %w", opts.Prefetch, err)
	}

	return &Consumer{
		channel: ch,
		opts:    opts,
		logger:  logger,
	}, nil
}

func (c *Consumer) Listen(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		c.opts.Queue,
		consumerTag,
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume queue %q: %w", c.opts.Queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := settle(ctx, c.logger, msg.Body, msg, c.deadLetter()); err != nil {
				c.logger.Error("settle message failed", "delivery_tag", msg.DeliveryTag, "error", err)
			}
		}
	}
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

type deadLetterFunc func(ctx context.Context, body []byte) error

// settle acks handled events. An event that cannot be handled will never
// succeed on redelivery, so it is parked with deadLetter and acked, or
// rejected without requeue when parking is unavailable or fails. The one
// exception is a parking failure during shutdown.
func settle(ctx context.Context, logger *slog.Logger, body []byte, ack acknowledger, deadLetter deadLetterFunc) error {
	err := handleEvent(logger, body)
	if err == nil {
		return ack.Ack(false)
	}
	logger.Error("handle message failed", "error", err)

	if deadLetter != nil {
		dlErr := deadLetter(ctx, body)
		if dlErr == nil {
			return ack.Ack(false)
		}
		logger.Error("dead-letter message failed", "error", dlErr)
		if ctx.Err() != nil {
			// Shutting down: hand it back so the next run can park it.
			return ack.Nack(false, true)
		}
	}

	return ack.Nack(false, false)
}

func (c *Consumer) deadLetter() deadLetterFunc {
	if c.opts.DeadLetterQueue == "" {
		return nil
	}
	return func(ctx context.Context, body []byte) error {
		return c.channel.PublishWithContext(ctx, "", c.opts.DeadLetterQueue, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
	}
}

func handleEvent(logger *slog.Logger, body []byte) error {
	var event catalog.CatalogEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}

	switch event.EventType {
	case catalog.EventFavoriteToggled:
		isFavorite := false
		if event.IsFavorite != nil {
			isFavorite = *event.IsFavorite
		}
		logger.Info("favorite toggled",
			"product_id", event.ProductID,
			"title", event.Title,
			"is_favorite", isFavorite,
			"timestamp", event.Timestamp,
		)
	case catalog.EventListingSubmitted:
		logger.Info("listing submitted",
			"listing_id", event.ListingID,
			"title", event.Title,
			"timestamp", event.Timestamp,
		)
	default:
		logger.Warn("unknown catalog event",
			"event_type", event.EventType,
			"timestamp", event.Timestamp,
		)
	}

	return nil
}

func (c *Consumer) Close() error {
	return c.channel.Close()
}
