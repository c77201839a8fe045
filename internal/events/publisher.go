package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bookstore/library/internal/db"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	exchangeName = "library.events"
	exchangeType = "topic"

	// Event types
	EventTypeBookCreated = "library.book.created"
	EventTypeBookUpdated = "library.book.updated"
	EventTypeBookDeleted = "library.book.deleted"

	eventVersion = "1.0.0"

	// Retry configuration
	maxRetries     = 3
	initialBackoff = 100 * time.Millisecond
	maxBackoff     = 5 * time.Second
	confirmTimeout = 5 * time.Second
)

// Event represents a domain event
type Event struct {
	EventID      string                 `json:"event_id"`
	EventType    string                 `json:"event_type"`
	EventVersion string                 `json:"event_version"`
	Timestamp    string                 `json:"timestamp"`
	Payload      map[string]interface{} `json:"payload"`
}

// Publisher handles event publishing to RabbitMQ
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	log     *zap.Logger
}

// NewPublisher creates a new event publisher
func NewPublisher(url string, log *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(
		exchangeName,
		exchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	if err := channel.Confirm(false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	log.Info("Connected to RabbitMQ", zap.String("exchange", exchangeName))

	return &Publisher{
		conn:    conn,
		channel: channel,
		log:     log,
	}, nil
}

// PublishBookCreated publishes a book created event
func (p *Publisher) PublishBookCreated(ctx context.Context, book *db.Book) error {
	return p.publishWithRetry(ctx, newEvent(EventTypeBookCreated, bookPayload(book)))
}

// PublishBookUpdated publishes a book updated event carrying the full record
func (p *Publisher) PublishBookUpdated(ctx context.Context, book *db.Book) error {
	return p.publishWithRetry(ctx, newEvent(EventTypeBookUpdated, bookPayload(book)))
}

// PublishBookDeleted publishes a book deleted event
func (p *Publisher) PublishBookDeleted(ctx context.Context, id int64) error {
	return p.publishWithRetry(ctx, newEvent(EventTypeBookDeleted, map[string]interface{}{"id": id}))
}

func newEvent(eventType string, payload map[string]interface{}) Event {
	return Event{
		EventID:      uuid.New().String(),
		EventType:    eventType,
		EventVersion: eventVersion,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Payload:      payload,
	}
}

func bookPayload(book *db.Book) map[string]interface{} {
	payload := map[string]interface{}{
		"id":              book.ID,
		"title":           book.Title,
		"author":          book.Author,
		"isbn":            book.ISBN,
		"publicationYear": book.PublicationYear,
		"genre":           book.Genre,
		"description":     nil,
	}
	if book.Description != nil {
		payload["description"] = *book.Description
	}
	return payload
}

// publishWithRetry publishes an event with exponential backoff retry
func (p *Publisher) publishWithRetry(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		p.log.Error("Failed to marshal event", zap.Error(err))
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	backoff := initialBackoff
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
				if backoff > maxBackoff {
					backoff = maxBackoff
				}
			}
		}

		confirmation, err := p.channel.PublishWithDeferredConfirmWithContext(
			ctx,
			exchangeName,
			event.EventType,
			false, // mandatory
			false, // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Timestamp:    time.Now(),
				MessageId:    event.EventID,
				Body:         body,
				Headers: amqp.Table{
					"event_type":    event.EventType,
					"event_version": event.EventVersion,
				},
			},
		)
		if err != nil {
			lastErr = err
			p.log.Warn("Failed to publish event, retrying",
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			continue
		}

		confirmCtx, cancel := context.WithTimeout(ctx, confirmTimeout)
		acked, err := confirmation.WaitContext(confirmCtx)
		cancel()
		switch {
		case err == nil && acked:
			p.log.Info("Event published",
				zap.String("event_id", event.EventID),
				zap.String("event_type", event.EventType),
			)
			return nil
		case err == nil:
			lastErr = fmt.Errorf("event not acknowledged")
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			lastErr = fmt.Errorf("confirmation timeout: %w", err)
		}

		p.log.Warn("Event publish not confirmed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr),
		)
	}

	p.log.Error("Failed to publish event after retries",
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType),
		zap.Int("attempts", maxRetries),
		zap.Error(lastErr),
	)
	return fmt.Errorf("failed to publish event after %d attempts: %w", maxRetries, lastErr)
}

// IsHealthy checks if the publisher connection is healthy
func (p *Publisher) IsHealthy() bool {
	return p.conn != nil && !p.conn.IsClosed()
}

// Close closes the publisher connection
func (p *Publisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.log.Error("Failed to close channel", zap.Error(err))
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			p.log.Error("Failed to close connection", zap.Error(err))
			return err
		}
	}
	p.log.Info("Publisher closed")
	return nil
}
