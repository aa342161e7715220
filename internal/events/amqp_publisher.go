package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher delivers an encoded event under a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
	Close() error
}

// AMQPPublisher publishes to a durable topic exchange over one lazily dialed connection.
// A failed publish drops the connection so the next call redials.
type AMQPPublisher struct {
	url      string
	exchange string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPPublisher creates a publisher. No connection is made until the first Publish.
func NewAMQPPublisher(url, exchange string) *AMQPPublisher {
	return &AMQPPublisher{url: url, exchange: exchange}
}

func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureChannel(); err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, pub); err != nil {
		p.reset()
		return fmt.Errorf("amqp publish: %w", err)
	}
	return nil
}

func (p *AMQPPublisher) ensureChannel() error {
	if p.ch != nil && !p.ch.IsClosed() {
		return nil
	}
	p.reset()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("amqp exchange declare: %w", err)
	}
	p.conn = conn
	p.ch = ch
	return nil
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Close releases the broker connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}

// LogPublisher stands in for the broker when none is configured.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher logs every event at debug level.
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, routingKey string, body []byte) error {
	if routingKey == "" {
		return errors.New("empty routing key")
	}
	p.logger.Debug("event", zap.String("routing_key", routingKey), zap.ByteString("body", body))
	return nil
}

func (p *LogPublisher) Close() error { return nil }
