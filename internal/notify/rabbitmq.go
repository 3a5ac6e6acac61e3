package notify

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/events"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const publishTimeout = 5 * time.Second

// AMQPPublisher is satisfied by *amqp.Channel.
type AMQPPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Forwarder copies domain events onto a durable RabbitMQ queue as persistent
// JSON messages. The event type travels in the message Type property.
type Forwarder struct {
	publisher AMQPPublisher
	queue     string
	conn      *amqp.Connection
	channel   *amqp.Channel
	logger    *zerolog.Logger
}

// DialForwarder connects to url and declares queue as durable.
func DialForwarder(url, queue string, logger *zerolog.Logger) (*Forwarder, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	f := NewForwarder(ch, queue, logger)
	f.conn = conn
	f.channel = ch
	return f, nil
}

func NewForwarder(publisher AMQPPublisher, queue string, logger *zerolog.Logger) *Forwarder {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Forwarder{publisher: publisher, queue: queue, logger: logger}
}

// Subscribe registers the forwarder for every event type.
func (f *Forwarder) Subscribe(bus *events.EventBus) {
	bus.SubscribeAll(f.Handle)
}

// Handle publishes one event to the default exchange, routed to the queue.
func (f *Forwarder) Handle(event *events.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.CreatedAt.UTC(),
		Type:         event.Type,
		Body:         event.Payload,
	}
	if err := f.publisher.PublishWithContext(ctx, "", f.queue, false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq publish %s: %w", event.Type, err)
	}
	f.logger.Debug().Str("event_type", event.Type).Str("queue", f.queue).Msg("event forwarded")
	return nil
}

// Close releases the channel and connection opened by DialForwarder.
func (f *Forwarder) Close() error {
	if f.channel != nil {
		_ = f.channel.Close()
	}
	if f.conn != nil {
		return f.conn.Close()
	}
	return nil
}
