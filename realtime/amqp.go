package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange is the fanout exchange every event is copied to.
const Exchange = "tpv.events"

const publishTimeout = 5 * time.Second

// AMQPPublisher copies events to a RabbitMQ fanout exchange, routed by event name.
type AMQPPublisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  *slog.Logger
	mu   sync.Mutex
}

func DialAMQP(url string, log *slog.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(Exchange, "fanout", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, log: log}, nil
}

// Publish never fails the caller; errors are logged.
func (p *AMQPPublisher) Publish(ctx context.Context, event string, payload any) {
	body, err := json.Marshal(Message{Event: event, Data: payload})
	if err != nil {
		p.log.Error("encode event", "event", event, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(ctx, Exchange, event, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		ContentType:  "application/json",
		Body:         body,
	})
	if err != nil {
		p.log.Error("publish event", "action", "amqp_publish", "event", event, "error", err)
	}
}

func (p *AMQPPublisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// Publisher is anything events can be handed to.
type Publisher interface {
	Publish(ctx context.Context, event string, payload any)
}

// Multi hands each event to every publisher in order.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event string, payload any) {
	for _, p := range m {
		p.Publish(ctx, event, payload)
	}
}
