package notifier

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"tourbook/internal/pkg/errs"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Message struct {
	ID         string
	RoutingKey string
	Kind       string
	Body       []byte
	CreatedAt  time.Time
}

type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

type amqpConnection interface {
	Channel() (amqpChannel, error)
	IsClosed() bool
	Close() error
}

type dialFunc func(url string) (amqpConnection, error)

type connAdapter struct {
	*amqp.Connection
}

func (c connAdapter) Channel() (amqpChannel, error) {
	return c.Connection.Channel()
}

func dialAMQP(url string) (amqpConnection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return connAdapter{conn}, nil
}

// AMQPPublisher publishes persistent JSON messages to a durable topic exchange.
// A connection or channel closed by the broker is reopened on the next publish.
type AMQPPublisher struct {
	mu       sync.Mutex
	dial     dialFunc
	url      string
	exchange string
	conn     amqpConnection
	ch       amqpChannel
	closed   bool
}

func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	return newAMQPPublisher(dialAMQP, url, exchange)
}

func newAMQPPublisher(dial dialFunc, url, exchange string) (*AMQPPublisher, error) {
	p := &AMQPPublisher{dial: dial, url: url, exchange: exchange}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

// connect reuses whatever part of the session is still open. Callers hold mu.
func (p *AMQPPublisher) connect() error {
	if p.ch != nil && !p.ch.IsClosed() {
		return nil
	}
	p.ch = nil

	if p.conn == nil || p.conn.IsClosed() {
		conn, err := p.dial(p.url)
		if err != nil {
			p.conn = nil
			return errs.Wrap(err, "dial rabbitmq")
		}
		p.conn = conn
	}

	ch, err := p.conn.Channel()
	if err != nil {
		p.dropConnection()
		return errs.Wrap(err, "open channel")
	}
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		p.dropConnection()
		return errs.Wrap(err, "declare exchange")
	}
	p.ch = ch
	return nil
}

func (p *AMQPPublisher) dropConnection() {
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn = nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, msg Message) error {
	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return errs.Wrap(amqp.ErrClosed, "publisher closed")
	}
	if err := p.connect(); err != nil {
		return err
	}

	err := p.publish(ctx, msg)
	if err == nil || !p.ch.IsClosed() {
		return errs.Wrap(err, "publish")
	}

	// the broker closed the channel under us; retry once on a fresh one
	slog.WarnContext(ctx, "amqp channel closed, reconnecting",
		slog.String("exchange", p.exchange),
		slog.Any("error", err),
	)
	if err := p.connect(); err != nil {
		return err
	}
	return errs.Wrap(p.publish(ctx, msg), "publish")
}

func (p *AMQPPublisher) publish(ctx context.Context, msg Message) error {
	return p.ch.PublishWithContext(ctx, p.exchange, msg.RoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.ID,
		Type:         msg.Kind,
		Timestamp:    msg.CreatedAt,
		Body:         msg.Body,
	})
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		return err
	}
	return nil
}
