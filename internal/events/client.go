// Package events publishes and consumes household activity over AMQP.
package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const publishTimeout = 5 * time.Second

var ErrChannelClosed = errors.New("the AMQP delivery channel was closed")

// Publisher publishes activity messages.
type Publisher interface {
	PublishActivity(ctx context.Context, msg ActivityMessage) error
}

// Handler processes one activity message. Returning an error requeues it.
type Handler func(ctx context.Context, msg ActivityMessage) error

// Client publishes to and consumes from a durable queue bound to a direct
// exchange.
type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

// NewClient connects to the broker and declares the exchange and queue.
func NewClient(url, exchangeName, queueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = c.channel.QueueBind(
		c.queueName,    // queue name
		RoutingKey,     // routing key
		c.exchangeName, // exchange
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// PublishActivity publishes a persistent activity message.
func (c *Client) PublishActivity(ctx context.Context, msg ActivityMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		RoutingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    msg.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	log.Debug().
		Str("household", msg.HouseholdID.String()).
		Str("month", msg.Month.String()).
		Str("reason", string(msg.Reason)).
		Msg("Published household activity")

	return nil
}

// Consume hands every delivery to the handler until the context is done.
func (c *Client) Consume(ctx context.Context, handler Handler) error {
	deliveries, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	log.Info().Str("queue", c.queueName).Msg("Consuming household activity")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return ErrChannelClosed
			}

			process(ctx, d, handler)
		}
	}
}

// acknowledger is the part of an amqp091.Delivery used after processing.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// retryDelay is the wait before a failed message is requeued.
var retryDelay = 5 * time.Second

func process(ctx context.Context, d amqp091.Delivery, handler Handler) {
	handle(ctx, d.Body, d.Redelivered, d, handler)
}

// handle decodes and processes one message body. Malformed messages are
// dropped. A failed message is requeued once after retryDelay and dropped
// when it fails again.
func handle(ctx context.Context, body []byte, redelivered bool, ack acknowledger, handler Handler) {
	msg, err := ActivityMessageFromJSON(body)
	if err != nil {
		log.Error().Err(err).Msg("Dropping malformed activity message")
		_ = ack.Nack(false, false)
		return
	}

	err = handler(ctx, msg)
	if err == nil {
		_ = ack.Ack(false)
		return
	}

	if redelivered {
		log.Error().Err(err).Str("household", msg.HouseholdID.String()).Msg("Dropping activity message that failed again")
		_ = ack.Nack(false, false)
		return
	}

	log.Warn().Err(err).Str("household", msg.HouseholdID.String()).Dur("delay", retryDelay).Msg("Requeueing activity message")

	timer := time.NewTimer(retryDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}

	_ = ack.Nack(false, true)
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
