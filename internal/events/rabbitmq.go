// Package events publishes ledger domain events to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/atlasbank/ledger-service/internal/domain"
)

// RabbitMQPublisher implements domain.EventPublisher on a topic exchange.
type RabbitMQPublisher struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
}

// NewRabbitMQPublisher connects to the broker and declares the durable topic
// exchange used for ledger events.
func NewRabbitMQPublisher(url, exchange, routingKey string) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &RabbitMQPublisher{
		conn:       conn,
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
	}, nil
}

// transactionEvent is the wire shape of a transaction.completed event.
type transactionEvent struct {
	EventType            string      `json:"eventType"`
	Reference            string      `json:"reference"`
	SourceAccountID      string      `json:"sourceAccountId"`
	DestinationAccountID string      `json:"destinationAccountId"`
	Amount               eventAmount `json:"amount"`
	Kind                 string      `json:"kind"`
	Status               string      `json:"status"`
	CompletedAt          string      `json:"completedAt,omitempty"`
}

type eventAmount struct {
	Value        string `json:"value"`
	CurrencyCode string `json:"currencyCode"`
}

// PublishTransactionCompleted emits a transaction.completed event.
func (p *RabbitMQPublisher) PublishTransactionCompleted(ctx context.Context, tx *domain.Transaction) error {
	body, err := json.Marshal(newTransactionEvent(tx))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.channel.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

func newTransactionEvent(tx *domain.Transaction) transactionEvent {
	event := transactionEvent{
		EventType:            "transaction.completed",
		Reference:            tx.Reference,
		SourceAccountID:      tx.SourceAccountID.String(),
		DestinationAccountID: tx.DestinationAccountID.String(),
		Amount: eventAmount{
			Value:        tx.Amount.StringFixed(domain.MoneyScale),
			CurrencyCode: string(tx.Currency),
		},
		Kind:   string(tx.Kind),
		Status: string(tx.Status),
	}
	if tx.CompletedAt != nil {
		event.CompletedAt = tx.CompletedAt.UTC().Format(time.RFC3339)
	}
	return event
}

// Close releases the channel and connection.
func (p *RabbitMQPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		p.conn.Close()
		return fmt.Errorf("close channel: %w", err)
	}
	return p.conn.Close()
}
