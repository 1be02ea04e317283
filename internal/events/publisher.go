package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/points-mall/cart-service/internal/cart"
	"github.com/points-mall/cart-service/internal/contracts"
)

// Publisher emits CheckoutSelected events to the shared topic exchange.
// Partitioning is per user so a consumer sees one user's checkouts in order.
type Publisher struct {
	ch       *amqp.Channel
	seqRepo  *SequenceRepository
	producer string
}

type PublisherOptions struct {
	Producer string
}

func NewPublisher(conn *amqp.Connection, seqRepo *SequenceRepository, opts PublisherOptions) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareEventsExchange(ch); err != nil {
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}

	producer := opts.Producer
	if producer == "" {
		producer = contracts.CartServiceProducer
	}

	return &Publisher{ch: ch, seqRepo: seqRepo, producer: producer}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) PublishCheckoutSelected(ctx context.Context, userID int64, sel cart.CheckoutSelection) error {
	partitionKey := strconv.FormatInt(userID, 10)

	seq, err := p.seqRepo.NextSequence(ctx, partitionKey)
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}

	env := contracts.BuildCheckoutSelectedEvent(userID, sel, contracts.EnvelopeOptions{
		PartitionKey: partitionKey,
		Sequence:     seq,
		Producer:     p.producer,
	})

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal CheckoutSelected envelope: %w", err)
	}

	return p.publishJSON(ctx, CheckoutSelectedRoutingKey, body)
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
