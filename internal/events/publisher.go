package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/order"
)

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type sequencer interface {
	Next(ctx context.Context, partition string) (int64, error)
}

type Publisher struct {
	ch                 channel
	seqRepo            sequencer
	producerIdentifier string
	now                func() time.Time
}

type PublisherOptions struct {
	Producer string
}

func NewPublisher(conn *amqp.Connection, seqRepo sequencer, opts PublisherOptions) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareEventsExchange(ch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}

	return newPublisher(ch, seqRepo, opts), nil
}

func newPublisher(ch channel, seqRepo sequencer, opts PublisherOptions) *Publisher {
	producer := opts.Producer
	if producer == "" {
		producer = DefaultProducer
	}
	return &Publisher{
		ch:                 ch,
		seqRepo:            seqRepo,
		producerIdentifier: producer,
		now:                func() time.Time { return time.Now().UTC() },
	}
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

type EventMeta struct {
	CorrelationID string
	CausationID   string
	PartitionKey  string
}

// metaFor builds event metadata for a partition, carrying the request correlation id when present.
func metaFor(ctx context.Context, partitionKey string) EventMeta {
	cid := middleware.GetCorrelationID(ctx)
	if cid == "" {
		cid = uuid.NewString()
	}
	return EventMeta{CorrelationID: cid, PartitionKey: partitionKey}
}

func (p *Publisher) PublishOrderPlaced(ctx context.Context, o order.Order) error {
	return p.publish(ctx, metaFor(ctx, o.ID), eventRoute{
		name:       EventTypeOrderPlaced,
		schema:     orderPlacedSchema,
		routingKey: OrderPlacedRoutingKey,
	}, orderPlacedPayload(o))
}

func (p *Publisher) PublishOrderStatusChanged(ctx context.Context, o order.Order, previous order.Status) error {
	payload := OrderStatusChangedPayload{
		OrderID:   o.ID,
		Previous:  string(previous),
		Status:    string(o.Status),
		ChangedAt: p.now(),
	}
	return p.publish(ctx, metaFor(ctx, o.ID), eventRoute{
		name:       EventTypeOrderStatusChanged,
		schema:     orderStatusChangedSchema,
		routingKey: OrderStatusChangedRoutingKey,
	}, payload)
}

func (p *Publisher) PublishProductCreated(ctx context.Context, pr catalog.Product) error {
	return p.publish(ctx, metaFor(ctx, pr.ID), eventRoute{
		name:       EventTypeProductCreated,
		schema:     productCreatedSchema,
		routingKey: ProductCreatedRoutingKey,
	}, productCreatedPayload(pr))
}

type eventRoute struct {
	name       string
	schema     string
	routingKey string
}

func (p *Publisher) publish(ctx context.Context, meta EventMeta, route eventRoute, payload any) error {
	seq, err := p.seqRepo.Next(ctx, meta.PartitionKey)
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}

	env, err := newEnvelope(meta, seq, p.producerIdentifier, route, payload, p.now())
	if err != nil {
		return err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", route.name, err)
	}

	return p.publishJSON(ctx, route.routingKey, body)
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

func newEnvelope(meta EventMeta, seq int64, producer string, route eventRoute, payload any, occurredAt time.Time) (EventEnvelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return EventEnvelope{}, fmt.Errorf("marshal %s payload: %w", route.name, err)
	}
	return EventEnvelope{
		EventName:     route.name,
		EventVersion:  1,
		EventID:       uuid.NewString(),
		CorrelationID: meta.CorrelationID,
		CausationID:   meta.CausationID,
		Producer:      producer,
		PartitionKey:  meta.PartitionKey,
		Sequence:      seq,
		OccurredAt:    occurredAt,
		Schema:        route.schema,
		Payload:       raw,
	}, nil
}
