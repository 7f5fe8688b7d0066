package events

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange = "ecommerce.events"

	OrderPlacedRoutingKey        = "order.placed.v1"
	OrderStatusChangedRoutingKey = "order.status_changed.v1"
	ProductCreatedRoutingKey     = "product.created.v1"

	EventTypeOrderPlaced        = "OrderPlaced"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
	EventTypeProductCreated     = "ProductCreated"

	orderPlacedSchema        = "ecommerce.order.placed.v1"
	orderStatusChangedSchema = "ecommerce.order.status_changed.v1"
	productCreatedSchema     = "ecommerce.product.created.v1"

	DefaultProducer = "storefront-service"
)

func declareEventsExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}

// Dial connects to the broker at url.
func Dial(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	return conn, nil
}
