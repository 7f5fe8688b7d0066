package events

import (
	"context"
	"log"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/order"
)

// NoopPublisher logs events instead of sending them. Used when PUBLISH_EVENTS=false.
type NoopPublisher struct {
	Logger *log.Logger
}

func (n NoopPublisher) PublishOrderPlaced(_ context.Context, o order.Order) error {
	n.Logger.Printf("events disabled: skip %s order=%s", EventTypeOrderPlaced, o.ID)
	return nil
}

func (n NoopPublisher) PublishOrderStatusChanged(_ context.Context, o order.Order, previous order.Status) error {
	n.Logger.Printf("events disabled: skip %s order=%s %s->%s", EventTypeOrderStatusChanged, o.ID, previous, o.Status)
	return nil
}

func (n NoopPublisher) PublishProductCreated(_ context.Context, p catalog.Product) error {
	n.Logger.Printf("events disabled: skip %s product=%s", EventTypeProductCreated, p.ID)
	return nil
}
