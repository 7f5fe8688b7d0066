// Package checkout turns a shopper's cart into a placed order.
package checkout

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/order"
)

type Carts interface {
	Get(ctx context.Context, sessionID string) (cart.Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

type ShippingRates interface {
	ChargeFor(ctx context.Context, district string) (int, error)
}

type OrderPlacer interface {
	Place(ctx context.Context, o *order.Order) error
}

type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, o order.Order) error
}

// Details is what the shopper enters on the checkout form.
type Details struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	District string `json:"district"`
}

func (d Details) trimmed() Details {
	return Details{
		Name:     strings.TrimSpace(d.Name),
		Phone:    strings.TrimSpace(d.Phone),
		Address:  strings.TrimSpace(d.Address),
		District: strings.TrimSpace(d.District),
	}
}

func (d Details) validate() error {
	switch {
	case d.Name == "":
		return apperr.Invalid("Customer name is required.")
	case d.Phone == "":
		return apperr.Invalid("Phone number is required.")
	case d.Address == "":
		return apperr.Invalid("Delivery address is required.")
	}
	return nil
}

type Service struct {
	carts    Carts
	shipping ShippingRates
	orders   OrderPlacer
	events   EventPublisher
	logger   *log.Logger
	now      func() time.Time
}

func NewService(carts Carts, shipping ShippingRates, orders OrderPlacer, events EventPublisher, logger *log.Logger) *Service {
	return &Service{
		carts:    carts,
		shipping: shipping,
		orders:   orders,
		events:   events,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Place reserves stock for the session's cart and records a Pending order.
// The cart is only cleared once the order is stored.
func (s *Service) Place(ctx context.Context, sessionID string, d Details) (order.Order, error) {
	d = d.trimmed()
	if err := d.validate(); err != nil {
		return order.Order{}, err
	}

	c, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return order.Order{}, fmt.Errorf("load cart: %w", err)
	}
	if c.IsEmpty() {
		return order.Order{}, apperr.Invalid("Your cart is empty.")
	}

	charge, err := s.shipping.ChargeFor(ctx, d.District)
	if err != nil {
		return order.Order{}, fmt.Errorf("shipping charge: %w", err)
	}

	o := buildOrder(c, d, decimal.NewFromInt(int64(charge)), s.now())
	if err := s.orders.Place(ctx, &o); err != nil {
		return order.Order{}, err
	}

	if err := s.carts.Clear(ctx, sessionID); err != nil {
		s.logger.Printf("checkout: clear cart session=%s order=%s: %v", sessionID, o.ID, err)
	}
	if err := s.events.PublishOrderPlaced(ctx, o); err != nil {
		s.logger.Printf("publish OrderPlaced failed (order=%s): %v", o.ID, err)
	}
	return o, nil
}

func buildOrder(c cart.Cart, d Details, shipping decimal.Decimal, now time.Time) order.Order {
	o := order.Order{
		Customer: d.Name,
		Phone:    d.Phone,
		Address:  d.Address,
		District: d.District,
		Status:   order.StatusPending,
		Items:    make([]order.Item, 0, len(c.Lines)),
		Subtotal: c.Subtotal(),
		Shipping: shipping,
		Date:     now,
	}
	for _, l := range c.Lines {
		o.Items = append(o.Items, order.Item{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Quantity:  l.Quantity,
			Price:     l.Product.Price,
		})
	}
	o.Amount = o.Subtotal.Add(o.Shipping)
	return o
}
