package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/order"
)

type OrderLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type OrderPlacedPayload struct {
	OrderID  string          `json:"orderId"`
	Customer string          `json:"customer"`
	Phone    string          `json:"phone"`
	District string          `json:"district,omitempty"`
	Items    []OrderLine     `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Amount   decimal.Decimal `json:"amount"`
	PlacedAt time.Time       `json:"placedAt"`
}

type OrderStatusChangedPayload struct {
	OrderID   string    `json:"orderId"`
	Previous  string    `json:"previousStatus"`
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changedAt"`
}

type ProductCreatedPayload struct {
	ProductID  string          `json:"productId"`
	Name       string          `json:"name"`
	CategoryID string          `json:"category"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
	Image      string          `json:"image"`
	CreatedBy  string          `json:"createdBy,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func orderPlacedPayload(o order.Order) OrderPlacedPayload {
	p := OrderPlacedPayload{
		OrderID:  o.ID,
		Customer: o.Customer,
		Phone:    o.Phone,
		District: o.District,
		Items:    make([]OrderLine, 0, len(o.Items)),
		Subtotal: o.Subtotal,
		Shipping: o.Shipping,
		Amount:   o.Amount,
		PlacedAt: o.Date.UTC(),
	}
	for _, it := range o.Items {
		p.Items = append(p.Items, OrderLine{ProductID: it.ProductID, Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}
	return p
}

func productCreatedPayload(pr catalog.Product) ProductCreatedPayload {
	return ProductCreatedPayload{
		ProductID:  pr.ID,
		Name:       pr.Name,
		CategoryID: pr.CategoryID,
		Price:      pr.Price,
		Stock:      pr.Stock,
		Image:      pr.Image,
		CreatedBy:  pr.CreatedBy,
		CreatedAt:  pr.CreatedAt.UTC(),
	}
}
