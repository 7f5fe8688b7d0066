package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInsufficientStock = errors.New("insufficient stock")

type Item struct {
	ProductID string          `json:"productId,omitempty"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

func (it Item) Total() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

type Order struct {
	ID       string          `json:"id"`
	Customer string          `json:"customer"`
	Phone    string          `json:"phone"`
	Address  string          `json:"address"`
	District string          `json:"district,omitempty"`
	Items    []Item          `json:"products"`
	Status   Status          `json:"status"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Amount   decimal.Decimal `json:"amount"`
	Date     time.Time       `json:"date"`
}

// DepletedLine is a requested line the current stock cannot cover.
type DepletedLine struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// StockError lists every line that could not be reserved. It matches ErrInsufficientStock.
type StockError struct {
	Depleted []DepletedLine
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %d item(s)", len(e.Depleted))
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

type ListFilter struct {
	Status   Status
	Page     int
	PageSize int
}

const DefaultPageSize = 10

func (f ListFilter) normalized() ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	return f
}

type Page struct {
	Orders   []Order `json:"orders"`
	Total    int     `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"pageSize"`
}
