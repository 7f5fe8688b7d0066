// Package customer derives customer records from the order history. Nothing here is stored.
package customer

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/order"
)

type Customer struct {
	Name        string          `json:"name"`
	Phone       string          `json:"phone"`
	TotalOrders int             `json:"totalOrders"`
	TotalSpent  decimal.Decimal `json:"totalSpent"`
	Orders      []order.Order   `json:"orders,omitempty"`
}

type key struct {
	name  string
	phone string
}

// Aggregate groups orders by (name, phone) and sorts the groups by total spent,
// largest first. Groups with equal totals keep the order they were first seen in.
func Aggregate(orders []order.Order) []Customer {
	index := make(map[key]int)
	out := []Customer{}

	for _, o := range orders {
		k := key{name: o.Customer, phone: o.Phone}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, Customer{Name: o.Customer, Phone: o.Phone, TotalSpent: decimal.Zero})
		}
		out[i].TotalOrders++
		out[i].TotalSpent = out[i].TotalSpent.Add(o.Amount)
		out[i].Orders = append(out[i].Orders, o)
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].TotalSpent.GreaterThan(out[b].TotalSpent)
	})
	return out
}

// FilterByPhone keeps customers whose phone contains q. An empty q keeps everyone.
func FilterByPhone(customers []Customer, q string) []Customer {
	q = strings.TrimSpace(q)
	if q == "" {
		return customers
	}
	out := []Customer{}
	for _, c := range customers {
		if strings.Contains(c.Phone, q) {
			out = append(out, c)
		}
	}
	return out
}

// OrdersFor returns the orders placed under exactly this name and phone.
func OrdersFor(orders []order.Order, name, phone string) []order.Order {
	out := []order.Order{}
	for _, o := range orders {
		if o.Customer == name && o.Phone == phone {
			out = append(out, o)
		}
	}
	return out
}
