// Package dashboard computes the admin overview from the order history.
package dashboard

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/order"
)

const (
	windowDays   = 7
	recentOrders = 5
)

type DaySales struct {
	Name  string          `json:"name"`
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
}

type Summary struct {
	TotalRevenue decimal.Decimal   `json:"totalRevenue"`
	TotalSales   int               `json:"totalSales"`
	NewCustomers int               `json:"newCustomers"`
	RecentOrders []order.Order     `json:"recentOrders"`
	SalesByDay   []DaySales        `json:"salesByDay"`
	LowStock     []catalog.Product `json:"lowStock"`
}

// Compute summarizes delivered orders from the seven days before now and the
// five newest orders of any status. Day buckets use now's location.
func Compute(orders []order.Order, now time.Time) Summary {
	s := Summary{
		TotalRevenue: decimal.Zero,
		RecentOrders: []order.Order{},
		LowStock:     []catalog.Product{},
	}

	since := now.AddDate(0, 0, -windowDays)
	customers := map[string]struct{}{}
	for _, o := range orders {
		if o.Status != order.StatusDelivered || o.Date.Before(since) {
			continue
		}
		s.TotalRevenue = s.TotalRevenue.Add(o.Amount)
		s.TotalSales++
		customers[o.Customer] = struct{}{}
	}
	s.NewCustomers = len(customers)

	sorted := append([]order.Order(nil), orders...)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].Date.After(sorted[b].Date) })
	if len(sorted) > recentOrders {
		sorted = sorted[:recentOrders]
	}
	s.RecentOrders = append(s.RecentOrders, sorted...)

	s.SalesByDay = salesByDay(orders, now)
	return s
}

func salesByDay(orders []order.Order, now time.Time) []DaySales {
	loc := now.Location()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)
	first := today.AddDate(0, 0, -(windowDays - 1))

	days := make([]DaySales, windowDays)
	for i := range days {
		day := first.AddDate(0, 0, i)
		days[i] = DaySales{Name: day.Format("Mon"), Date: day.Format("2006-01-02"), Total: decimal.Zero}
	}

	for _, o := range orders {
		if o.Status != order.StatusDelivered {
			continue
		}
		oy, om, od := o.Date.In(loc).Date()
		day := time.Date(oy, om, od, 0, 0, 0, 0, loc)
		if day.Before(first) || day.After(today) {
			continue
		}
		i := int(day.Sub(first).Hours()+12) / 24
		if i >= 0 && i < windowDays {
			days[i].Total = days[i].Total.Add(o.Amount)
		}
	}
	return days
}
