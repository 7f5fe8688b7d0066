package order

import (
	"strings"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/apperr"
)

type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

var Statuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

// ParseStatus accepts a status label in any letter case.
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", apperr.Invalid("unknown order status %q", s)
}

// ParseStatusFilter is ParseStatus for list filters, where "" and "all" mean no filter.
func ParseStatusFilter(s string) (Status, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return "", nil
	}
	return ParseStatus(s)
}
