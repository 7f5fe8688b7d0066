package catalog

import (
	"io"
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Image        string `json:"image,omitempty"`
	ProductCount int    `json:"productCount"`
}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Highlights  string          `json:"highlights,omitempty"`
	Description string          `json:"description,omitempty"`
	SizeGuide   string          `json:"sizeGuide,omitempty"`
	Size        string          `json:"size,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  string          `json:"category"`
	Image       string          `json:"image,omitempty"`
	Gallery     []string        `json:"gallery"`
	CreatedBy   string          `json:"createdBy,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// CategoryInput is the admin form for creating or editing a category.
// An empty Slug is derived from Name.
type CategoryInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type ProductInput struct {
	Name        string
	Highlights  string
	Description string
	SizeGuide   string
	Size        string
	Price       decimal.Decimal
	Stock       int
	CategoryID  string
}

// Image is an uploaded file waiting to be stored.
type Image struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}
