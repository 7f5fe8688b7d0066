package httpapi

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/shipping"
)

const requestTimeout = 3 * time.Second

type CatalogService interface {
	ListCategories(ctx context.Context, q string) ([]catalog.Category, error)
	CreateCategory(ctx context.Context, in catalog.CategoryInput) (catalog.Category, error)
	UpdateCategory(ctx context.Context, id string, in catalog.CategoryInput) (catalog.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	ListProducts(ctx context.Context, categoryID, q string) ([]catalog.Product, error)
	GetProduct(ctx context.Context, id string) (catalog.Product, error)
	CreateProduct(ctx context.Context, in catalog.ProductInput, main *catalog.Image, gallery []catalog.Image, createdBy string) (catalog.Product, error)
	AdjustStock(ctx context.Context, id string, stock int) (catalog.Product, error)
	LowStock(ctx context.Context, threshold int) ([]catalog.Product, error)
}

type CartService interface {
	Get(ctx context.Context, sessionID string) (cart.Cart, error)
	Add(ctx context.Context, sessionID, productID string, qty int) (cart.Cart, *cart.Notice, error)
	SetQuantity(ctx context.Context, sessionID, productID string, qty int) (cart.Cart, *cart.Notice, error)
	Remove(ctx context.Context, sessionID, productID string) (cart.Cart, *cart.Notice, error)
	Clear(ctx context.Context, sessionID string) error
}

type CheckoutService interface {
	Place(ctx context.Context, sessionID string, d checkout.Details) (order.Order, error)
}

type OrderService interface {
	List(ctx context.Context, f order.ListFilter) (order.Page, error)
	All(ctx context.Context) ([]order.Order, error)
	Get(ctx context.Context, id string) (order.Order, error)
	UpdateStatus(ctx context.Context, id string, status order.Status) (order.Order, error)
	Delete(ctx context.Context, id string) error
}

type ShippingService interface {
	List(ctx context.Context) ([]shipping.Rule, error)
	Add(ctx context.Context, district string, charge int) (shipping.Rule, error)
	Update(ctx context.Context, id, district string, charge int) (shipping.Rule, error)
	Delete(ctx context.Context, id string) error
	ChargeFor(ctx context.Context, district string) (int, error)
}

type Deps struct {
	Logger   *log.Logger
	Catalog  CatalogService
	Cart     CartService
	Checkout CheckoutService
	Orders   OrderService
	Shipping ShippingService

	ShopName          string
	LowStockThreshold int
	// UploadTimeout bounds product creation, which streams images to object storage.
	UploadTimeout time.Duration
}

type Handler struct {
	logger   *log.Logger
	catalog  CatalogService
	cart     CartService
	checkout CheckoutService
	orders   OrderService
	shipping ShippingService

	shopName          string
	lowStockThreshold int
	uploadTimeout     time.Duration
	now               func() time.Time
}

func NewHandler(d Deps) *Handler {
	uploadTimeout := d.UploadTimeout
	if uploadTimeout <= 0 {
		uploadTimeout = 300 * time.Second
	}
	return &Handler{
		logger:            d.Logger,
		catalog:           d.Catalog,
		cart:              d.Cart,
		checkout:          d.Checkout,
		orders:            d.Orders,
		shipping:          d.Shipping,
		shopName:          d.ShopName,
		lowStockThreshold: d.LowStockThreshold,
		uploadTimeout:     uploadTimeout,
		now:               time.Now,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "storefront-service"})
}
