package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/middleware"
)

type RouterOptions struct {
	CORSAllowOrigins []string
	AdminJWTSecret   string
}

func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.Recover(h.logger))
	r.Use(middleware.CORS(opts.CORSAllowOrigins))

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/categories", h.ListCategories)
			r.Get("/products", h.ListProducts)
			r.Get("/products/{productId}", h.GetProduct)
		})
		r.Get("/shipping/charge", h.ShippingCharge)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession)
			r.Get("/cart", h.GetCart)
			r.Delete("/cart", h.ClearCart)
			r.Post("/cart/items", h.AddCartItem)
			r.Put("/cart/items/{productId}", h.SetCartItem)
			r.Delete("/cart/items/{productId}", h.RemoveCartItem)
			r.Post("/checkout", h.Checkout)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(opts.AdminJWTSecret))

			r.Get("/dashboard", h.Dashboard)

			r.Get("/orders", h.ListOrders)
			r.Get("/orders/{orderId}", h.GetOrder)
			r.Patch("/orders/{orderId}/status", h.UpdateOrderStatus)
			r.Delete("/orders/{orderId}", h.DeleteOrder)
			r.Get("/orders/{orderId}/invoice", h.OrderInvoice)

			r.Get("/customers", h.ListCustomers)
			r.Get("/customers/orders", h.CustomerOrders)

			r.Post("/categories", h.CreateCategory)
			r.Put("/categories/{categoryId}", h.UpdateCategory)
			r.Delete("/categories/{categoryId}", h.DeleteCategory)

			r.Post("/products", h.CreateProduct)
			r.Post("/products/{productId}/stock", h.AdjustStock)

			r.Get("/shipping/rules", h.ListShippingRules)
			r.Post("/shipping/rules", h.CreateShippingRule)
			r.Put("/shipping/rules/{ruleId}", h.UpdateShippingRule)
			r.Delete("/shipping/rules/{ruleId}", h.DeleteShippingRule)
		})
	})

	return r
}
