package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/customer"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/dashboard"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/order"
)

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status, err := order.ParseStatusFilter(q.Get("status"))
	if err != nil {
		writeServiceError(w, h.logger, "list orders", err)
		return
	}
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res, err := h.orders.List(ctx, order.ListFilter{Status: status, Page: page, PageSize: pageSize})
	if err != nil {
		writeServiceError(w, h.logger, "list orders", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	o, err := h.orders.Get(ctx, chi.URLParam(r, "orderId"))
	if err != nil {
		writeServiceError(w, h.logger, "get order", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	status, err := order.ParseStatus(req.Status)
	if err != nil {
		writeServiceError(w, h.logger, "update order status", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	o, err := h.orders.UpdateStatus(ctx, chi.URLParam(r, "orderId"), status)
	if err != nil {
		writeServiceError(w, h.logger, "update order status", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.orders.Delete(ctx, chi.URLParam(r, "orderId")); err != nil {
		writeServiceError(w, h.logger, "delete order", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) OrderInvoice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	o, err := h.orders.Get(ctx, chi.URLParam(r, "orderId"))
	if err != nil {
		writeServiceError(w, h.logger, "order invoice", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="invoice-%s.txt"`, o.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(order.RenderInvoice(o, h.shopName)))
}

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	orders, err := h.orders.All(ctx)
	if err != nil {
		writeServiceError(w, h.logger, "list customers", err)
		return
	}
	customers := customer.FilterByPhone(customer.Aggregate(orders), r.URL.Query().Get("phone"))
	writeJSON(w, http.StatusOK, customers)
}

func (h *Handler) CustomerOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name, phone := q.Get("name"), q.Get("phone")
	if name == "" && phone == "" {
		writeError(w, http.StatusBadRequest, "name or phone is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	orders, err := h.orders.All(ctx)
	if err != nil {
		writeServiceError(w, h.logger, "customer orders", err)
		return
	}
	writeJSON(w, http.StatusOK, customer.OrdersFor(orders, name, phone))
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	orders, err := h.orders.All(ctx)
	if err != nil {
		writeServiceError(w, h.logger, "dashboard orders", err)
		return
	}
	low, err := h.catalog.LowStock(ctx, h.lowStockThreshold)
	if err != nil {
		writeServiceError(w, h.logger, "dashboard low stock", err)
		return
	}

	summary := dashboard.Compute(orders, h.now())
	summary.LowStock = low
	writeJSON(w, http.StatusOK, summary)
}
