package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/middleware"
)

type cartLine struct {
	cart.Line
	Total decimal.Decimal `json:"total"`
}

type cartResponse struct {
	Items    []cartLine      `json:"items"`
	Count    int             `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Notice   *cart.Notice    `json:"notice,omitempty"`
}

func toCartResponse(c cart.Cart, n *cart.Notice) cartResponse {
	resp := cartResponse{
		Items:    make([]cartLine, 0, len(c.Lines)),
		Count:    c.Count(),
		Subtotal: c.Subtotal(),
		Notice:   n,
	}
	for _, l := range c.Lines {
		resp.Items = append(resp.Items, cartLine{Line: l, Total: l.Total()})
	}
	return resp
}

type cartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	c, err := h.cart.Get(ctx, middleware.GetSessionID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, "get cart", err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(c, nil))
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := decodeJSON(r, &req); err != nil || req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "productId is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	c, notice, err := h.cart.Add(ctx, middleware.GetSessionID(r.Context()), req.ProductID, req.Quantity)
	if err != nil {
		writeServiceError(w, h.logger, "add cart item", err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(c, notice))
}

func (h *Handler) SetCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	c, notice, err := h.cart.SetQuantity(ctx, middleware.GetSessionID(r.Context()), chi.URLParam(r, "productId"), req.Quantity)
	if err != nil {
		writeServiceError(w, h.logger, "set cart quantity", err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(c, notice))
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	c, notice, err := h.cart.Remove(ctx, middleware.GetSessionID(r.Context()), chi.URLParam(r, "productId"))
	if err != nil {
		writeServiceError(w, h.logger, "remove cart item", err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(c, notice))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.cart.Clear(ctx, middleware.GetSessionID(r.Context())); err != nil {
		writeServiceError(w, h.logger, "clear cart", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var d checkout.Details
	if err := decodeJSON(r, &d); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	o, err := h.checkout.Place(ctx, middleware.GetSessionID(r.Context()), d)
	if err != nil {
		writeServiceError(w, h.logger, "checkout", err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}
