package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type shippingRuleRequest struct {
	District string `json:"district"`
	Charge   int    `json:"charge"`
}

func (h *Handler) ShippingCharge(w http.ResponseWriter, r *http.Request) {
	district := r.URL.Query().Get("district")

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	charge, err := h.shipping.ChargeFor(ctx, district)
	if err != nil {
		writeServiceError(w, h.logger, "shipping charge", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"district": district, "charge": charge})
}

func (h *Handler) ListShippingRules(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rules, err := h.shipping.List(ctx)
	if err != nil {
		writeServiceError(w, h.logger, "list shipping rules", err)
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

func (h *Handler) CreateShippingRule(w http.ResponseWriter, r *http.Request) {
	var req shippingRuleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rule, err := h.shipping.Add(ctx, req.District, req.Charge)
	if err != nil {
		writeServiceError(w, h.logger, "create shipping rule", err)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

func (h *Handler) UpdateShippingRule(w http.ResponseWriter, r *http.Request) {
	var req shippingRuleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rule, err := h.shipping.Update(ctx, chi.URLParam(r, "ruleId"), req.District, req.Charge)
	if err != nil {
		writeServiceError(w, h.logger, "update shipping rule", err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (h *Handler) DeleteShippingRule(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.shipping.Delete(ctx, chi.URLParam(r, "ruleId")); err != nil {
		writeServiceError(w, h.logger, "delete shipping rule", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
