package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/media"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/order"
)

type errorResponse struct {
	Error    string               `json:"error"`
	Depleted []order.DepletedLine `json:"depleted,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps domain errors to status codes. Unknown errors are logged and hidden.
func writeServiceError(w http.ResponseWriter, logger *log.Logger, op string, err error) {
	if msg, ok := apperr.ValidationMessage(err); ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	var stockErr *order.StockError
	switch {
	case errors.As(err, &stockErr):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "insufficient stock", Depleted: stockErr.Depleted})
	case errors.Is(err, apperr.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, apperr.ErrConflict):
		writeError(w, http.StatusConflict, conflictMessage(err))
	case errors.Is(err, media.ErrUploadTimeout):
		logger.Printf("%s: %v", op, err)
		writeError(w, http.StatusGatewayTimeout, err.Error())
	case errors.Is(err, media.ErrUploadFailed):
		logger.Printf("%s: %v", op, err)
		writeError(w, http.StatusBadGateway, "image upload failed")
	default:
		logger.Printf("%s: %v", op, err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// conflictMessage strips the "conflict: " prefix added by apperr.Conflict.
func conflictMessage(err error) string {
	return strings.TrimPrefix(err.Error(), apperr.ErrConflict.Error()+": ")
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
