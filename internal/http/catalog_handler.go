package httpapi

import (
	"context"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/middleware"
)

// maxMultipartMemory is how much of a product form is buffered in memory; the rest spills to disk.
const maxMultipartMemory = 32 << 20

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	cats, err := h.catalog.ListCategories(ctx, r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, h.logger, "list categories", err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in catalog.CategoryInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	c, err := h.catalog.CreateCategory(ctx, in)
	if err != nil {
		writeServiceError(w, h.logger, "create category", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var in catalog.CategoryInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	c, err := h.catalog.UpdateCategory(ctx, chi.URLParam(r, "categoryId"), in)
	if err != nil {
		writeServiceError(w, h.logger, "update category", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.catalog.DeleteCategory(ctx, chi.URLParam(r, "categoryId")); err != nil {
		writeServiceError(w, h.logger, "delete category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	query := r.URL.Query()
	products, err := h.catalog.ListProducts(ctx, query.Get("category"), query.Get("q"))
	if err != nil {
		writeServiceError(w, h.logger, "list products", err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	p, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "productId"))
	if err != nil {
		writeServiceError(w, h.logger, "get product", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type stockRequest struct {
	Stock *int `json:"stock"`
}

func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := decodeJSON(r, &req); err != nil || req.Stock == nil {
		writeError(w, http.StatusBadRequest, "stock is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	p, err := h.catalog.AdjustStock(ctx, chi.URLParam(r, "productId"), *req.Stock)
	if err != nil {
		writeServiceError(w, h.logger, "adjust stock", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreateProduct accepts a multipart form with the product fields, one "image"
// file and any number of "gallery" files.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart/form-data body")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	in := productInputFromForm(r)

	main, closeMain, err := formImage(r.MultipartForm, "image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable image upload")
		return
	}
	defer closeMain()

	gallery, closeGallery, err := formImages(r.MultipartForm, "gallery")
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable gallery upload")
		return
	}
	defer closeGallery()

	ctx, cancel := context.WithTimeout(r.Context(), h.uploadTimeout)
	defer cancel()

	p, err := h.catalog.CreateProduct(ctx, in, main, gallery, middleware.GetAdminEmail(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, "create product", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func productInputFromForm(r *http.Request) catalog.ProductInput {
	in := catalog.ProductInput{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Highlights:  strings.TrimSpace(r.FormValue("highlights")),
		Description: strings.TrimSpace(r.FormValue("description")),
		SizeGuide:   strings.TrimSpace(r.FormValue("sizeGuide")),
		Size:        strings.TrimSpace(r.FormValue("size")),
		CategoryID:  strings.TrimSpace(r.FormValue("category")),
		Stock:       -1,
	}
	// unparsable numbers fall through to the service's validation messages
	if price, err := decimal.NewFromString(strings.TrimSpace(r.FormValue("price"))); err == nil {
		in.Price = price
	}
	if stock, err := strconv.Atoi(strings.TrimSpace(r.FormValue("stock"))); err == nil {
		in.Stock = stock
	}
	return in
}

func formImage(form *multipart.Form, field string) (*catalog.Image, func(), error) {
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, func() {}, nil
	}
	img, err := openImage(headers[0])
	if err != nil {
		return nil, func() {}, err
	}
	return &img, closeAll([]catalog.Image{img}), nil
}

func formImages(form *multipart.Form, field string) ([]catalog.Image, func(), error) {
	var out []catalog.Image
	for _, fh := range form.File[field] {
		img, err := openImage(fh)
		if err != nil {
			closeAll(out)()
			return nil, func() {}, err
		}
		out = append(out, img)
	}
	return out, closeAll(out), nil
}

func openImage(fh *multipart.FileHeader) (catalog.Image, error) {
	f, err := fh.Open()
	if err != nil {
		return catalog.Image{}, err
	}
	return catalog.Image{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, nil
}

func closeAll(images []catalog.Image) func() {
	return func() {
		for _, img := range images {
			if c, ok := img.Body.(multipart.File); ok {
				_ = c.Close()
			}
		}
	}
}
