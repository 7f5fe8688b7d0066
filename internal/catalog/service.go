package catalog

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/apperr"
)

const maxImageBytes = 5_000_000

var acceptedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// Uploader stores an object and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

type EventPublisher interface {
	PublishProductCreated(ctx context.Context, p Product) error
}

type Service struct {
	repo     Repository
	uploader Uploader
	events   EventPublisher
	logger   *log.Logger
	now      func() time.Time
}

func NewService(repo Repository, uploader Uploader, events EventPublisher, logger *log.Logger) *Service {
	return &Service{repo: repo, uploader: uploader, events: events, logger: logger, now: time.Now}
}

// ListCategories returns every category whose name contains q, ignoring case.
func (s *Service) ListCategories(ctx context.Context, q string) ([]Category, error) {
	all, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]Category, 0, len(all))
	for _, c := range all {
		if q == "" || strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (Category, error) {
	c, err := categoryFromInput(in)
	if err != nil {
		return Category{}, err
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return Category{}, err
	}
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id string, in CategoryInput) (Category, error) {
	c, err := categoryFromInput(in)
	if err != nil {
		return Category{}, err
	}
	if err := s.repo.UpdateCategory(ctx, id, c); err != nil {
		return Category{}, err
	}
	return c, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.repo.DeleteCategory(ctx, id)
}

func categoryFromInput(in CategoryInput) (Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Category{}, apperr.Invalid("Category name is required.")
	}
	slug := Slugify(strings.TrimSpace(in.Slug))
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return Category{}, apperr.Invalid("Category slug is required.")
	}
	return Category{
		ID:          slug,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Image:       strings.TrimSpace(in.Image),
	}, nil
}

// ListProducts returns the products in categoryID (all when empty) whose name,
// description or category contains q, ignoring case.
func (s *Service) ListProducts(ctx context.Context, categoryID, q string) ([]Product, error) {
	all, err := s.repo.ListProducts(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return all, nil
	}
	out := make([]Product, 0, len(all))
	for _, p := range all {
		if matchesQuery(p, q) {
			out = append(out, p)
		}
	}
	return out, nil
}

func matchesQuery(p Product, q string) bool {
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Description), q) ||
		strings.Contains(strings.ToLower(p.CategoryID), q)
}

func (s *Service) GetProduct(ctx context.Context, id string) (Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) AdjustStock(ctx context.Context, id string, stock int) (Product, error) {
	if stock < 0 {
		return Product{}, apperr.Invalid("Stock must be a non-negative integer.")
	}
	if err := s.repo.SetStock(ctx, id, stock); err != nil {
		return Product{}, err
	}
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) LowStock(ctx context.Context, threshold int) ([]Product, error) {
	return s.repo.LowStock(ctx, threshold)
}

// CreateProduct validates the form, uploads the main image and then each gallery
// image, and stores the product. Already uploaded objects are left in place when a
// later step fails.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput, main *Image, gallery []Image, createdBy string) (Product, error) {
	if err := validateProduct(in, main, gallery); err != nil {
		return Product{}, err
	}

	mainURL, err := s.upload(ctx, "products", *main)
	if err != nil {
		return Product{}, fmt.Errorf("upload main image: %w", err)
	}

	galleryURLs := make([]string, 0, len(gallery))
	for i, img := range gallery {
		url, err := s.upload(ctx, "products/gallery", img)
		if err != nil {
			return Product{}, fmt.Errorf("upload gallery image %d: %w", i+1, err)
		}
		galleryURLs = append(galleryURLs, url)
	}

	p := Product{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Highlights:  strings.TrimSpace(in.Highlights),
		Description: strings.TrimSpace(in.Description),
		SizeGuide:   strings.TrimSpace(in.SizeGuide),
		Size:        strings.TrimSpace(in.Size),
		Price:       in.Price,
		Stock:       in.Stock,
		CategoryID:  strings.TrimSpace(in.CategoryID),
		Image:       mainURL,
		Gallery:     galleryURLs,
		CreatedBy:   createdBy,
	}
	if err := s.repo.CreateProduct(ctx, &p); err != nil {
		return Product{}, err
	}

	if err := s.events.PublishProductCreated(ctx, p); err != nil {
		s.logger.Printf("publish ProductCreated failed product=%s err=%v", p.ID, err)
	}
	s.logger.Printf("product created id=%s category=%s gallery=%d by=%s", p.ID, p.CategoryID, len(p.Gallery), createdBy)
	return p, nil
}

func (s *Service) upload(ctx context.Context, prefix string, img Image) (string, error) {
	key := fmt.Sprintf("%s/%d-%s", prefix, s.now().UnixMilli(), img.Filename)
	return s.uploader.Upload(ctx, key, img.ContentType, img.Body)
}

func validateProduct(in ProductInput, main *Image, gallery []Image) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return apperr.Invalid("Product name is required.")
	case strings.TrimSpace(in.Highlights) == "":
		return apperr.Invalid("Product highlights are required.")
	case strings.TrimSpace(in.Description) == "":
		return apperr.Invalid("Product description is required.")
	case !in.Price.IsPositive():
		return apperr.Invalid("Price must be a positive number.")
	case in.Stock < 0:
		return apperr.Invalid("Stock must be a non-negative integer.")
	case strings.TrimSpace(in.CategoryID) == "":
		return apperr.Invalid("Please select a category.")
	case main == nil:
		return apperr.Invalid("Main product image is required.")
	}

	if err := validateImage(*main); err != nil {
		return err
	}
	for _, img := range gallery {
		if err := validateImage(img); err != nil {
			return err
		}
	}
	return nil
}

func validateImage(img Image) error {
	if img.Size > maxImageBytes {
		return apperr.Invalid("Max file size is 5MB.")
	}
	if !acceptedImageTypes[strings.ToLower(img.ContentType)] {
		return apperr.Invalid(".jpg, .jpeg, .png and .webp files are accepted.")
	}
	return nil
}
