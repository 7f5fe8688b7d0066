package cart

import (
	"context"
	"errors"
	"log"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/catalog"
)

type ProductLookup interface {
	GetProduct(ctx context.Context, id string) (catalog.Product, error)
}

// Service applies cart operations against current catalog data and persists the result.
type Service struct {
	store    Store
	products ProductLookup
	logger   *log.Logger
}

func NewService(store Store, products ProductLookup, logger *log.Logger) *Service {
	return &Service{store: store, products: products, logger: logger}
}

func SnapshotOf(p catalog.Product) Snapshot {
	return Snapshot{ID: p.ID, Name: p.Name, Price: p.Price, Stock: p.Stock, Image: p.Image}
}

// Get returns the session's cart with every line refreshed from the catalog.
// Lines whose product no longer exists are dropped.
func (s *Service) Get(ctx context.Context, sessionID string) (Cart, error) {
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return Cart{}, err
	}

	changed := false
	for _, l := range append([]Line(nil), c.Lines...) {
		p, err := s.products.GetProduct(ctx, l.Product.ID)
		if errors.Is(err, apperr.ErrNotFound) {
			s.logger.Printf("dropping unknown product from cart session=%s product=%s", sessionID, l.Product.ID)
			c.Remove(l.Product.ID)
			changed = true
			continue
		}
		if err != nil {
			return Cart{}, err
		}
		if c.Refresh(SnapshotOf(p)) {
			changed = true
		}
	}

	if changed {
		if err := s.store.Save(ctx, sessionID, c); err != nil {
			return Cart{}, err
		}
	}
	return c, nil
}

func (s *Service) Add(ctx context.Context, sessionID, productID string, qty int) (Cart, *Notice, error) {
	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return Cart{}, nil, err
	}
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return Cart{}, nil, err
	}

	snap := SnapshotOf(p)
	c.Refresh(snap)
	notice := c.Add(snap, qty)
	if err := s.store.Save(ctx, sessionID, c); err != nil {
		return Cart{}, nil, err
	}
	return c, notice, nil
}

func (s *Service) SetQuantity(ctx context.Context, sessionID, productID string, qty int) (Cart, *Notice, error) {
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return Cart{}, nil, err
	}
	if _, ok := c.Get(productID); !ok {
		return Cart{}, nil, ErrLineNotFound
	}
	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return Cart{}, nil, err
	}

	notice, err := c.SetQuantity(SnapshotOf(p), qty)
	if err != nil {
		return Cart{}, nil, err
	}
	if err := s.store.Save(ctx, sessionID, c); err != nil {
		return Cart{}, nil, err
	}
	return c, notice, nil
}

func (s *Service) Remove(ctx context.Context, sessionID, productID string) (Cart, *Notice, error) {
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return Cart{}, nil, err
	}
	notice := c.Remove(productID)
	if err := s.store.Save(ctx, sessionID, c); err != nil {
		return Cart{}, nil, err
	}
	return c, notice, nil
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}
