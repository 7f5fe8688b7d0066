package order

import (
	"context"
	"log"
)

type EventPublisher interface {
	PublishOrderStatusChanged(ctx context.Context, o Order, previous Status) error
}

// Service holds the admin operations on existing orders.
type Service struct {
	repo   Repository
	events EventPublisher
	logger *log.Logger
}

func NewService(repo Repository, events EventPublisher, logger *log.Logger) *Service {
	return &Service{repo: repo, events: events, logger: logger}
}

func (s *Service) List(ctx context.Context, f ListFilter) (Page, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) All(ctx context.Context) ([]Order, error) {
	return s.repo.All(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (Order, error) {
	previous, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return Order{}, err
	}
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}

	if previous != status {
		if err := s.events.PublishOrderStatusChanged(ctx, o, previous); err != nil {
			s.logger.Printf("publish OrderStatusChanged failed order=%s err=%v", id, err)
		}
	}
	s.logger.Printf("order status updated id=%s %s -> %s", id, previous, status)
	return o, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Printf("order deleted id=%s", id)
	return nil
}
