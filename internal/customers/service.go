package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Service coordinates customer record operations.
type Service struct {
	repo *Repository
}

// NewService constructs a new Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Get fetches a customer by id.
func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	return s.repo.Get(ctx, id)
}

// List returns customers matching the filter.
func (s *Service) List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	if req.Limit <= 0 || req.Limit > 500 {
		req.Limit = 50
	}
	if req.Offset < 0 {
		req.Offset = 0
	}
	return s.repo.List(ctx, req)
}

// Create registers a customer.
func (s *Service) Create(ctx context.Context, req CreateCustomerRequest) (*Customer, error) {
	customer := Customer{
		Name:    strings.TrimSpace(req.Name),
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
	}
	if customer.Name == "" {
		return nil, errors.New("customers: name is required")
	}
	id, err := s.repo.Create(ctx, customer)
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Update applies a partial update. There is no delete: sales reference
// customers and history must survive.
func (s *Service) Update(ctx context.Context, id int64, req UpdateCustomerRequest) (*Customer, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errors.New("customers: name is required")
		}
		updates["name"] = name
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}
