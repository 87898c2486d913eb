package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const posProductsKey = "catalog:pos_products"

// DefaultCategory is assigned when a product is created without one.
const DefaultCategory = "General"

// Service coordinates catalog operations.
type Service struct {
	repo   *Repository
	cache  *Cache
	logger *slog.Logger

	fold cases.Caser
}

// NewService builds Service.
func NewService(repo *Repository, cache *Cache, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: logger,
		fold:   cases.Lower(language.Und),
	}
}

// Get fetches a product by id.
func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.repo.Get(ctx, id)
}

// GetByBarcode fetches a product by barcode, used by the scanner flow.
func (s *Service) GetByBarcode(ctx context.Context, barcode string) (*Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, ErrNotFound
	}
	return s.repo.GetByBarcode(ctx, barcode)
}

// List returns products matching the filter. Search terms are case folded so
// accented product names match regardless of input casing.
func (s *Service) List(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	if req.Limit <= 0 || req.Limit > 500 {
		req.Limit = 50
	}
	if req.Offset < 0 {
		req.Offset = 0
	}
	if req.Search != nil {
		folded := s.fold.String(strings.TrimSpace(*req.Search))
		if folded == "" {
			req.Search = nil
		} else {
			req.Search = &folded
		}
	}
	return s.repo.List(ctx, req)
}

// ListForPOS returns the cached product projection for the sale screen.
func (s *Service) ListForPOS(ctx context.Context) ([]POSProduct, error) {
	var products []POSProduct
	err := s.cache.FetchJSON(ctx, posProductsKey, &products, func(ctx context.Context) (interface{}, error) {
		return s.repo.ListForPOS(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("list pos products: %w", err)
	}
	return products, nil
}

// Create registers a new product.
func (s *Service) Create(ctx context.Context, req CreateProductRequest) (*Product, error) {
	product := Product{
		Name:        strings.TrimSpace(req.Name),
		Price:       req.Price,
		CostPrice:   req.CostPrice,
		Stock:       req.Stock,
		IsActive:    true,
		Category:    strings.TrimSpace(req.Category),
		Barcode:     normalizeBarcode(req.Barcode),
		Description: req.Description,
	}
	if product.Name == "" {
		return nil, errors.New("catalog: product name is required")
	}
	if product.Category == "" {
		product.Category = DefaultCategory
	}

	id, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, err
	}
	product.ID = id

	s.invalidate(ctx)
	s.logger.Info("product created", slog.Int64("product_id", id), slog.String("name", product.Name))
	return &product, nil
}

// Update applies a partial update to a product.
func (s *Service) Update(ctx context.Context, id int64, req UpdateProductRequest) (*Product, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errors.New("catalog: product name is required")
		}
		updates["name"] = name
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.CostPrice != nil {
		updates["cost_price"] = *req.CostPrice
	}
	if req.Category != nil {
		updates["category"] = strings.TrimSpace(*req.Category)
	}
	if req.Barcode != nil {
		updates["barcode"] = normalizeBarcode(req.Barcode)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return s.repo.Get(ctx, id)
}

// Deactivate soft-deletes a product. Historical sales keep their reference.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.logger.Info("product deactivated", slog.Int64("product_id", id))
	return nil
}

// Reactivate makes a previously deactivated product sellable again.
func (s *Service) Reactivate(ctx context.Context, id int64) error {
	if err := s.repo.SetActive(ctx, id, true); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// ListCategories returns all categories.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

// CreateCategory registers a category label.
func (s *Service) CreateCategory(ctx context.Context, name string, description *string) (*Category, error) {
	category := Category{
		Name:        strings.TrimSpace(name),
		Description: description,
		IsActive:    true,
	}
	if category.Name == "" {
		return nil, errors.New("catalog: category name is required")
	}
	id, err := s.repo.CreateCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	category.ID = id
	return &category, nil
}

// ListLowStock returns active products at or below the threshold.
func (s *Service) ListLowStock(ctx context.Context, threshold int) ([]Product, error) {
	return s.repo.ListLowStock(ctx, threshold)
}

// InvalidateCache bumps the catalog cache version. Exposed for callers that
// mutate stock outside this package, e.g. the sale coordinator.
func (s *Service) InvalidateCache(ctx context.Context) {
	s.invalidate(ctx)
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("catalog cache bump", slog.Any("error", err))
	}
}

func normalizeBarcode(barcode *string) *string {
	if barcode == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*barcode)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
