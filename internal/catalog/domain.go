package catalog

import (
	"errors"
	"time"
)

// Product represents an item offered for sale. Products are never deleted;
// they are deactivated so historical sale lines keep a valid reference.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	CostPrice   float64   `json:"cost_price"`
	Stock       int       `json:"stock"`
	IsActive    bool      `json:"is_active"`
	Category    string    `json:"category"`
	Barcode     *string   `json:"barcode,omitempty"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Category labels products for filtering and reporting.
type Category struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	IsActive    bool    `json:"is_active"`
}

type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Price       float64 `json:"price" validate:"gte=0"`
	CostPrice   float64 `json:"cost_price" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Category    string  `json:"category" validate:"omitempty,max=100"`
	Barcode     *string `json:"barcode,omitempty" validate:"omitempty,max=64"`
	Description *string `json:"description,omitempty"`
}

type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	CostPrice   *float64 `json:"cost_price,omitempty" validate:"omitempty,gte=0"`
	Category    *string  `json:"category,omitempty" validate:"omitempty,max=100"`
	Barcode     *string  `json:"barcode,omitempty" validate:"omitempty,max=64"`
	Description *string  `json:"description,omitempty"`
}

type ListProductsRequest struct {
	Category *string
	IsActive *bool
	Search   *string
	Limit    int
	Offset   int
}

// POSProduct is the trimmed projection served to the point-of-sale screen:
// active products with stock on hand.
type POSProduct struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	Category string  `json:"category"`
	Barcode  *string `json:"barcode,omitempty"`
}

var (
	// ErrNotFound indicates the product or category does not exist.
	ErrNotFound = errors.New("catalog: not found")
	// ErrDuplicateBarcode indicates the barcode is already assigned.
	ErrDuplicateBarcode = errors.New("catalog: barcode already in use")
	// ErrDuplicateCategory indicates the category name is taken.
	ErrDuplicateCategory = errors.New("catalog: category already exists")
)
