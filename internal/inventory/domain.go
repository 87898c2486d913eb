package inventory

import (
	"errors"
	"fmt"
)

// Availability summarises the sellable state of one product.
type Availability struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
	LowStock  bool   `json:"low_stock"`
	Threshold int    `json:"threshold"`
}

// InsufficientStockError reports a reservation that exceeds the stock on
// hand. It carries the product so a multi-line cart can name the offender.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("inventory: insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// NotFoundError reports a reservation against an unknown product.
type NotFoundError struct {
	ProductID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("inventory: product %d not found", e.ProductID)
}

// InactiveError reports a reservation against a deactivated product.
type InactiveError struct {
	ProductID int64
}

func (e *InactiveError) Error() string {
	return fmt.Sprintf("inventory: product %d is inactive", e.ProductID)
}

// ErrInvalidQuantity indicates a non-positive quantity. Rejected before any
// stock check: malformed input, not a stock failure.
var ErrInvalidQuantity = errors.New("inventory: quantity must be positive")

// ErrNegativeStock indicates a stock write below zero.
var ErrNegativeStock = errors.New("inventory: stock must not be negative")
