package sales

import (
	"errors"
	"fmt"
	"time"
)

// PaymentMethod enumerates how a sale was paid.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentCredit PaymentMethod = "credit"
	PaymentOther  PaymentMethod = "other"
)

// Valid reports whether the payment method is a known value.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentCredit, PaymentOther:
		return true
	}
	return false
}

// Sale is an immutable committed transaction. There is no update path;
// corrections are new compensating sales.
type Sale struct {
	ID            int64         `json:"id"`
	Code          string        `json:"code"`
	SoldAt        time.Time     `json:"sold_at"`
	Total         float64       `json:"total"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	CashReceived  *float64      `json:"cash_received,omitempty"`
	Change        float64       `json:"change"`
	CustomerID    *int64        `json:"customer_id,omitempty"`
	CashierID     int64         `json:"cashier_id"`
	Items         []SaleItem    `json:"items,omitempty"`
}

// SaleItem is one line of a committed sale. The unit price is frozen at sale
// time so history reproduces the price actually charged regardless of later
// catalog edits.
type SaleItem struct {
	ID        int64   `json:"id"`
	SaleID    int64   `json:"sale_id"`
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

// CartLine is one requested product/quantity pair.
type CartLine struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

// ProcessSaleInput is the full cart submitted for one sale.
type ProcessSaleInput struct {
	Lines         []CartLine
	PaymentMethod PaymentMethod
	CustomerID    *int64
	CashReceived  *float64
	CashierID     int64
}

// Receipt is returned after a successful commit.
type Receipt struct {
	SaleID int64   `json:"sale_id"`
	Code   string  `json:"code"`
	Total  float64 `json:"total"`
	Change float64 `json:"change"`
}

// ListSalesRequest filters the sale history listing.
type ListSalesRequest struct {
	From       *time.Time
	To         *time.Time
	CustomerID *int64
	CashierID  *int64
	Limit      int
	Offset     int
}

// ProductNotFoundError reports a cart line naming an unknown or inactive
// product. The whole sale aborts.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("sales: product %d not found or inactive", e.ProductID)
}

var (
	// ErrEmptyCart indicates a sale with no lines. Rejected before any
	// store interaction.
	ErrEmptyCart = errors.New("sales: cart is empty")
	// ErrInvalidQuantity indicates a non-positive line quantity.
	ErrInvalidQuantity = errors.New("sales: quantity must be positive")
	// ErrInvalidPaymentMethod indicates an unknown payment method.
	ErrInvalidPaymentMethod = errors.New("sales: invalid payment method")
	// ErrInsufficientPayment indicates cash received below the total.
	ErrInsufficientPayment = errors.New("sales: cash received is less than the total")
	// ErrNotFound indicates the sale does not exist.
	ErrNotFound = errors.New("sales: not found")
)
