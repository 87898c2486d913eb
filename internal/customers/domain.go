package customers

import (
	"errors"
	"time"
)

// Customer is a buyer optionally attached to a sale. Customers are never
// deleted so historical sales keep their reference.
type Customer struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Phone        *string   `json:"phone,omitempty"`
	Email        *string   `json:"email,omitempty"`
	Address      *string   `json:"address,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}

type CreateCustomerRequest struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=300"`
}

type UpdateCustomerRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=300"`
}

type ListCustomersRequest struct {
	Search *string
	Limit  int
	Offset int
}

// ErrNotFound indicates the customer does not exist.
var ErrNotFound = errors.New("customers: not found")
