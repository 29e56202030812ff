package domain

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusApproved OrderStatus = "approved"
	OrderStatusRejected OrderStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusApproved, OrderStatusRejected:
		return true
	}
	return false
}

// Order is a purchase request for one catalog system. UserID is nil for
// guest orders.
type Order struct {
	ID           string      `json:"id,omitempty"`
	SystemID     string      `json:"systemId"`
	SystemName   string      `json:"systemName"`
	SystemPrice  float64     `json:"systemPrice"`
	CustomerName string      `json:"customerName"`
	BusinessName string      `json:"businessName"`
	PhoneNumber  string      `json:"phoneNumber"`
	Location     string      `json:"location"`
	Email        string      `json:"email"`
	Notes        string      `json:"notes"`
	Status       OrderStatus `json:"status"`
	UserID       *string     `json:"userId"`
	OrderDate    string      `json:"orderDate"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}
