package model

import "time"

// OrderStatus describes payment lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusFailed  OrderStatus = "failed"
)

// Order is created together with a payment intent and settled by webhook events.
type Order struct {
	ID              string
	UserID          string
	CookID          string
	Amount          float64
	Commission      float64
	DeliveryFee     float64
	Total           float64
	Currency        string
	PaymentIntentID string
	Status          OrderStatus
	CreatedAt       time.Time
	PaidAt          *time.Time
	FailedAt        *time.Time
	ErrorMessage    string
}

// OrderTransition reports an order after a status write together with the status it had before.
type OrderTransition struct {
	Order    Order
	Previous OrderStatus
}

// Changed reports whether the write moved the order to a different status.
func (t OrderTransition) Changed() bool {
	return t.Previous != t.Order.Status
}
