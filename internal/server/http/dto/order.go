package dto

import "time"

// OrderResponse describes an order in the user's history.
type OrderResponse struct {
	ID              string     `json:"id"`
	YemmaID         string     `json:"yemmaId"`
	Amount          float64    `json:"amount"`
	Commission      float64    `json:"commission"`
	DeliveryFee     float64    `json:"deliveryFee"`
	Total           float64    `json:"total"`
	Currency        string     `json:"currency"`
	PaymentIntentID string     `json:"paymentIntentId"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	PaidAt          *time.Time `json:"paidAt,omitempty"`
	FailedAt        *time.Time `json:"failedAt,omitempty"`
	ErrorMessage    string     `json:"errorMessage,omitempty"`
}
