package dto

// PaymentIntentRequest is the body of POST /api/payments/intent.
type PaymentIntentRequest struct {
	Amount     float64           `json:"amount"`
	Currency   string            `json:"currency"`
	YemmaID    string            `json:"yemmaId"`
	CustomerID string            `json:"customerId"`
	Metadata   map[string]string `json:"metadata"`
}

// PaymentIntentResponse carries what the client needs to confirm the payment.
type PaymentIntentResponse struct {
	ClientSecret    string  `json:"clientSecret"`
	PaymentIntentID string  `json:"paymentIntentId"`
	Commission      float64 `json:"commission"`
	DeliveryFee     float64 `json:"deliveryFee"`
	Total           float64 `json:"total"`
}

// WebhookAck acknowledges a processed webhook delivery.
type WebhookAck struct {
	Received bool `json:"received"`
}

// WebhookError is returned when a delivery fails verification.
type WebhookError struct {
	Error string `json:"error"`
}
