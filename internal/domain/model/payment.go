package model

// Metadata keys attached to payment intents. Reserved keys always win over client supplied ones.
const (
	MetadataUserID         = "userId"
	MetadataCookID         = "yemmaId"
	MetadataOriginalAmount = "originalAmount"
	MetadataCommission     = "commission"
	MetadataDeliveryFee    = "deliveryFee"
)

// Quote holds the price breakdown computed once at intent creation.
type Quote struct {
	Amount      float64
	Commission  float64
	DeliveryFee float64
	Total       float64
	// AmountMinor is Total expressed in minor currency units.
	AmountMinor int64
}

// IntentRequest is the caller supplied input for payment intent creation.
type IntentRequest struct {
	Amount         float64
	Currency       string
	CookID         string
	CustomerID     string
	Metadata       map[string]string
	IdempotencyKey string
}

// IntentParams is what gets sent to the payment provider.
type IntentParams struct {
	AmountMinor    int64
	Currency       string
	CustomerID     string
	Metadata       map[string]string
	IdempotencyKey string
}

// PaymentIntent is the provider side record returned after creation.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	AmountMinor  int64
	Currency     string
}

// IntentResult is returned to the payer.
type IntentResult struct {
	ClientSecret    string
	PaymentIntentID string
	Commission      float64
	DeliveryFee     float64
	Total           float64
}

// EventType names provider webhook events.
type EventType string

const (
	EventPaymentSucceeded EventType = "payment_intent.succeeded"
	EventPaymentFailed    EventType = "payment_intent.payment_failed"
)

// PaymentEvent is a verified webhook event reduced to the fields reconciliation needs.
type PaymentEvent struct {
	ID           string
	Type         EventType
	IntentID     string
	AmountMinor  int64
	Currency     string
	Metadata     map[string]string
	ErrorMessage string
}
