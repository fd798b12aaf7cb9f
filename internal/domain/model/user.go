package model

import "time"

// User represents a registered customer of the marketplace.
type User struct {
	ID               string
	Email            string
	PasswordHash     string
	StripeCustomerID string
	PushToken        string
	CreatedAt        time.Time
}
