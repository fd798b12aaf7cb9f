package provider

import "context"

// EventDeduper claims webhook event ids. Claim returns false when the id was already claimed.
type EventDeduper interface {
	Claim(ctx context.Context, eventID string) (bool, error)
}
