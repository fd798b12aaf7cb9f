package provider

import (
	"context"

	"github.com/polkiloo/yemma/internal/domain/model"
)

// PushNotifier sends a single device notification.
type PushNotifier interface {
	Send(ctx context.Context, msg model.PushMessage) error
}
