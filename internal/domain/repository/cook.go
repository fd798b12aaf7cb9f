package repository

import (
	"context"

	"github.com/polkiloo/yemma/internal/domain/model"
)

// CookDirectory gives read access to cook profiles.
type CookDirectory interface {
	GetByID(ctx context.Context, id string) (*model.Cook, error)
}
