package usecase

import (
	"context"
	"strings"

	domainErrors "github.com/polkiloo/yemma/internal/domain/errors"
	"github.com/polkiloo/yemma/internal/domain/model"
	"github.com/polkiloo/yemma/internal/domain/repository"
)

// CatalogUseCase serves public cook profiles.
type CatalogUseCase struct {
	cooks repository.CookDirectory
}

// NewCatalogUseCase constructs CatalogUseCase.
func NewCatalogUseCase(cooks repository.CookDirectory) *CatalogUseCase {
	return &CatalogUseCase{cooks: cooks}
}

// Cook returns the cook profile by id.
func (u *CatalogUseCase) Cook(ctx context.Context, id string) (*model.Cook, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domainErrors.ErrNotFound
	}
	return u.cooks.GetByID(ctx, id)
}
