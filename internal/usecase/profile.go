package usecase

import (
	"context"
	"strings"

	domainErrors "github.com/polkiloo/yemma/internal/domain/errors"
	"github.com/polkiloo/yemma/internal/domain/repository"
)

// ProfileUseCase manages mutable parts of the user profile.
type ProfileUseCase struct {
	users repository.UserDirectory
}

// NewProfileUseCase constructs ProfileUseCase.
func NewProfileUseCase(users repository.UserDirectory) *ProfileUseCase {
	return &ProfileUseCase{users: users}
}

// UpdatePushToken stores the device token that order confirmations are sent to.
func (u *ProfileUseCase) UpdatePushToken(ctx context.Context, userID, token string) error {
	if userID == "" {
		return domainErrors.ErrUnauthenticated
	}
	token = strings.TrimSpace(token)
	if token == "" || len(token) > maxPushTokenLength {
		return domainErrors.ErrInvalidPushToken
	}
	return u.users.SetPushToken(ctx, userID, token)
}
