package usecase

import (
	"fmt"
	"math"
	"strings"

	domainErrors "github.com/polkiloo/yemma/internal/domain/errors"
)

// Provider side limits for a single charge and for intent metadata. Five metadata keys are reserved.
const (
	maxAmountMinor       = 99_999_999
	maxMetadataKeys      = 45
	maxMetadataKeyLength = 40
	maxMetadataValueLen  = 500
	maxPushTokenLength   = 256
)

// ValidateAmount rejects non-positive and non-finite base amounts.
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return domainErrors.ErrInvalidAmount
	}
	return nil
}

// NormalizeCurrency lower-cases an ISO 4217 code, falling back when empty.
func NormalizeCurrency(currency, fallback string) (string, error) {
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = fallback
	}
	if len(currency) != 3 {
		return "", fmt.Errorf("%w: %q", domainErrors.ErrInvalidCurrency, currency)
	}
	for _, r := range currency {
		if r < 'a' || r > 'z' {
			return "", fmt.Errorf("%w: %q", domainErrors.ErrInvalidCurrency, currency)
		}
	}
	return currency, nil
}

// ValidateMetadata enforces the key count and size limits on client metadata.
func ValidateMetadata(metadata map[string]string) error {
	if len(metadata) > maxMetadataKeys {
		return fmt.Errorf("%w: more than %d keys", domainErrors.ErrInvalidMetadata, maxMetadataKeys)
	}
	for k, v := range metadata {
		if k == "" || len(k) > maxMetadataKeyLength {
			return fmt.Errorf("%w: key %q", domainErrors.ErrInvalidMetadata, k)
		}
		if len(v) > maxMetadataValueLen {
			return fmt.Errorf("%w: value for %q too long", domainErrors.ErrInvalidMetadata, k)
		}
	}
	return nil
}
