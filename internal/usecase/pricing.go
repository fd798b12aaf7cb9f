package usecase

import (
	"math"

	"github.com/polkiloo/yemma/internal/domain/model"
)

const (
	commissionRate        = 0.10
	freeDeliveryThreshold = 20.0
	flatDeliveryFee       = 3.0
)

// Quote computes commission, delivery fee and total for a base amount.
// Commission is rounded to cents, the fee is waived strictly above the threshold and
// the provider charge is the total converted to minor units.
func Quote(amount float64) model.Quote {
	commission := roundCents(amount * commissionRate)

	fee := flatDeliveryFee
	if amount > freeDeliveryThreshold {
		fee = 0
	}

	total := amount + commission + fee
	return model.Quote{
		Amount:      amount,
		Commission:  commission,
		DeliveryFee: fee,
		Total:       total,
		AmountMinor: int64(math.Round(total * 100)),
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
