// Package money implements two-decimal dollar arithmetic for pricing,
// fees and payout splits. All functions are pure.
package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Published card-processor fee formula: percent of gross plus a fixed cut.
const (
	ProcessorFeePercent = 0.029
	ProcessorFeeFixed   = 0.30
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidFeePercent = errors.New("invalid fee percent")
)

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ToCents converts a dollar amount to integer cents, rounding half away
// from zero.
func ToCents(dollars float64) (int64, error) {
	if !isFinite(dollars) {
		return 0, fmt.Errorf("dollars must be a finite number: %w", ErrInvalidAmount)
	}
	return int64(math.Round(dollars * 100)), nil
}

// ToDollars converts a cent amount back to dollars. Fractional cents are
// rounded to the nearest whole cent first.
func ToDollars(cents float64) (float64, error) {
	if !isFinite(cents) {
		return 0, fmt.Errorf("cents must be a finite number: %w", ErrInvalidAmount)
	}
	return math.Round(cents) / 100, nil
}

// RoundMoney rounds to two decimals. Non-finite input yields 0 rather
// than an error; aggregate displays must never blow up on a bad row.
func RoundMoney(amount float64) float64 {
	if !isFinite(amount) {
		return 0
	}
	return math.Round(amount*100) / 100
}

// CalculateProcessorFee estimates the card processor's cut of a charge.
// Returns 0 for non-finite or non-positive amounts.
func CalculateProcessorFee(dollars float64) float64 {
	if !isFinite(dollars) || dollars <= 0 {
		return 0
	}
	return RoundMoney(dollars*ProcessorFeePercent + ProcessorFeeFixed)
}

// Breakdown is the settlement split of a charged amount between the
// platform and the worker.
type Breakdown struct {
	GrossTotal     float64 `json:"gross_total"`
	PlatformFee    float64 `json:"platform_fee"`
	WorkerAmount   float64 `json:"worker_amount"`
	ProcessorFee   float64 `json:"processor_fee"`
	PlatformFeeNet float64 `json:"platform_fee_net"`
	TipAmount      float64 `json:"tip_amount"`
}

// CalculatePaymentBreakdown splits totalAmount plus tip between the
// platform (platformFeePercent of the total) and the worker (the rest,
// plus the full tip). The processor fee is informational only and comes
// out of the platform's side. A malformed tip is coerced to 0 instead of
// failing: a bad tip must never block payment of the primary service fee.
func CalculatePaymentBreakdown(totalAmount, platformFeePercent, tipAmount float64) (*Breakdown, error) {
	if !isFinite(totalAmount) || totalAmount <= 0 {
		return nil, fmt.Errorf("total amount must be a positive number: %w", ErrInvalidAmount)
	}
	if !isFinite(platformFeePercent) || platformFeePercent < 0 || platformFeePercent > 1 {
		return nil, fmt.Errorf("platform fee percent must be between 0 and 1: %w", ErrInvalidFeePercent)
	}
	if !isFinite(tipAmount) {
		tipAmount = 0
	}

	platformFee := RoundMoney(totalAmount * platformFeePercent)
	processorFee := CalculateProcessorFee(totalAmount + tipAmount)

	return &Breakdown{
		GrossTotal:     RoundMoney(totalAmount + tipAmount),
		PlatformFee:    platformFee,
		WorkerAmount:   RoundMoney(totalAmount - platformFee + tipAmount),
		ProcessorFee:   processorFee,
		PlatformFeeNet: RoundMoney(platformFee - processorFee),
		TipAmount:      RoundMoney(tipAmount),
	}, nil
}

// ValidateAmount parses a loosely-typed amount (JSON numbers arrive as
// float64, but clients also send strings) and rejects anything that is
// not a non-negative finite number. The returned value is NOT rounded.
func ValidateAmount(value any, fieldName string) (float64, error) {
	var parsed float64
	switch v := value.(type) {
	case float64:
		parsed = v
	case float32:
		parsed = float64(v)
	case int:
		parsed = float64(v)
	case int64:
		parsed = float64(v)
	case uint:
		parsed = float64(v)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("%s is not a valid amount: %w", fieldName, ErrInvalidAmount)
		}
		parsed = f
	default:
		return 0, fmt.Errorf("%s is not a valid amount: %w", fieldName, ErrInvalidAmount)
	}
	if !isFinite(parsed) || parsed < 0 {
		return 0, fmt.Errorf("%s must be a non-negative number: %w", fieldName, ErrInvalidAmount)
	}
	return parsed, nil
}
