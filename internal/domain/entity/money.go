package entity

import (
	"fmt"
	"strconv"
	"strings"

	errs "github.com/gscube/bulkerpay/internal/domain/error"
)

// Amounts travel through the service as decimal strings in major currency
// units. They are converted to the gateway's minor-unit integer exactly once,
// at the gateway boundary, and are never persisted in minor units.

// MinorUnits converts a major-unit decimal amount to the gateway's minor-unit
// integer (×100). Rounding at the third decimal place is half-up, never
// truncation, so fractional amounts are not systematically under-charged:
// "19.995" becomes 2000, not 1999.
func MinorUnits(amount string) (int64, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return 0, fmt.Errorf("%w: empty value", errs.ErrInvalidAmount)
	}
	if strings.HasPrefix(amount, "-") {
		return 0, errs.ErrNegativeAmount
	}

	parts := strings.Split(amount, ".")
	if len(parts) > 2 {
		return 0, fmt.Errorf("%w: invalid number format", errs.ErrInvalidAmount)
	}

	whole := parts[0]
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) {
		return 0, fmt.Errorf("%w: %q is not a decimal number", errs.ErrInvalidAmount, amount)
	}

	var frac string
	if len(parts) == 2 {
		frac = parts[1]
		if frac != "" && !isDigits(frac) {
			return 0, fmt.Errorf("%w: %q is not a decimal number", errs.ErrInvalidAmount, amount)
		}
	}

	// First two fractional digits are the minor units; pad short fractions.
	cents := frac
	if len(cents) > 2 {
		cents = cents[:2]
	}
	for len(cents) < 2 {
		cents += "0"
	}

	value, err := strconv.ParseInt(whole+cents, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errs.ErrInvalidAmount, err.Error())
	}

	// Half-up on the third fractional digit.
	if len(frac) > 2 && frac[2] >= '5' {
		value++
	}

	return value, nil
}

// ValidatePositiveAmount checks that the amount is a well-formed decimal
// strictly greater than zero.
func ValidatePositiveAmount(amount string) error {
	minor, err := MinorUnits(amount)
	if err != nil {
		return err
	}
	if minor <= 0 {
		return errs.ErrNegativeAmount
	}
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
