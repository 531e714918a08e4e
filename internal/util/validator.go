package util

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// maxAmount caps amounts to what a decimal(12,2) column can hold.
var maxAmount = decimal.New(1, 10) // 10^10

// ValidateAmount checks a transaction amount (strictly positive, within range).
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive, got %s", amount)
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("amount too large, got %s", amount)
	}
	return nil
}

// ValidateKind checks that kind is income or expense.
func ValidateKind(kind string) error {
	if kind != "income" && kind != "expense" {
		return fmt.Errorf("kind must be income or expense, got %q", kind)
	}
	return nil
}

// ValidateCategoryName checks the 1-100 character name rule.
func ValidateCategoryName(name string) error {
	if name == "" {
		return fmt.Errorf("name is empty")
	}
	if len(name) > 100 {
		return fmt.Errorf("name too long, max 100 characters")
	}
	return nil
}
