package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	customError "github.com/mangaza/subscription-billing/pkg/errors"
	"github.com/mangaza/subscription-billing/pkg/utils"
)

// LineCharge is one selected line's contribution to an advance payment.
// Each line keeps its own monthly price so mixed-plan households are billed
// correctly.
type LineCharge struct {
	LineID       uuid.UUID
	MonthlyPrice decimal.Decimal
}

// PlanTotal computes the amount due for an advance payment: the sum of the
// selected lines' monthly prices, once per selected period. Either list
// empty means nothing to bill. Callers must already have excluded periods
// covered by each line's balance; the planner does not re-check coverage.
func PlanTotal(lines []LineCharge, periodKeys []string) (decimal.Decimal, error) {
	if len(lines) == 0 || len(periodKeys) == 0 {
		return decimal.Zero, nil
	}

	var perPeriod decimal.Decimal
	for _, line := range lines {
		if line.MonthlyPrice.Sign() < 0 {
			return decimal.Zero, customError.WrapInvalidArgument("monthly price cannot be negative")
		}
		perPeriod = perPeriod.Add(line.MonthlyPrice)
	}

	for _, key := range periodKeys {
		if _, err := utils.ParsePeriod(key); err != nil {
			return decimal.Zero, customError.WrapInvalidArgument("malformed period key " + key)
		}
	}

	return perPeriod.Mul(decimal.NewFromInt(int64(len(periodKeys)))), nil
}
