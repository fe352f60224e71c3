package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mangaza/subscription-billing/pkg/utils"
)

// Period is one future billing month offered for advance payment. Offset is
// 1-based relative to the current month; Covered is true when the line's
// balance already pays for it.
type Period struct {
	Key     string `json:"key"`
	Offset  int    `json:"offset"`
	Covered bool   `json:"covered"`
}

// CoveredMonths returns how many future billing months a balance already
// pays for at the given monthly price: floor(balance / monthlyPrice),
// clamped to zero. A zero or negative price covers nothing; callers must
// supply a sane fallback price instead of dividing by zero.
func CoveredMonths(balance, monthlyPrice decimal.Decimal) int {
	if monthlyPrice.Sign() <= 0 || balance.Sign() <= 0 {
		return 0
	}
	return int(balance.Div(monthlyPrice).Floor().IntPart())
}

// UpcomingPeriods labels the next horizon calendar months after now as
// covered or available for purchase, based on the line's balance.
func UpcomingPeriods(now time.Time, horizon int, balance, monthlyPrice decimal.Decimal) []Period {
	covered := CoveredMonths(balance, monthlyPrice)

	periods := make([]Period, 0, horizon)
	for offset := 1; offset <= horizon; offset++ {
		periods = append(periods, Period{
			Key:     utils.PeriodAfter(now, offset),
			Offset:  offset,
			Covered: offset <= covered,
		})
	}
	return periods
}
