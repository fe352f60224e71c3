package utils

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PeriodLayout is the billing-period key format, e.g. "2026-09".
const PeriodLayout = "2006-01"

// FormatPeriod renders a time as a billing-period key.
func FormatPeriod(t time.Time) string {
	return t.Format(PeriodLayout)
}

// ParsePeriod parses a billing-period key into the first day of that month.
func ParsePeriod(key string) (time.Time, error) {
	t, err := time.Parse(PeriodLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid period key %q: %w", key, err)
	}
	return t, nil
}

// PeriodAfter returns the period key a number of months after t. Month
// arithmetic is done on the first of the month so end-of-month dates cannot
// spill into the wrong period.
func PeriodAfter(t time.Time, months int) string {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return FormatPeriod(first.AddDate(0, months, 0))
}

// PeriodOffset returns how many whole months after t's month a period key
// falls. The current month is offset 0, next month offset 1, past months
// are negative.
func PeriodOffset(t time.Time, key string) (int, error) {
	target, err := ParsePeriod(key)
	if err != nil {
		return 0, err
	}
	return (target.Year()-t.Year())*12 + int(target.Month()) - int(t.Month()), nil
}

// CurrentPeriod returns the period key for t's month.
func CurrentPeriod(t time.Time) string {
	return FormatPeriod(t)
}

// DueDateFor returns the due date of an invoice in the given period: the
// 15th of that month.
func DueDateFor(periodStart time.Time) time.Time {
	return time.Date(periodStart.Year(), periodStart.Month(), 15, 0, 0, 0, 0, periodStart.Location())
}

// IsDateOverdue checks if a due date is past the reference date.
func IsDateOverdue(dueDate, now time.Time) bool {
	return now.After(dueDate)
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
