package domain

import (
	"time"

	"github.com/shopspring/decimal"

	customError "github.com/mangaza/subscription-billing/pkg/errors"
)

// SettlementResult classifies one tender against an open invoice.
type SettlementResult struct {
	IsPartial    bool
	RemainingDue decimal.Decimal
	Trace        *Trace
}

// Settle classifies a tendered amount against an invoice's remaining due.
// Non-positive amounts are rejected, and so is any amount above the
// remaining due: overpayment of a single invoice is deliberately
// disallowed, the excess has to become a balance top-up instead of being
// folded into the settlement.
func Settle(invoice *Invoice, tendered decimal.Decimal, method, note string, now time.Time) (*SettlementResult, error) {
	if !invoice.IsOpen() {
		return nil, customError.WrapInvoiceAlreadyPaid(invoice.ID.String())
	}
	if tendered.Sign() <= 0 {
		return nil, customError.WrapInvalidPaymentAmount(tendered.String())
	}

	remaining := invoice.RemainingDue()
	if tendered.GreaterThan(remaining) {
		return nil, customError.WrapOverpaymentRejected(tendered.String(), remaining.String())
	}

	after := remaining.Sub(tendered)
	result := &SettlementResult{
		IsPartial:    after.Sign() > 0,
		RemainingDue: after,
		Trace: &Trace{
			Method:         method,
			Amount:         tendered,
			OriginalAmount: invoice.Amount,
			IsPartial:      after.Sign() > 0,
			Remaining:      after,
			Timestamp:      now,
			Note:           note,
		},
	}
	return result, nil
}
