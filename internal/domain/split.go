package domain

import (
	"github.com/shopspring/decimal"

	customError "github.com/mangaza/subscription-billing/pkg/errors"
)

// PaymentSplit is the ephemeral tri-way division of a tendered amount.
type PaymentSplit struct {
	Balance decimal.Decimal
	Cash    decimal.Decimal
	Card    decimal.Decimal
}

// SplitResult reports how a validated split settles. AmountToBalance is the
// "new money" (cash + card) eligible to be credited to the line's stored
// balance. Money tendered from existing balance is never re-credited: the
// balance field is the ground truth for available funds and re-adding it
// would create phantom credit.
type SplitResult struct {
	AmountToBalance decimal.Decimal
	BalanceOnly     bool
}

// Sum returns balance + cash + card.
func (s PaymentSplit) Sum() decimal.Decimal {
	return s.Balance.Add(s.Cash).Add(s.Card)
}

// NewMoney returns the cash + card portion of the split.
func (s PaymentSplit) NewMoney() decimal.Decimal {
	return s.Cash.Add(s.Card)
}

// Method classifies the split as a single payment method, or mixed when
// more than one part is non-zero.
func (s PaymentSplit) Method() string {
	nonZero := 0
	method := PaymentMethodBalance
	if s.Balance.Sign() > 0 {
		nonZero++
	}
	if s.Cash.Sign() > 0 {
		nonZero++
		method = PaymentMethodCash
	}
	if s.Card.Sign() > 0 {
		nonZero++
		method = PaymentMethodCard
	}
	if nonZero > 1 {
		return PaymentMethodMixed
	}
	return method
}

// ValidateSplit checks a tender split against the target total and the
// line's available balance. The three parts must be non-negative, the
// balance part may not exceed what the line actually holds, and the parts
// must sum to the total within epsilon. Mismatches block the operation;
// they are never silently corrected.
func ValidateSplit(split PaymentSplit, total, availableBalance, epsilon decimal.Decimal) (*SplitResult, error) {
	if split.Balance.Sign() < 0 || split.Cash.Sign() < 0 || split.Card.Sign() < 0 {
		return nil, customError.WrapInvalidArgument("split parts cannot be negative")
	}
	if split.Balance.GreaterThan(availableBalance) {
		return nil, customError.WrapInsufficientBalance(split.Balance.String(), availableBalance.String())
	}
	if split.Sum().Sub(total).Abs().GreaterThanOrEqual(epsilon) {
		return nil, customError.WrapSplitMismatch(split.Sum().String(), total.String())
	}

	newMoney := split.NewMoney()
	return &SplitResult{
		AmountToBalance: newMoney,
		BalanceOnly:     newMoney.Sign() == 0,
	}, nil
}
