package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment methods. "mixed" marks a tender split across more than one source.
const (
	PaymentMethodBalance = "balance"
	PaymentMethodCash    = "cash"
	PaymentMethodCard    = "card"
	PaymentMethodMixed   = "mixed"
)

// Balance transaction kinds.
const (
	BalanceTxTopup      = "topup"
	BalanceTxDebit      = "debit"
	BalanceTxSettlement = "settlement"
	BalanceTxAdjustment = "adjustment"
)

// Payment is the persisted record of a single invoice settlement, with the
// audit trace required for later dispute resolution.
type Payment struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	InvoiceID      uuid.UUID       `json:"invoice_id" db:"invoice_id"`
	LineID         uuid.UUID       `json:"line_id" db:"line_id"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	Method         string          `json:"method" db:"method"`
	IsPartial      bool            `json:"is_partial" db:"is_partial"`
	RemainingAfter decimal.Decimal `json:"remaining_after" db:"remaining_after"`
	RequestID      string          `json:"request_id" db:"request_id"`
	Note           string          `json:"note" db:"note"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// Trace is the audit payload attached to a payment.
type Trace struct {
	Method         string          `json:"method"`
	Amount         decimal.Decimal `json:"amount"`
	OriginalAmount decimal.Decimal `json:"original_amount"`
	IsPartial      bool            `json:"is_partial"`
	Remaining      decimal.Decimal `json:"remaining"`
	Timestamp      time.Time       `json:"timestamp"`
	Note           string          `json:"note"`
}

// BalanceTransaction is the audit trail entry for every balance mutation
// (top-ups, monthly debits, settlements funded from balance).
type BalanceTransaction struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	LineID       uuid.UUID       `json:"line_id" db:"line_id"`
	Amount       decimal.Decimal `json:"amount" db:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after" db:"balance_after"`
	Kind         string          `json:"kind" db:"kind"`
	Reason       string          `json:"reason" db:"reason"`
	RequestID    string          `json:"request_id" db:"request_id"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// DTOs for requests and responses

type PayInvoiceRequest struct {
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	Method    string          `json:"method" validate:"required,oneof=balance cash card mixed"`
	Split     *SplitRequest   `json:"split,omitempty"`
	RequestID string          `json:"request_id" validate:"omitempty,uuid"`
	Note      string          `json:"note"`
}

type GroupPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	Method    string          `json:"method" validate:"required,oneof=balance cash card mixed"`
	RequestID string          `json:"request_id" validate:"omitempty,uuid"`
	Note      string          `json:"note"`
}

type PayInvoiceResponse struct {
	Payment   *Payment `json:"payment"`
	Invoice   *Invoice `json:"invoice"`
	Trace     *Trace   `json:"trace"`
	IsPartial bool     `json:"is_partial"`
}

type GroupPaymentResponse struct {
	Payments     []*Payment      `json:"payments"`
	RemainingDue decimal.Decimal `json:"remaining_due"`
}

type AdvancePlanRequest struct {
	LineIDs    []uuid.UUID `json:"line_ids" validate:"required,min=1,unique"`
	PeriodKeys []string    `json:"period_keys" validate:"required,min=1,unique"`
}

type AdvancePlanResponse struct {
	Total   decimal.Decimal        `json:"total"`
	PerLine []AdvancePlanLineTotal `json:"per_line"`
}

type AdvancePlanLineTotal struct {
	LineID  uuid.UUID       `json:"line_id"`
	Periods []string        `json:"periods"`
	Total   decimal.Decimal `json:"total"`
}
