package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice statuses. Partial settlements keep the invoice open with a
// durable running amount_paid instead of a transient trace-only state.
const (
	InvoiceStatusUnpaid        = "unpaid"
	InvoiceStatusPartiallyPaid = "partially_paid"
	InvoiceStatusPaid          = "paid"
)

// Invoice is one billing period's charge against a line. Created by the
// monthly generation job, mutated only by payment operations, never deleted.
// status == paid implies PaymentDate is set and RemainingDue() is zero.
type Invoice struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	LineID        uuid.UUID       `json:"line_id" db:"line_id"`
	PeriodKey     string          `json:"period_key" db:"period_key"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	AmountPaid    decimal.Decimal `json:"amount_paid" db:"amount_paid"`
	Status        string          `json:"status" db:"status"`
	PaymentDate   *time.Time      `json:"payment_date,omitempty" db:"payment_date"`
	PaymentMethod *string         `json:"payment_method,omitempty" db:"payment_method"`
	DueDate       time.Time       `json:"due_date" db:"due_date"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// RemainingDue returns the open amount on the invoice.
func (i *Invoice) RemainingDue() decimal.Decimal {
	return i.Amount.Sub(i.AmountPaid)
}

// IsOpen reports whether the invoice still accepts payments.
func (i *Invoice) IsOpen() bool {
	return i.Status != InvoiceStatusPaid
}

// DaysOverdue is derived, not stored: zero for paid invoices and for
// invoices not yet past their due date.
func (i *Invoice) DaysOverdue(now time.Time) int {
	if i.Status == InvoiceStatusPaid || !now.After(i.DueDate) {
		return 0
	}
	return int(now.Sub(i.DueDate).Hours() / 24)
}

type InvoiceListResponse struct {
	LineID   uuid.UUID  `json:"line_id"`
	Invoices []*Invoice `json:"invoices"`
}
