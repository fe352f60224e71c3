package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line payment statuses, recomputed by the daily automation sweep.
const (
	LinePaymentUpToDate   = "up_to_date"
	LinePaymentLate       = "late"
	LinePaymentDebt       = "debt"
	LinePaymentUnassigned = "unassigned"
)

// Line represents a billable phone subscription. The balance is prepaid
// credit against future months and may go negative (debt). Lines are never
// deleted, only deactivated.
type Line struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	ClientID      string          `json:"client_id" db:"client_id"`
	PhoneNumber   string          `json:"phone_number" db:"phone_number"`
	MonthlyPrice  decimal.Decimal `json:"monthly_price" db:"monthly_price"`
	Balance       decimal.Decimal `json:"balance" db:"balance"`
	PaymentStatus string          `json:"payment_status" db:"payment_status"`
	Active        bool            `json:"active" db:"active"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// DTOs for requests and responses

type CreateLineRequest struct {
	ClientID     string          `json:"client_id" validate:"required"`
	PhoneNumber  string          `json:"phone_number" validate:"required"`
	MonthlyPrice decimal.Decimal `json:"monthly_price" validate:"required"`
}

type AddBalanceRequest struct {
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	Reason    string          `json:"reason"`
	RequestID string          `json:"request_id" validate:"omitempty,uuid"`
	Split     *SplitRequest   `json:"split,omitempty"`
}

// SplitRequest is the wire form of a tri-way tender split.
type SplitRequest struct {
	Balance decimal.Decimal `json:"balance"`
	Cash    decimal.Decimal `json:"cash"`
	Card    decimal.Decimal `json:"card"`
}

type ClientOverviewResponse struct {
	ClientID     string          `json:"client_id"`
	Lines        []*Line         `json:"lines"`
	TotalBalance decimal.Decimal `json:"total_balance"`
	UnpaidCount  int             `json:"unpaid_count"`
	UnpaidTotal  decimal.Decimal `json:"unpaid_total"`
	Invoices     []*Invoice      `json:"unpaid_invoices"`
}

type CoverageResponse struct {
	LineID        uuid.UUID `json:"line_id"`
	CoveredMonths int       `json:"covered_months"`
	Periods       []Period  `json:"periods"`
}
