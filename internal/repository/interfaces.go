package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mangaza/subscription-billing/internal/domain"
)

// LineRepository defines the interface for line data operations
type LineRepository interface {
	// Create provisions a new line
	Create(ctx context.Context, line *domain.Line) error

	// GetByID retrieves a line by its id
	GetByID(ctx context.Context, lineID uuid.UUID) (*domain.Line, error)

	// GetByClientID retrieves all lines owned by a client
	GetByClientID(ctx context.Context, clientID string) ([]*domain.Line, error)

	// GetActive retrieves all active lines
	GetActive(ctx context.Context) ([]*domain.Line, error)

	// AddBalance atomically applies a signed delta to a line's balance and
	// records the matching balance transaction
	AddBalance(ctx context.Context, lineID uuid.UUID, delta decimal.Decimal, kind, reason, requestID string) (*domain.BalanceTransaction, error)

	// UpdatePaymentStatus sets a line's payment status
	UpdatePaymentStatus(ctx context.Context, lineID uuid.UUID, status string) error

	// Deactivate marks a line inactive; lines are never deleted
	Deactivate(ctx context.Context, lineID uuid.UUID) error

	// GetBalanceTransactions retrieves the balance audit trail for a line
	GetBalanceTransactions(ctx context.Context, lineID uuid.UUID) ([]*domain.BalanceTransaction, error)
}

// InvoiceRepository defines the interface for invoice data operations
type InvoiceRepository interface {
	// Create creates a new invoice
	Create(ctx context.Context, invoice *domain.Invoice) error

	// GetByID retrieves an invoice by its id
	GetByID(ctx context.Context, invoiceID uuid.UUID) (*domain.Invoice, error)

	// GetByLineID retrieves all invoices for a line, newest period first
	GetByLineID(ctx context.Context, lineID uuid.UUID) ([]*domain.Invoice, error)

	// GetUnpaidByClientID retrieves open invoices across a client's lines,
	// oldest period first
	GetUnpaidByClientID(ctx context.Context, clientID string) ([]*domain.Invoice, error)

	// GetByLineAndPeriod retrieves a line's invoice for one billing period
	GetByLineAndPeriod(ctx context.Context, lineID uuid.UUID, periodKey string) (*domain.Invoice, error)

	// ExistsForPeriod reports whether a line already has an invoice for a period
	ExistsForPeriod(ctx context.Context, lineID uuid.UUID, periodKey string) (bool, error)

	// CountOpenPastDue counts a line's open invoices past their due date
	CountOpenPastDue(ctx context.Context, lineID uuid.UUID, now time.Time) (int, error)
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	// Settle persists one settlement atomically: the invoice's running
	// amount_paid and status, the payment record with its audit trace, and,
	// when balanceDebit is positive, the matching debit of the line's
	// stored balance
	Settle(ctx context.Context, invoice *domain.Invoice, payment *domain.Payment, trace *domain.Trace, balanceDebit decimal.Decimal) error

	// GetByInvoiceID retrieves all payments against an invoice
	GetByInvoiceID(ctx context.Context, invoiceID uuid.UUID) ([]*domain.Payment, error)

	// GetByLineID retrieves all payments for a line
	GetByLineID(ctx context.Context, lineID uuid.UUID) ([]*domain.Payment, error)
}
