package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mangaza/subscription-billing/internal/domain"
)

type invoiceRepository struct {
	db *sqlx.DB
}

func NewInvoiceRepository(db *sqlx.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	query := `
		INSERT INTO invoices (id, line_id, period_key, amount, amount_paid, status, payment_date, payment_method, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		invoice.ID,
		invoice.LineID,
		invoice.PeriodKey,
		invoice.Amount,
		invoice.AmountPaid,
		invoice.Status,
		invoice.PaymentDate,
		invoice.PaymentMethod,
		invoice.DueDate,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	)

	return err
}

func (r *invoiceRepository) GetByID(ctx context.Context, invoiceID uuid.UUID) (*domain.Invoice, error) {
	query := `
		SELECT id, line_id, period_key, amount, amount_paid, status, payment_date, payment_method, due_date, created_at, updated_at
		FROM invoices
		WHERE id = $1
	`

	var invoice domain.Invoice
	err := r.db.GetContext(ctx, &invoice, query, invoiceID)
	if err != nil {
		return nil, err
	}

	return &invoice, nil
}

func (r *invoiceRepository) GetByLineID(ctx context.Context, lineID uuid.UUID) ([]*domain.Invoice, error) {
	query := `
		SELECT id, line_id, period_key, amount, amount_paid, status, payment_date, payment_method, due_date, created_at, updated_at
		FROM invoices
		WHERE line_id = $1
		ORDER BY period_key DESC
	`

	var invoices []*domain.Invoice
	err := r.db.SelectContext(ctx, &invoices, query, lineID)
	if err != nil {
		return nil, err
	}

	return invoices, nil
}

// GetUnpaidByClientID orders oldest period first so group payments settle
// the longest-standing debt before anything newer.
func (r *invoiceRepository) GetUnpaidByClientID(ctx context.Context, clientID string) ([]*domain.Invoice, error) {
	query := `
		SELECT i.id, i.line_id, i.period_key, i.amount, i.amount_paid, i.status, i.payment_date, i.payment_method, i.due_date, i.created_at, i.updated_at
		FROM invoices i
		JOIN lines l ON l.id = i.line_id
		WHERE l.client_id = $1 AND i.status != 'paid'
		ORDER BY i.period_key, i.created_at
	`

	var invoices []*domain.Invoice
	err := r.db.SelectContext(ctx, &invoices, query, clientID)
	if err != nil {
		return nil, err
	}

	return invoices, nil
}

func (r *invoiceRepository) GetByLineAndPeriod(ctx context.Context, lineID uuid.UUID, periodKey string) (*domain.Invoice, error) {
	query := `
		SELECT id, line_id, period_key, amount, amount_paid, status, payment_date, payment_method, due_date, created_at, updated_at
		FROM invoices
		WHERE line_id = $1 AND period_key = $2
	`

	var invoice domain.Invoice
	err := r.db.GetContext(ctx, &invoice, query, lineID, periodKey)
	if err != nil {
		return nil, err
	}

	return &invoice, nil
}

func (r *invoiceRepository) ExistsForPeriod(ctx context.Context, lineID uuid.UUID, periodKey string) (bool, error) {
	query := `
		SELECT COUNT(1)
		FROM invoices
		WHERE line_id = $1 AND period_key = $2
	`

	var count int
	err := r.db.GetContext(ctx, &count, query, lineID, periodKey)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *invoiceRepository) CountOpenPastDue(ctx context.Context, lineID uuid.UUID, now time.Time) (int, error) {
	query := `
		SELECT COUNT(1)
		FROM invoices
		WHERE line_id = $1 AND status != 'paid' AND due_date < $2
	`

	var count int
	err := r.db.GetContext(ctx, &count, query, lineID, now)
	if err != nil {
		return 0, err
	}

	return count, nil
}
