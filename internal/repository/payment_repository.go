package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/mangaza/subscription-billing/internal/domain"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Settle writes the invoice mutation, the payment row and the optional
// balance debit in one transaction so a failed settlement leaves no trace:
// an invoice can never be marked paid without its payment record.
func (r *paymentRepository) Settle(ctx context.Context, invoice *domain.Invoice, payment *domain.Payment, trace *domain.Trace, balanceDebit decimal.Decimal) error {
	traceJSON, err := json.Marshal(trace)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE invoices
		SET amount_paid = $2, status = $3, payment_date = $4, payment_method = $5, updated_at = $6
		WHERE id = $1
	`,
		invoice.ID,
		invoice.AmountPaid,
		invoice.Status,
		invoice.PaymentDate,
		invoice.PaymentMethod,
		time.Now(),
	)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payments (id, invoice_id, line_id, amount, method, is_partial, remaining_after, request_id, note, trace, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		payment.ID,
		payment.InvoiceID,
		payment.LineID,
		payment.Amount,
		payment.Method,
		payment.IsPartial,
		payment.RemainingAfter,
		payment.RequestID,
		payment.Note,
		traceJSON,
		payment.CreatedAt,
	)
	if err != nil {
		return err
	}

	if balanceDebit.Sign() > 0 {
		var balanceAfter decimal.Decimal
		err = tx.QueryRowxContext(ctx, `
			UPDATE lines
			SET balance = balance - $2, updated_at = $3
			WHERE id = $1
			RETURNING balance
		`, payment.LineID, balanceDebit, time.Now()).Scan(&balanceAfter)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO balance_transactions (id, line_id, amount, balance_after, kind, reason, request_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			uuid.New(),
			payment.LineID,
			balanceDebit.Neg(),
			balanceAfter,
			domain.BalanceTxSettlement,
			"invoice "+invoice.ID.String(),
			payment.RequestID,
			payment.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *paymentRepository) GetByInvoiceID(ctx context.Context, invoiceID uuid.UUID) ([]*domain.Payment, error) {
	query := `
		SELECT id, invoice_id, line_id, amount, method, is_partial, remaining_after, request_id, note, created_at
		FROM payments
		WHERE invoice_id = $1
		ORDER BY created_at
	`

	var payments []*domain.Payment
	err := r.db.SelectContext(ctx, &payments, query, invoiceID)
	if err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) GetByLineID(ctx context.Context, lineID uuid.UUID) ([]*domain.Payment, error) {
	query := `
		SELECT id, invoice_id, line_id, amount, method, is_partial, remaining_after, request_id, note, created_at
		FROM payments
		WHERE line_id = $1
		ORDER BY created_at DESC
	`

	var payments []*domain.Payment
	err := r.db.SelectContext(ctx, &payments, query, lineID)
	if err != nil {
		return nil, err
	}

	return payments, nil
}
