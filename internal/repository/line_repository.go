package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/mangaza/subscription-billing/internal/domain"
)

type lineRepository struct {
	db *sqlx.DB
}

func NewLineRepository(db *sqlx.DB) LineRepository {
	return &lineRepository{db: db}
}

func (r *lineRepository) Create(ctx context.Context, line *domain.Line) error {
	query := `
		INSERT INTO lines (id, client_id, phone_number, monthly_price, balance, payment_status, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		line.ID,
		line.ClientID,
		line.PhoneNumber,
		line.MonthlyPrice,
		line.Balance,
		line.PaymentStatus,
		line.Active,
		line.CreatedAt,
		line.UpdatedAt,
	)

	return err
}

func (r *lineRepository) GetByID(ctx context.Context, lineID uuid.UUID) (*domain.Line, error) {
	query := `
		SELECT id, client_id, phone_number, monthly_price, balance, payment_status, active, created_at, updated_at
		FROM lines
		WHERE id = $1
	`

	var line domain.Line
	err := r.db.GetContext(ctx, &line, query, lineID)
	if err != nil {
		return nil, err
	}

	return &line, nil
}

func (r *lineRepository) GetByClientID(ctx context.Context, clientID string) ([]*domain.Line, error) {
	query := `
		SELECT id, client_id, phone_number, monthly_price, balance, payment_status, active, created_at, updated_at
		FROM lines
		WHERE client_id = $1
		ORDER BY phone_number
	`

	var lines []*domain.Line
	err := r.db.SelectContext(ctx, &lines, query, clientID)
	if err != nil {
		return nil, err
	}

	return lines, nil
}

func (r *lineRepository) GetActive(ctx context.Context) ([]*domain.Line, error) {
	query := `
		SELECT id, client_id, phone_number, monthly_price, balance, payment_status, active, created_at, updated_at
		FROM lines
		WHERE active = true
		ORDER BY phone_number
	`

	var lines []*domain.Line
	err := r.db.SelectContext(ctx, &lines, query)
	if err != nil {
		return nil, err
	}

	return lines, nil
}

// AddBalance applies the delta and writes the audit row in one transaction
// so the balance and its trail cannot diverge.
func (r *lineRepository) AddBalance(ctx context.Context, lineID uuid.UUID, delta decimal.Decimal, kind, reason, requestID string) (*domain.BalanceTransaction, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var balanceAfter decimal.Decimal
	err = tx.QueryRowxContext(ctx, `
		UPDATE lines
		SET balance = balance + $2, updated_at = $3
		WHERE id = $1
		RETURNING balance
	`, lineID, delta, time.Now()).Scan(&balanceAfter)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}

	balanceTx := &domain.BalanceTransaction{
		ID:           uuid.New(),
		LineID:       lineID,
		Amount:       delta,
		BalanceAfter: balanceAfter,
		Kind:         kind,
		Reason:       reason,
		RequestID:    requestID,
		CreatedAt:    time.Now(),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO balance_transactions (id, line_id, amount, balance_after, kind, reason, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		balanceTx.ID,
		balanceTx.LineID,
		balanceTx.Amount,
		balanceTx.BalanceAfter,
		balanceTx.Kind,
		balanceTx.Reason,
		balanceTx.RequestID,
		balanceTx.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return balanceTx, nil
}

func (r *lineRepository) UpdatePaymentStatus(ctx context.Context, lineID uuid.UUID, status string) error {
	query := `
		UPDATE lines
		SET payment_status = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, lineID, status, time.Now())
	return err
}

func (r *lineRepository) Deactivate(ctx context.Context, lineID uuid.UUID) error {
	query := `
		UPDATE lines
		SET active = false, updated_at = $2
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, lineID, time.Now())
	return err
}

func (r *lineRepository) GetBalanceTransactions(ctx context.Context, lineID uuid.UUID) ([]*domain.BalanceTransaction, error) {
	query := `
		SELECT id, line_id, amount, balance_after, kind, reason, request_id, created_at
		FROM balance_transactions
		WHERE line_id = $1
		ORDER BY created_at DESC
	`

	var txs []*domain.BalanceTransaction
	err := r.db.SelectContext(ctx, &txs, query, lineID)
	if err != nil {
		return nil, err
	}

	return txs, nil
}
