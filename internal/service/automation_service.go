package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mangaza/subscription-billing/internal/config"
	"github.com/mangaza/subscription-billing/internal/domain"
	"github.com/mangaza/subscription-billing/internal/repository"
	customError "github.com/mangaza/subscription-billing/pkg/errors"
	"github.com/mangaza/subscription-billing/pkg/utils"
)

// AutomationService runs the monthly billing cycle: invoice generation on
// the first of the month, the balance debit that consumes prepaid credit,
// and the daily sweep that recomputes line payment statuses.
type AutomationService struct {
	lineRepo    repository.LineRepository
	invoiceRepo repository.InvoiceRepository
	paymentRepo repository.PaymentRepository
	config      *config.Config
}

func NewAutomationService(
	lineRepo repository.LineRepository,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	cfg *config.Config,
) *AutomationService {
	return &AutomationService{
		lineRepo:    lineRepo,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		config:      cfg,
	}
}

// GenerateMonthlyInvoices creates one unpaid invoice per active line for
// the current period at the line's monthly price. Lines that already have
// an invoice for the period are skipped, so re-running the job is safe.
func (s *AutomationService) GenerateMonthlyInvoices(ctx context.Context, now time.Time) (int, error) {
	periodKey := utils.CurrentPeriod(now)
	periodStart, err := utils.ParsePeriod(periodKey)
	if err != nil {
		return 0, customError.WrapInvalidArgument(err.Error())
	}

	lines, err := s.lineRepo.GetActive(ctx)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	created := 0
	for _, line := range lines {
		exists, err := s.invoiceRepo.ExistsForPeriod(ctx, line.ID, periodKey)
		if err != nil {
			return created, customError.WrapDatabaseError(err)
		}
		if exists {
			continue
		}

		invoice := &domain.Invoice{
			ID:        uuid.New(),
			LineID:    line.ID,
			PeriodKey: periodKey,
			Amount:    line.MonthlyPrice,
			Status:    domain.InvoiceStatusUnpaid,
			DueDate:   utils.DueDateFor(periodStart),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
			return created, customError.WrapDatabaseError(err)
		}
		created++
	}

	return created, nil
}

// DebitMonthlyCharges debits every active line's balance by its monthly
// price. Balances may go negative (debt). When the balance covered the
// charge, the period's invoice is settled as paid from balance.
func (s *AutomationService) DebitMonthlyCharges(ctx context.Context, now time.Time) (int, error) {
	periodKey := utils.CurrentPeriod(now)

	lines, err := s.lineRepo.GetActive(ctx)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	debited := 0
	for _, line := range lines {
		if line.MonthlyPrice.Sign() <= 0 {
			continue
		}

		balanceTx, err := s.lineRepo.AddBalance(ctx, line.ID, line.MonthlyPrice.Neg(), domain.BalanceTxDebit, "monthly charge "+periodKey, "")
		if err != nil {
			return debited, customError.WrapDatabaseError(err)
		}
		debited++

		if balanceTx.BalanceAfter.Sign() < 0 {
			continue
		}

		if err := s.settleFromBalance(ctx, line, periodKey, now); err != nil {
			log.Printf("could not settle %s invoice for line %s from balance: %v", periodKey, line.ID, err)
		}
	}

	return debited, nil
}

// settleFromBalance marks the line's invoice for the period as paid from
// balance after a successful debit.
func (s *AutomationService) settleFromBalance(ctx context.Context, line *domain.Line, periodKey string, now time.Time) error {
	invoice, err := s.invoiceRepo.GetByLineAndPeriod(ctx, line.ID, periodKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return customError.WrapDatabaseError(err)
	}
	if !invoice.IsOpen() {
		return nil
	}

	result, err := domain.Settle(invoice, invoice.RemainingDue(), domain.PaymentMethodBalance, "monthly debit", now)
	if err != nil {
		return err
	}

	method := domain.PaymentMethodBalance
	invoice.AmountPaid = invoice.Amount
	invoice.Status = domain.InvoiceStatusPaid
	invoice.PaymentDate = &now
	invoice.PaymentMethod = &method

	payment := &domain.Payment{
		ID:             uuid.New(),
		InvoiceID:      invoice.ID,
		LineID:         line.ID,
		Amount:         invoice.Amount,
		Method:         method,
		IsPartial:      false,
		RemainingAfter: result.RemainingDue,
		Note:           "monthly debit " + periodKey,
		CreatedAt:      now,
	}

	// The monthly debit already moved the money off the balance, so the
	// settlement itself carries no further debit.
	if err := s.paymentRepo.Settle(ctx, invoice, payment, result.Trace, decimal.Zero); err != nil {
		return customError.WrapDatabaseError(err)
	}

	return nil
}

// SweepPaymentStatuses recomputes every active line's payment status:
// unassigned lines have no client, debt means a negative balance, late
// means an open invoice past its due date, everything else is up to date.
func (s *AutomationService) SweepPaymentStatuses(ctx context.Context, now time.Time) (int, error) {
	lines, err := s.lineRepo.GetActive(ctx)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	updated := 0
	for _, line := range lines {
		status, err := s.statusFor(ctx, line, now)
		if err != nil {
			return updated, err
		}
		if status == line.PaymentStatus {
			continue
		}

		if err := s.lineRepo.UpdatePaymentStatus(ctx, line.ID, status); err != nil {
			return updated, customError.WrapDatabaseError(err)
		}
		updated++
	}

	return updated, nil
}

func (s *AutomationService) statusFor(ctx context.Context, line *domain.Line, now time.Time) (string, error) {
	if line.ClientID == "" {
		return domain.LinePaymentUnassigned, nil
	}
	if line.Balance.Sign() < 0 {
		return domain.LinePaymentDebt, nil
	}

	overdue, err := s.invoiceRepo.CountOpenPastDue(ctx, line.ID, now)
	if err != nil {
		return "", customError.WrapDatabaseError(err)
	}
	if overdue > 0 {
		return domain.LinePaymentLate, nil
	}

	return domain.LinePaymentUpToDate, nil
}
