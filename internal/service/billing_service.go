package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/mangaza/subscription-billing/internal/config"
	"github.com/mangaza/subscription-billing/internal/domain"
	"github.com/mangaza/subscription-billing/internal/idempotency"
	"github.com/mangaza/subscription-billing/internal/render"
	"github.com/mangaza/subscription-billing/internal/repository"
	customError "github.com/mangaza/subscription-billing/pkg/errors"
	"github.com/mangaza/subscription-billing/pkg/utils"
)

const overviewCachePrefix = "client:overview:"

type BillingService struct {
	lineRepo    repository.LineRepository
	invoiceRepo repository.InvoiceRepository
	paymentRepo repository.PaymentRepository
	requests    idempotency.Store
	redis       *redis.Client
	config      *config.Config
}

func NewBillingService(
	lineRepo repository.LineRepository,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	requests idempotency.Store,
	redisClient *redis.Client,
	cfg *config.Config,
) *BillingService {
	return &BillingService{
		lineRepo:    lineRepo,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		requests:    requests,
		redis:       redisClient,
		config:      cfg,
	}
}

// CreateLine registers a new billable subscription line with an empty
// balance.
func (s *BillingService) CreateLine(ctx context.Context, req *domain.CreateLineRequest) (*domain.Line, error) {
	if req.MonthlyPrice.Sign() <= 0 {
		return nil, customError.WrapInvalidArgument("monthly_price must be positive")
	}

	now := time.Now()
	line := &domain.Line{
		ID:            uuid.New(),
		ClientID:      req.ClientID,
		PhoneNumber:   req.PhoneNumber,
		MonthlyPrice:  req.MonthlyPrice,
		Balance:       decimal.Zero,
		PaymentStatus: domain.LinePaymentUpToDate,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if line.ClientID == "" {
		line.PaymentStatus = domain.LinePaymentUnassigned
	}

	if err := s.lineRepo.Create(ctx, line); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateOverview(ctx, line.ClientID)

	return line, nil
}

// DeactivateLine takes a line out of the billing cycle. The line and its
// history are kept.
func (s *BillingService) DeactivateLine(ctx context.Context, lineID uuid.UUID) error {
	line, err := s.getLine(ctx, lineID)
	if err != nil {
		return err
	}

	if err := s.lineRepo.Deactivate(ctx, lineID); err != nil {
		return customError.WrapDatabaseError(err)
	}

	s.invalidateOverview(ctx, line.ClientID)

	return nil
}

// GetBalanceHistory returns a line's balance audit trail, newest first.
func (s *BillingService) GetBalanceHistory(ctx context.Context, lineID uuid.UUID) ([]*domain.BalanceTransaction, error) {
	if _, err := s.getLine(ctx, lineID); err != nil {
		return nil, err
	}

	transactions, err := s.lineRepo.GetBalanceTransactions(ctx, lineID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return transactions, nil
}

// GetClientOverview returns a client's lines, balances and unpaid-invoice
// summary. The result is cached in Redis for a short TTL and invalidated by
// every payment mutation touching the client.
func (s *BillingService) GetClientOverview(ctx context.Context, clientID string) (*domain.ClientOverviewResponse, error) {
	cacheKey := overviewCachePrefix + clientID

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var overview domain.ClientOverviewResponse
			if err := json.Unmarshal(cached, &overview); err == nil {
				return &overview, nil
			}
		}
	}

	lines, err := s.lineRepo.GetByClientID(ctx, clientID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	unpaid, err := s.invoiceRepo.GetUnpaidByClientID(ctx, clientID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	overview := &domain.ClientOverviewResponse{
		ClientID: clientID,
		Lines:    lines,
		Invoices: unpaid,
	}
	for _, line := range lines {
		overview.TotalBalance = overview.TotalBalance.Add(line.Balance)
	}
	for _, inv := range unpaid {
		overview.UnpaidCount++
		overview.UnpaidTotal = overview.UnpaidTotal.Add(inv.RemainingDue())
	}

	if s.redis != nil {
		if encoded, err := json.Marshal(overview); err == nil {
			s.redis.Set(ctx, cacheKey, encoded, s.config.Business.OverviewCacheTTL)
		}
	}

	return overview, nil
}

// GetLineInvoices returns a line's invoice history projected through a
// filter mode (all, paid, unpaid, overdue).
func (s *BillingService) GetLineInvoices(ctx context.Context, lineID uuid.UUID, mode string) ([]*domain.Invoice, error) {
	invoices, err := s.invoiceRepo.GetByLineID(ctx, lineID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return domain.FilterInvoices(invoices, mode, time.Now()), nil
}

// GetUnpaidInvoices returns a client's open invoices, oldest first.
func (s *BillingService) GetUnpaidInvoices(ctx context.Context, clientID string) ([]*domain.Invoice, error) {
	invoices, err := s.invoiceRepo.GetUnpaidByClientID(ctx, clientID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return invoices, nil
}

// GetInvoiceDocument renders an invoice as a printable document.
func (s *BillingService) GetInvoiceDocument(ctx context.Context, invoiceID uuid.UUID) ([]byte, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapInvoiceNotFound(invoiceID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	line, err := s.getLine(ctx, invoice.LineID)
	if err != nil {
		return nil, err
	}

	return render.InvoiceDocument(invoice, line)
}

// GetCoverage labels the upcoming billing periods of a line as covered or
// available, based on how many months its balance already pays for.
func (s *BillingService) GetCoverage(ctx context.Context, lineID uuid.UUID) (*domain.CoverageResponse, error) {
	line, err := s.getLine(ctx, lineID)
	if err != nil {
		return nil, err
	}

	return &domain.CoverageResponse{
		LineID:        line.ID,
		CoveredMonths: domain.CoveredMonths(line.Balance, line.MonthlyPrice),
		Periods:       domain.UpcomingPeriods(time.Now(), s.config.Business.CoverageHorizonMonths, line.Balance, line.MonthlyPrice),
	}, nil
}

// PlanAdvancePayment computes the amount due for selected lines across
// selected future periods, excluding periods already covered by balance.
// Coverage is applied per line by default; with FOCUS_LINE_COVERAGE set the
// first selected line's coverage is applied to every line, matching the
// legacy front office during migration.
func (s *BillingService) PlanAdvancePayment(ctx context.Context, req *domain.AdvancePlanRequest) (*domain.AdvancePlanResponse, error) {
	now := time.Now()

	lines := make([]*domain.Line, 0, len(req.LineIDs))
	for _, lineID := range req.LineIDs {
		line, err := s.getLine(ctx, lineID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	// A period selected twice is still one month of service.
	offsets := make(map[string]int, len(req.PeriodKeys))
	periodKeys := make([]string, 0, len(req.PeriodKeys))
	for _, key := range req.PeriodKeys {
		if _, seen := offsets[key]; seen {
			continue
		}
		offset, err := utils.PeriodOffset(now, key)
		if err != nil {
			return nil, customError.WrapInvalidArgument(err.Error())
		}
		if offset < 1 {
			return nil, customError.WrapInvalidArgument("period " + key + " is not a future period")
		}
		offsets[key] = offset
		periodKeys = append(periodKeys, key)
	}

	focusCovered := 0
	if s.config.Business.FocusLineCoverage && len(lines) > 0 {
		focusCovered = domain.CoveredMonths(lines[0].Balance, lines[0].MonthlyPrice)
	}

	response := &domain.AdvancePlanResponse{}
	for _, line := range lines {
		covered := focusCovered
		if !s.config.Business.FocusLineCoverage {
			covered = domain.CoveredMonths(line.Balance, line.MonthlyPrice)
		}

		periods := make([]string, 0, len(periodKeys))
		for _, key := range periodKeys {
			if offsets[key] > covered {
				periods = append(periods, key)
			}
		}

		total, err := domain.PlanTotal([]domain.LineCharge{{LineID: line.ID, MonthlyPrice: line.MonthlyPrice}}, periods)
		if err != nil {
			return nil, err
		}

		response.PerLine = append(response.PerLine, domain.AdvancePlanLineTotal{
			LineID:  line.ID,
			Periods: periods,
			Total:   total,
		})
		response.Total = response.Total.Add(total)
	}

	return response, nil
}

// AddBalance credits a line's prepaid balance. When a tender split is
// given, only the cash and card parts are credited: money tendered from the
// existing balance is already counted there, and a balance-only tender
// performs no mutation at all because the monthly debit will consume the
// funds where they sit.
func (s *BillingService) AddBalance(ctx context.Context, lineID uuid.UUID, req *domain.AddBalanceRequest) (*domain.BalanceTransaction, error) {
	if req.Amount.Sign() <= 0 {
		return nil, customError.WrapInvalidPaymentAmount(req.Amount.String())
	}

	line, err := s.getLine(ctx, lineID)
	if err != nil {
		return nil, err
	}

	credit := req.Amount
	if req.Split != nil {
		result, err := domain.ValidateSplit(domain.PaymentSplit{
			Balance: req.Split.Balance,
			Cash:    req.Split.Cash,
			Card:    req.Split.Card,
		}, req.Amount, line.Balance, s.config.GetSplitEpsilon())
		if err != nil {
			return nil, err
		}

		if result.BalanceOnly {
			// Informational success: the balance itself is the ground truth
			// for available funds, re-crediting it would create phantom money.
			return &domain.BalanceTransaction{
				ID:           uuid.New(),
				LineID:       line.ID,
				Amount:       decimal.Zero,
				BalanceAfter: line.Balance,
				Kind:         domain.BalanceTxTopup,
				Reason:       req.Reason,
				RequestID:    req.RequestID,
				CreatedAt:    time.Now(),
			}, nil
		}
		credit = result.AmountToBalance
	}

	if err := s.claimRequest(ctx, req.RequestID); err != nil {
		return nil, err
	}

	balanceTx, err := s.lineRepo.AddBalance(ctx, lineID, credit, domain.BalanceTxTopup, req.Reason, req.RequestID)
	if err != nil {
		s.releaseRequest(ctx, req.RequestID)
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateOverview(ctx, line.ClientID)

	return balanceTx, nil
}

// PayInvoice settles a tendered amount against a single open invoice. Full
// tenders close the invoice; partial tenders leave it open with a durable
// running amount_paid. Overpayment is rejected, the excess has to go
// through AddBalance instead.
func (s *BillingService) PayInvoice(ctx context.Context, invoiceID uuid.UUID, req *domain.PayInvoiceRequest) (*domain.PayInvoiceResponse, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapInvoiceNotFound(invoiceID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	line, err := s.getLine(ctx, invoice.LineID)
	if err != nil {
		return nil, err
	}

	method := req.Method
	var balancePart decimal.Decimal
	if req.Split != nil {
		split := domain.PaymentSplit{
			Balance: req.Split.Balance,
			Cash:    req.Split.Cash,
			Card:    req.Split.Card,
		}
		if _, err := domain.ValidateSplit(split, req.Amount, line.Balance, s.config.GetSplitEpsilon()); err != nil {
			return nil, err
		}
		method = split.Method()
		balancePart = split.Balance
	}

	result, err := domain.Settle(invoice, req.Amount, method, req.Note, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.claimRequest(ctx, req.RequestID); err != nil {
		return nil, err
	}

	// The balance part of the tender funded the invoice, so it leaves the
	// stored balance in the same write; cash and card never touch it.
	payment, err := s.persistSettlement(ctx, invoice, line, req.Amount, method, req.RequestID, req.Note, result, balancePart)
	if err != nil {
		s.releaseRequest(ctx, req.RequestID)
		return nil, err
	}

	s.invalidateOverview(ctx, line.ClientID)

	return &domain.PayInvoiceResponse{
		Payment:   payment,
		Invoice:   invoice,
		Trace:     result.Trace,
		IsPartial: result.IsPartial,
	}, nil
}

// PayAllUnpaid settles a client's open invoices oldest first from a single
// tendered amount. The tail invoice may end up partially paid; tendering
// more than the client's total remaining due is rejected the same way
// single-invoice overpayment is.
func (s *BillingService) PayAllUnpaid(ctx context.Context, clientID string, req *domain.GroupPaymentRequest) (*domain.GroupPaymentResponse, error) {
	if req.Amount.Sign() <= 0 {
		return nil, customError.WrapInvalidPaymentAmount(req.Amount.String())
	}

	invoices, err := s.invoiceRepo.GetUnpaidByClientID(ctx, clientID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if len(invoices) == 0 {
		return nil, customError.WrapNoUnpaidInvoices(clientID)
	}

	var totalDue decimal.Decimal
	for _, inv := range invoices {
		totalDue = totalDue.Add(inv.RemainingDue())
	}
	if req.Amount.GreaterThan(totalDue) {
		return nil, customError.WrapOverpaymentRejected(req.Amount.String(), totalDue.String())
	}

	if err := s.claimRequest(ctx, req.RequestID); err != nil {
		return nil, err
	}

	now := time.Now()
	remaining := req.Amount
	response := &domain.GroupPaymentResponse{}

	for _, invoice := range invoices {
		if remaining.Sign() <= 0 {
			break
		}

		tender := decimal.Min(remaining, invoice.RemainingDue())
		result, err := domain.Settle(invoice, tender, req.Method, req.Note, now)
		if err != nil {
			s.releaseRequest(ctx, req.RequestID)
			return nil, err
		}

		line, err := s.getLine(ctx, invoice.LineID)
		if err != nil {
			s.releaseRequest(ctx, req.RequestID)
			return nil, err
		}

		payment, err := s.persistSettlement(ctx, invoice, line, tender, req.Method, req.RequestID, req.Note, result, decimal.Zero)
		if err != nil {
			// Earlier invoices in this group stayed settled; each settlement
			// is its own atomic write, there is no partial-write state to
			// unwind beyond the ones not yet attempted.
			s.releaseRequest(ctx, req.RequestID)
			return nil, err
		}

		response.Payments = append(response.Payments, payment)
		remaining = remaining.Sub(tender)
	}

	for _, inv := range invoices {
		response.RemainingDue = response.RemainingDue.Add(inv.RemainingDue())
	}

	s.invalidateOverview(ctx, clientID)

	return response, nil
}

// persistSettlement applies a settlement result to the invoice and writes
// the payment with its audit trace and any balance debit in one atomic
// repository call, so a failure leaves no half-settled state behind.
func (s *BillingService) persistSettlement(ctx context.Context, invoice *domain.Invoice, line *domain.Line, amount decimal.Decimal, method, requestID, note string, result *domain.SettlementResult, balanceDebit decimal.Decimal) (*domain.Payment, error) {
	now := time.Now()

	invoice.AmountPaid = invoice.AmountPaid.Add(amount)
	invoice.PaymentMethod = &method
	if result.IsPartial {
		invoice.Status = domain.InvoiceStatusPartiallyPaid
	} else {
		invoice.Status = domain.InvoiceStatusPaid
		invoice.PaymentDate = &now
	}

	payment := &domain.Payment{
		ID:             uuid.New(),
		InvoiceID:      invoice.ID,
		LineID:         line.ID,
		Amount:         amount,
		Method:         method,
		IsPartial:      result.IsPartial,
		RemainingAfter: result.RemainingDue,
		RequestID:      requestID,
		Note:           note,
		CreatedAt:      now,
	}

	if err := s.paymentRepo.Settle(ctx, invoice, payment, result.Trace, balanceDebit); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return payment, nil
}

func (s *BillingService) getLine(ctx context.Context, lineID uuid.UUID) (*domain.Line, error) {
	line, err := s.lineRepo.GetByID(ctx, lineID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLineNotFound(lineID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return line, nil
}

// claimRequest enforces the idempotency key when the client sent one.
// Requests without an id are accepted for older clients but logged.
func (s *BillingService) claimRequest(ctx context.Context, requestID string) error {
	if requestID == "" {
		log.Println("payment mutation submitted without request_id, duplicate protection disabled for this call")
		return nil
	}

	claimed, err := s.requests.Claim(ctx, requestID)
	if err != nil {
		return customError.WrapCacheError(err)
	}
	if !claimed {
		return customError.WrapDuplicateRequest(requestID)
	}
	return nil
}

func (s *BillingService) releaseRequest(ctx context.Context, requestID string) {
	if requestID == "" {
		return
	}
	if err := s.requests.Release(ctx, requestID); err != nil {
		log.Printf("failed to release request id %s: %v", requestID, err)
	}
}

func (s *BillingService) invalidateOverview(ctx context.Context, clientID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, overviewCachePrefix+clientID).Err(); err != nil {
		log.Printf("failed to invalidate overview cache for client %s: %v", clientID, err)
	}
}
