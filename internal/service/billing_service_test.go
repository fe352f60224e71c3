package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mangaza/subscription-billing/internal/config"
	"github.com/mangaza/subscription-billing/internal/domain"
	customError "github.com/mangaza/subscription-billing/pkg/errors"
	"github.com/mangaza/subscription-billing/pkg/utils"
)

func testConfig() *config.Config {
	return &config.Config{
		Business: config.BusinessConfig{
			CoverageHorizonMonths: 6,
			SplitEpsilon:          "0.01",
			OverviewCacheTTL:      30 * time.Second,
			IdempotencyTTL:        24 * time.Hour,
		},
	}
}

func newTestService(lineRepo *MockLineRepository, invoiceRepo *MockInvoiceRepository, paymentRepo *MockPaymentRepository, requests *MockRequestStore, cfg *config.Config) *BillingService {
	return &BillingService{
		lineRepo:    lineRepo,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		requests:    requests,
		config:      cfg,
	}
}

func testLine(clientID, balance, price string) *domain.Line {
	return &domain.Line{
		ID:            uuid.New(),
		ClientID:      clientID,
		PhoneNumber:   "0639000001",
		MonthlyPrice:  decimal.RequireFromString(price),
		Balance:       decimal.RequireFromString(balance),
		PaymentStatus: domain.LinePaymentUpToDate,
		Active:        true,
	}
}

func testInvoice(lineID uuid.UUID, amount string) *domain.Invoice {
	return &domain.Invoice{
		ID:        uuid.New(),
		LineID:    lineID,
		PeriodKey: "2026-09",
		Amount:    decimal.RequireFromString(amount),
		Status:    domain.InvoiceStatusUnpaid,
		DueDate:   time.Date(2026, time.September, 15, 0, 0, 0, 0, time.UTC),
	}
}

func decimalEq(expected string) interface{} {
	want := decimal.RequireFromString(expected)
	return mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(want)
	})
}

func TestCreateLine(t *testing.T) {
	lineRepo := &MockLineRepository{}
	invoiceRepo := &MockInvoiceRepository{}
	paymentRepo := &MockPaymentRepository{}
	requests := &MockRequestStore{}
	svc := newTestService(lineRepo, invoiceRepo, paymentRepo, requests, testConfig())

	lineRepo.On("Create", mock.Anything, mock.MatchedBy(func(l *domain.Line) bool {
		return l.ClientID == "CL1" &&
			l.Active &&
			l.Balance.IsZero() &&
			l.PaymentStatus == domain.LinePaymentUpToDate
	})).Return(nil)

	line, err := svc.CreateLine(context.Background(), &domain.CreateLineRequest{
		ClientID:     "CL1",
		PhoneNumber:  "0639000001",
		MonthlyPrice: decimal.RequireFromString("94.99"),
	})

	assert.NoError(t, err)
	assert.True(t, line.MonthlyPrice.Equal(decimal.RequireFromString("94.99")))
	lineRepo.AssertExpectations(t)
}

func TestCreateLine_NonPositivePriceRejected(t *testing.T) {
	lineRepo := &MockLineRepository{}
	invoiceRepo := &MockInvoiceRepository{}
	paymentRepo := &MockPaymentRepository{}
	requests := &MockRequestStore{}
	svc := newTestService(lineRepo, invoiceRepo, paymentRepo, requests, testConfig())

	_, err := svc.CreateLine(context.Background(), &domain.CreateLineRequest{
		ClientID:     "CL1",
		PhoneNumber:  "0639000001",
		MonthlyPrice: decimal.Zero,
	})

	assert.ErrorIs(t, err, customError.ErrInvalidArgument)
	lineRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDeactivateLine(t *testing.T) {
	lineRepo := &MockLineRepository{}
	invoiceRepo := &MockInvoiceRepository{}
	paymentRepo := &MockPaymentRepository{}
	requests := &MockRequestStore{}
	svc := newTestService(lineRepo, invoiceRepo, paymentRepo, requests, testConfig())

	line := testLine("CL1", "0", "94.99")
	lineRepo.On("GetByID", mock.Anything, line.ID).Return(line, nil)
	lineRepo.On("Deactivate", mock.Anything, line.ID).Return(nil)

	err := svc.DeactivateLine(context.Background(), line.ID)

	assert.NoError(t, err)
	lineRepo.AssertExpectations(t)
}

func TestPayInvoice_FullPayment(t *testing.T) {
	lineRepo := &MockLineRepository{}
	invoiceRepo := &MockInvoiceRepository{}
	paymentRepo := &MockPaymentRepository{}
	requests := &MockRequestStore{}
	svc := newTestService(lineRepo, invoiceRepo, paymentRepo, requests, testConfig())

	line := testLine("CL1", "0", "94.99")
	invoice := testInvoice(line.ID, "94.99")
	requestID := uuid.NewString()

	invoiceRepo.On("GetByID", mock.Anything, invoice.ID).Return(invoice, nil)
	lineRepo.On("GetByID", mock.Anything, line.ID).Return(line, nil)
	requests.On("Claim", mock.Anything, requestID).Return(true, nil)
	paymentRepo.On("Settle", mock.Anything, mock.MatchedBy(func(inv *domain.Invoice) bool {
		return inv.Status == domain.InvoiceStatusPaid && inv.AmountPaid.Equal(inv.Amount) && inv.PaymentDate != nil
	}), mock.MatchedBy(func(p *domain.Payment) bool {
		return !p.IsPartial && p.RemainingAfter.IsZero() && p.RequestID == requestID
	}), mock.AnythingOfType("*domain.Trace"), decimalEq("0")).Return(nil)

	result, err := svc.PayInvoice(context.Background(), invoice.ID, &domain.PayInvoiceRequest{
		Amount:    decimal.RequireFromString("94.99"),
		Method:    domain.PaymentMethodCash,
		RequestID: requestID,
	})

	assert.NoError(t, err)
	assert.False(t, result.IsPartial)
	assert.Equal(t, domain.InvoiceStatusPaid, result.Invoice.Status)

	invoiceRepo.AssertExpectations(t)
	paymentRepo.AssertExpectations(t)
	requests.AssertExpectations(t)
}

func TestPayInvoice_PartialPayment(t *testing.T) {
	lineRepo := &MockLineRepository{}
	invoiceRepo := &MockInvoiceRepository{}
	paymentRepo := &MockPaymentRepository{}
	requests := &MockRequestStore{}
	svc := newTestService(lineRepo, invoiceRepo, paymentRepo, requests, testConfig())

	line := testLine("CL1", "0", "100")
	invoice := testInvoice(line.ID, "100")
	requestID := uuid.NewString()

	invoiceRepo.On("GetByID", mock.Anything, invoice.ID).Return(invoice, nil)
	lineRepo.On("GetByID", mock.Anything, line.ID).Return(line, nil)
	requests.On("Claim", mock.Anything, requestID).Return(true, nil)
	paymentRepo.On("Settle", mock.Anything, mock.MatchedBy(func(inv *domain.Invoice) bool {
		return inv.Status == domain.InvoiceStatusPartiallyPaid && inv.PaymentDate == nil
	}), mock.MatchedBy(func(p *domain.Payment) bool {
		return p.IsPartial && p.RemainingAfter.Equal(decimal.RequireFromString("60"))
	}), mock.AnythingOfType("*domain.Trace"), decimalEq("0")).Return(nil)

	result, err := svc.PayInvoice(context.Background(), invoice.ID, &domain.PayInvoiceRequest{
		Amount:    decimal.RequireFromString("40"),
		Method:    domain.PaymentMethodCard,
		RequestID: requestID,
	})

	assert.NoError(t, err)
	assert.True(t, result.IsPartial)
	assert.Equal(t, domain.InvoiceStatusPartiallyPaid, result.Invoice.Status)
	assert.True(t, result.Invoice.RemainingDue().Equal(decimal.RequireFromString("60")))
}

func TestPayInvoice_OverpaymentRejected(t *testing.T) {
	lineRepo := &MockLineRepository{}
	invoiceRepo := &MockInvoiceRepository{}
	paymentRepo := &MockPaymentRepository{}
	requests := &MockRequestStore{}
	svc := newTestService(lineRepo, invoiceRepo, paymentRepo, requests, testConfig())

	line := testLine("CL1", "0", "100")
	invoice := testInvoice(line.ID, "100")

	invoiceRepo.On("GetByID", mock.Anything, invoice.ID).Return(invoice, nil)
	lineRepo.On("GetByID", mock.Anything, line.ID).Return(line, nil)

	_, err := svc.PayInvoice(context.Background(), invoice.ID, &domain.PayInvoiceRequest{
		Amount: decimal.RequireFromString("120"),
		Method: domain.PaymentMethodCash,
	})

	assert.ErrorIs(t, err, customError.ErrOverpaymentRejected)
	requests.AssertNotCalled(t, "Claim", mock.Anything, mock.Anything)
	paymentRepo.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPayInvoice_DuplicateRequestRejected(t *testing.T) {
	lineRepo := &MockLineRepository{}
	invoiceRepo := &MockInvoiceRepository{}
	paymentRepo := &MockPaymentRepository{}
	requests := &MockRequestStore{}
	svc := newTestService(lineRepo, invoiceRepo, paymentRepo, requests, testConfig())

	line := testLine("CL1", "0", "100")
	invoice := testInvoice(line.ID, "100")
	requestID := uuid.NewString()

	invoiceRepo.On("GetByID", mock.Anything, invoice.ID).Return(invoice, nil)
	lineRepo.On("GetByID", mock.Anything, line.ID).Return(line, nil)
	requests.On("Claim", mock.Anything, requestID).Return(false, nil)

	_, err := svc.PayInvoice(context.Background(), invoice.ID, &domain.PayInvoiceRequest{
		Amount:    decimal.RequireFromString("100"),
		Method:    domain.PaymentMethodCash,
		RequestID: requestID,
	})

	assert.ErrorIs(t, err, customError.ErrDuplicateRequest)
	paymentRepo.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPayInvoice_BalancePartDebitsLine(t *testing.T) {
	lineRepo := &MockLineRepository{}
	invoiceRepo := &MockInvoiceRepository{}
	paymentRepo := &MockPaymentRepository{}
	requests := &MockRequestStore{}
	svc := newTestService(lineRepo, invoiceRepo, paymentRepo, requests, testConfig())

	line := testLine("CL1", "30", "100")
	invoice := testInvoice(line.ID, "100")
	requestID := uuid.NewString()

	invoiceRepo.On("GetByID", mock.Anything, invoice.ID).Return(invoice, nil)
	lineRepo.On("GetByID", mock.Anything, line.ID).Return(line, nil)
	requests.On("Claim", mock.Anything, requestID).Return(true, nil)
	paymentRepo.On("Settle", mock.Anything, mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.Method == domain.PaymentMethodMixed
	}), mock.AnythingOfType("*domain.Trace"), decimalEq("30")).Return(nil)

	result, err := svc.PayInvoice(context.Background(), invoice.ID, &domain.PayInvoiceRequest{
		Amount: decimal.RequireFromString("100"),
		Method: domain.PaymentMethodCash,
		Split: &domain.SplitRequest{
			Balance: decimal.RequireFromString("30"),
			Cash:    decimal.RequireFromString("70"),
		},
		RequestID: requestID,
	})

	assert.NoError(t, err)
	assert.False(t, result.IsPartial)
	paymentRepo.AssertExpectations(t)
	lineRepo.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPayInvoice_PersistFailureAllowsRetry(t *testing.T) {
	lineRepo := &MockLineRepository{}
	invoiceRepo := &MockInvoiceRepository{}
	paymentRepo := &MockPaymentRepository{}
	requests := &MockRequestStore{}
	svc := newTestService(lineRepo, invoiceRepo, paymentRepo, requests, testConfig())

	line := testLine("CL1", "0", "100")
	invoice := testInvoice(line.ID, "100")
	firstRequest := uuid.NewString()
	secondRequest := uuid.NewString()

	lineRepo.On("GetByID", mock.Anything, line.ID).Return(line, nil)
	invoiceRepo.On("GetByID", mock.Anything, invoice.ID).Return(invoice, nil).Once()
	requests.On("Claim", mock.Anything, firstRequest).Return(true, nil)
	requests.On("Release", mock.Anything, firstRequest).Return(nil)
	paymentRepo.On("Settle", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("connection reset")).Once()

	_, err := svc.PayInvoice(context.Background(), invoice.ID, &domain.PayInvoiceRequest{
		Amount:    decimal.RequireFromString("100"),
		Method:    domain.PaymentMethodCash,
		RequestID: firstRequest,
	})

	assert.Error(t, err)
	requests.AssertCalled(t, "Release", mock.Anything, firstRequest)

	// The settlement write is atomic, so the failed attempt left the stored
	// invoice untouched; a retry against the re-read row succeeds.
	fresh := testInvoice(line.ID, "100")
	fresh.ID = invoice.ID
	invoiceRepo.On("GetByID", mock.Anything, invoice.ID).Return(fresh, nil).Once()
	requests.On("Claim", mock.Anything, secondRequest).Return(true, nil)
	paymentRepo.On("Settle", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	result, err := svc.PayInvoice(context.Background(), invoice.ID, &domain.PayInvoiceRequest{
		Amount:    decimal.RequireFromString("100"),
		Method:    domain.PaymentMethodCash,
		RequestID: secondRequest,
	})

	assert.NoError(t, err)
	assert.False(t, result.IsPartial)
	assert.Equal(t, domain.InvoiceStatusPaid, result.Invoice.Status)
	paymentRepo.AssertExpectations(t)
}

func TestAddBalance_OnlyNewMoneyCredited(t *testing.T) {
	lineRepo := &MockLineRepository{}
	invoiceRepo := &MockInvoiceRepository{}
	paymentRepo := &MockPaymentRepository{}
	requests := &MockRequestStore{}
	svc := newTestService(lineRepo, invoiceRepo, paymentRepo, requests, testConfig())

	line := testLine("CL1", "30", "94.99")
	requestID := uuid.NewString()

	lineRepo.On("GetByID", mock.Anything, line.ID).Return(line, nil)
	requests.On("Claim", mock.Anything, requestID).Return(true, nil)
	lineRepo.On("AddBalance", mock.Anything, line.ID, decimalEq("70"), domain.BalanceTxTopup, "avance", requestID).
		Return(&domain.BalanceTransaction{Amount: decimal.RequireFromString("70")}, nil)

	balanceTx, err := svc.AddBalance(context.Background(), line.ID, &domain.AddBalanceRequest{
		Amount: decimal.RequireFromString("100"),
		Reason: "avance",
		Split: &domain.SplitRequest{
			Balance: decimal.RequireFromString("30"),
			Cash:    decimal.RequireFromString("70"),
		},
		RequestID: requestID,
	})

	assert.NoError(t, err)
	assert.True(t, balanceTx.Amount.Equal(decimal.RequireFromString("70")))
	lineRepo.AssertExpectations(t)
}

func TestAddBalance_BalanceOnlyTenderMutatesNothing(t *testing.T) {
	lineRepo := &MockLineRepository{}
	invoiceRepo := &MockInvoiceRepository{}
	paymentRepo := &MockPaymentRepository{}
	requests := &MockRequestStore{}
	svc := newTestService(lineRepo, invoiceRepo, paymentRepo, requests, testConfig())

	line := testLine("CL1", "150", "94.99")

	lineRepo.On("GetByID", mock.Anything, line.ID).Return(line, nil)

	balanceTx, err := svc.AddBalance(context.Background(), line.ID, &domain.AddBalanceRequest{
		Amount: decimal.RequireFromString("100"),
		Split: &domain.SplitRequest{
			Balance: decimal.RequireFromString("100"),
		},
	})

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, balanceTx.ID)
	assert.True(t, balanceTx.Amount.IsZero())
	assert.True(t, balanceTx.BalanceAfter.Equal(line.Balance))
	lineRepo.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAddBalance_SplitMismatchRejected(t *testing.T) {
	lineRepo := &MockLineRepository{}
	invoiceRepo := &MockInvoiceRepository{}
	paymentRepo := &MockPaymentRepository{}
	requests := &MockRequestStore{}
	svc := newTestService(lineRepo, invoiceRepo, paymentRepo, requests, testConfig())

	line := testLine("CL1", "30", "94.99")

	lineRepo.On("GetByID", mock.Anything, line.ID).Return(line, nil)

	_, err := svc.AddBalance(context.Background(), line.ID, &domain.AddBalanceRequest{
		Amount: decimal.RequireFromString("100"),
		Split: &domain.SplitRequest{
			Balance: decimal.RequireFromString("30"),
			Cash:    decimal.RequireFromString("60"),
		},
	})

	assert.ErrorIs(t, err, customError.ErrSplitMismatch)
	lineRepo.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPlanAdvancePayment_PerLineCoverage(t *testing.T) {
	lineRepo := &MockLineRepository{}
	invoiceRepo := &MockInvoiceRepository{}
	paymentRepo := &MockPaymentRepository{}
	requests := &MockRequestStore{}
	svc := newTestService(lineRepo, invoiceRepo, paymentRepo, requests, testConfig())

	// Line A's balance covers its next month; line B has no coverage.
	lineA := testLine("CL1", "94.99", "94.99")
	lineB := testLine("CL1", "0", "49.99")

	lineRepo.On("GetByID", mock.Anything, lineA.ID).Return(lineA, nil)
	lineRepo.On("GetByID", mock.Anything, lineB.ID).Return(lineB, nil)

	now := time.Now()
	periods := []string{utils.PeriodAfter(now, 1), utils.PeriodAfter(now, 2)}

	plan, err := svc.PlanAdvancePayment(context.Background(), &domain.AdvancePlanRequest{
		LineIDs:    []uuid.UUID{lineA.ID, lineB.ID},
		PeriodKeys: periods,
	})

	assert.NoError(t, err)
	// A pays only the second period, B pays both: 94.99 + 2*49.99.
	assert.True(t, plan.Total.Equal(decimal.RequireFromString("194.97")),
		"expected 194.97, got %s", plan.Total)
	assert.Len(t, plan.PerLine, 2)
	assert.Equal(t, []string{periods[1]}, plan.PerLine[0].Periods)
	assert.Equal(t, periods, plan.PerLine[1].Periods)
}

func TestPlanAdvancePayment_FocusLineCoverage(t *testing.T) {
	cfg := testConfig()
	cfg.Business.FocusLineCoverage = true

	lineRepo := &MockLineRepository{}
	invoiceRepo := &MockInvoiceRepository{}
	paymentRepo := &MockPaymentRepository{}
	requests := &MockRequestStore{}
	svc := newTestService(lineRepo, invoiceRepo, paymentRepo, requests, cfg)

	// Legacy mode: the first line's coverage is applied to every line,
	// so line B also skips the first period despite having no balance.
	lineA := testLine("CL1", "94.99", "94.99")
	lineB := testLine("CL1", "0", "49.99")

	lineRepo.On("GetByID", mock.Anything, lineA.ID).Return(lineA, nil)
	lineRepo.On("GetByID", mock.Anything, lineB.ID).Return(lineB, nil)

	now := time.Now()
	periods := []string{utils.PeriodAfter(now, 1), utils.PeriodAfter(now, 2)}

	plan, err := svc.PlanAdvancePayment(context.Background(), &domain.AdvancePlanRequest{
		LineIDs:    []uuid.UUID{lineA.ID, lineB.ID},
		PeriodKeys: periods,
	})

	assert.NoError(t, err)
	assert.True(t, plan.Total.Equal(decimal.RequireFromString("144.98")),
		"expected 144.98, got %s", plan.Total)
}

func TestPlanAdvancePayment_DuplicatePeriodsBilledOnce(t *testing.T) {
	lineRepo := &MockLineRepository{}
	invoiceRepo := &MockInvoiceRepository{}
	paymentRepo := &MockPaymentRepository{}
	requests := &MockRequestStore{}
	svc := newTestService(lineRepo, invoiceRepo, paymentRepo, requests, testConfig())

	line := testLine("CL1", "0", "49.99")
	lineRepo.On("GetByID", mock.Anything, line.ID).Return(line, nil)

	period := utils.PeriodAfter(time.Now(), 1)

	plan, err := svc.PlanAdvancePayment(context.Background(), &domain.AdvancePlanRequest{
		LineIDs:    []uuid.UUID{line.ID},
		PeriodKeys: []string{period, period},
	})

	assert.NoError(t, err)
	assert.True(t, plan.Total.Equal(decimal.RequireFromString("49.99")),
		"a period selected twice must be billed once, got %s", plan.Total)
	assert.Equal(t, []string{period}, plan.PerLine[0].Periods)
}

func TestPlanAdvancePayment_PastPeriodRejected(t *testing.T) {
	lineRepo := &MockLineRepository{}
	invoiceRepo := &MockInvoiceRepository{}
	paymentRepo := &MockPaymentRepository{}
	requests := &MockRequestStore{}
	svc := newTestService(lineRepo, invoiceRepo, paymentRepo, requests, testConfig())

	line := testLine("CL1", "0", "94.99")
	lineRepo.On("GetByID", mock.Anything, line.ID).Return(line, nil)

	_, err := svc.PlanAdvancePayment(context.Background(), &domain.AdvancePlanRequest{
		LineIDs:    []uuid.UUID{line.ID},
		PeriodKeys: []string{utils.CurrentPeriod(time.Now())},
	})

	assert.ErrorIs(t, err, customError.ErrInvalidArgument)
}

func TestPayAllUnpaid_OldestFirstWithPartialTail(t *testing.T) {
	lineRepo := &MockLineRepository{}
	invoiceRepo := &MockInvoiceRepository{}
	paymentRepo := &MockPaymentRepository{}
	requests := &MockRequestStore{}
	svc := newTestService(lineRepo, invoiceRepo, paymentRepo, requests, testConfig())

	line := testLine("CL1", "0", "100")
	older := testInvoice(line.ID, "50")
	older.PeriodKey = "2026-08"
	newer := testInvoice(line.ID, "100")
	requestID := uuid.NewString()

	invoiceRepo.On("GetUnpaidByClientID", mock.Anything, "CL1").Return([]*domain.Invoice{older, newer}, nil)
	requests.On("Claim", mock.Anything, requestID).Return(true, nil)
	lineRepo.On("GetByID", mock.Anything, line.ID).Return(line, nil)
	paymentRepo.On("Settle", mock.Anything, mock.Anything, mock.Anything, mock.AnythingOfType("*domain.Trace"), decimalEq("0")).Return(nil)

	result, err := svc.PayAllUnpaid(context.Background(), "CL1", &domain.GroupPaymentRequest{
		Amount:    decimal.RequireFromString("120"),
		Method:    domain.PaymentMethodCash,
		RequestID: requestID,
	})

	assert.NoError(t, err)
	assert.Len(t, result.Payments, 2)
	assert.False(t, result.Payments[0].IsPartial)
	assert.True(t, result.Payments[0].Amount.Equal(decimal.RequireFromString("50")))
	assert.True(t, result.Payments[1].IsPartial)
	assert.True(t, result.Payments[1].Amount.Equal(decimal.RequireFromString("70")))
	assert.True(t, result.RemainingDue.Equal(decimal.RequireFromString("30")))

	assert.Equal(t, domain.InvoiceStatusPaid, older.Status)
	assert.Equal(t, domain.InvoiceStatusPartiallyPaid, newer.Status)
}

func TestPayAllUnpaid_OverpaymentRejected(t *testing.T) {
	lineRepo := &MockLineRepository{}
	invoiceRepo := &MockInvoiceRepository{}
	paymentRepo := &MockPaymentRepository{}
	requests := &MockRequestStore{}
	svc := newTestService(lineRepo, invoiceRepo, paymentRepo, requests, testConfig())

	line := testLine("CL1", "0", "100")
	invoice := testInvoice(line.ID, "150")

	invoiceRepo.On("GetUnpaidByClientID", mock.Anything, "CL1").Return([]*domain.Invoice{invoice}, nil)

	_, err := svc.PayAllUnpaid(context.Background(), "CL1", &domain.GroupPaymentRequest{
		Amount: decimal.RequireFromString("200"),
		Method: domain.PaymentMethodCash,
	})

	assert.ErrorIs(t, err, customError.ErrOverpaymentRejected)
	requests.AssertNotCalled(t, "Claim", mock.Anything, mock.Anything)
}

func TestPayAllUnpaid_NoInvoices(t *testing.T) {
	lineRepo := &MockLineRepository{}
	invoiceRepo := &MockInvoiceRepository{}
	paymentRepo := &MockPaymentRepository{}
	requests := &MockRequestStore{}
	svc := newTestService(lineRepo, invoiceRepo, paymentRepo, requests, testConfig())

	invoiceRepo.On("GetUnpaidByClientID", mock.Anything, "CL1").Return([]*domain.Invoice{}, nil)

	_, err := svc.PayAllUnpaid(context.Background(), "CL1", &domain.GroupPaymentRequest{
		Amount: decimal.RequireFromString("50"),
		Method: domain.PaymentMethodCash,
	})

	assert.ErrorIs(t, err, customError.ErrNoUnpaidInvoices)
}

func TestGetClientOverview(t *testing.T) {
	lineRepo := &MockLineRepository{}
	invoiceRepo := &MockInvoiceRepository{}
	paymentRepo := &MockPaymentRepository{}
	requests := &MockRequestStore{}
	svc := newTestService(lineRepo, invoiceRepo, paymentRepo, requests, testConfig())

	lineA := testLine("CL1", "94.99", "94.99")
	lineB := testLine("CL1", "-20", "49.99")
	unpaid := testInvoice(lineB.ID, "49.99")

	lineRepo.On("GetByClientID", mock.Anything, "CL1").Return([]*domain.Line{lineA, lineB}, nil)
	invoiceRepo.On("GetUnpaidByClientID", mock.Anything, "CL1").Return([]*domain.Invoice{unpaid}, nil)

	overview, err := svc.GetClientOverview(context.Background(), "CL1")

	assert.NoError(t, err)
	assert.Equal(t, "CL1", overview.ClientID)
	assert.Len(t, overview.Lines, 2)
	assert.True(t, overview.TotalBalance.Equal(decimal.RequireFromString("74.99")))
	assert.Equal(t, 1, overview.UnpaidCount)
	assert.True(t, overview.UnpaidTotal.Equal(decimal.RequireFromString("49.99")))
}
