package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/mangaza/subscription-billing/internal/domain"
)

type MockLineRepository struct {
	mock.Mock
}

func (m *MockLineRepository) Create(ctx context.Context, line *domain.Line) error {
	args := m.Called(ctx, line)
	return args.Error(0)
}

func (m *MockLineRepository) GetByID(ctx context.Context, lineID uuid.UUID) (*domain.Line, error) {
	args := m.Called(ctx, lineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Line), args.Error(1)
}

func (m *MockLineRepository) GetByClientID(ctx context.Context, clientID string) ([]*domain.Line, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Line), args.Error(1)
}

func (m *MockLineRepository) GetActive(ctx context.Context) ([]*domain.Line, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Line), args.Error(1)
}

func (m *MockLineRepository) AddBalance(ctx context.Context, lineID uuid.UUID, delta decimal.Decimal, kind, reason, requestID string) (*domain.BalanceTransaction, error) {
	args := m.Called(ctx, lineID, delta, kind, reason, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceTransaction), args.Error(1)
}

func (m *MockLineRepository) UpdatePaymentStatus(ctx context.Context, lineID uuid.UUID, status string) error {
	args := m.Called(ctx, lineID, status)
	return args.Error(0)
}

func (m *MockLineRepository) Deactivate(ctx context.Context, lineID uuid.UUID) error {
	args := m.Called(ctx, lineID)
	return args.Error(0)
}

func (m *MockLineRepository) GetBalanceTransactions(ctx context.Context, lineID uuid.UUID) ([]*domain.BalanceTransaction, error) {
	args := m.Called(ctx, lineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.BalanceTransaction), args.Error(1)
}

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, invoiceID uuid.UUID) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) GetByLineID(ctx context.Context, lineID uuid.UUID) ([]*domain.Invoice, error) {
	args := m.Called(ctx, lineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) GetUnpaidByClientID(ctx context.Context, clientID string) ([]*domain.Invoice, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) GetByLineAndPeriod(ctx context.Context, lineID uuid.UUID, periodKey string) (*domain.Invoice, error) {
	args := m.Called(ctx, lineID, periodKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ExistsForPeriod(ctx context.Context, lineID uuid.UUID, periodKey string) (bool, error) {
	args := m.Called(ctx, lineID, periodKey)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) CountOpenPastDue(ctx context.Context, lineID uuid.UUID, now time.Time) (int, error) {
	args := m.Called(ctx, lineID, now)
	return args.Int(0), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Settle(ctx context.Context, invoice *domain.Invoice, payment *domain.Payment, trace *domain.Trace, balanceDebit decimal.Decimal) error {
	args := m.Called(ctx, invoice, payment, trace, balanceDebit)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByInvoiceID(ctx context.Context, invoiceID uuid.UUID) ([]*domain.Payment, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetByLineID(ctx context.Context, lineID uuid.UUID) ([]*domain.Payment, error) {
	args := m.Called(ctx, lineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Payment), args.Error(1)
}

type MockRequestStore struct {
	mock.Mock
}

func (m *MockRequestStore) Claim(ctx context.Context, requestID string) (bool, error) {
	args := m.Called(ctx, requestID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRequestStore) Release(ctx context.Context, requestID string) error {
	args := m.Called(ctx, requestID)
	return args.Error(0)
}
