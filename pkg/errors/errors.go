package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrSplitMismatch        = errors.New("tender split does not sum to total")
	ErrInsufficientBalance  = errors.New("split uses more balance than the line holds")
	ErrOverpaymentRejected  = errors.New("tendered amount exceeds remaining due")
	ErrInvalidPaymentAmount = errors.New("invalid payment amount")
	ErrLineNotFound         = errors.New("line not found")
	ErrInvoiceNotFound      = errors.New("invoice not found")
	ErrInvoiceAlreadyPaid   = errors.New("invoice is already paid")
	ErrDuplicateRequest     = errors.New("duplicate payment request")
	ErrNoUnpaidInvoices     = errors.New("no unpaid invoices")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeInvalidArgument      = "INVALID_ARGUMENT"
	ErrCodeSplitMismatch        = "SPLIT_MISMATCH"
	ErrCodeInsufficientBalance  = "INSUFFICIENT_BALANCE"
	ErrCodeOverpaymentRejected  = "OVERPAYMENT_REJECTED"
	ErrCodeInvalidPaymentAmount = "INVALID_PAYMENT_AMOUNT"
	ErrCodeLineNotFound         = "LINE_NOT_FOUND"
	ErrCodeInvoiceNotFound      = "INVOICE_NOT_FOUND"
	ErrCodeInvoiceAlreadyPaid   = "INVOICE_ALREADY_PAID"
	ErrCodeDuplicateRequest     = "DUPLICATE_REQUEST"
	ErrCodeNoUnpaidInvoices     = "NO_UNPAID_INVOICES"
	ErrCodeDatabaseError        = "DATABASE_ERROR"
	ErrCodeCacheError           = "CACHE_ERROR"
)

// Wrap common errors with business context

func WrapInvalidArgument(detail string) *BusinessError {
	return NewBusinessError(ErrCodeInvalidArgument, detail, ErrInvalidArgument)
}

func WrapSplitMismatch(sum, total string) *BusinessError {
	return NewBusinessError(
		ErrCodeSplitMismatch,
		fmt.Sprintf("split parts sum to %s but the amount due is %s", sum, total),
		ErrSplitMismatch,
	)
}

func WrapInsufficientBalance(requested, available string) *BusinessError {
	return NewBusinessError(
		ErrCodeInsufficientBalance,
		fmt.Sprintf("split tenders %s from balance but only %s is available", requested, available),
		ErrInsufficientBalance,
	)
}

func WrapOverpaymentRejected(tendered, remaining string) *BusinessError {
	return NewBusinessError(
		ErrCodeOverpaymentRejected,
		fmt.Sprintf("tendered %s exceeds the %s remaining due; excess must be an advance payment", tendered, remaining),
		ErrOverpaymentRejected,
	)
}

func WrapInvalidPaymentAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPaymentAmount,
		fmt.Sprintf("payment amount must be positive, got %s", amount),
		ErrInvalidPaymentAmount,
	)
}

func WrapLineNotFound(lineID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLineNotFound,
		fmt.Sprintf("line %s not found", lineID),
		ErrLineNotFound,
	)
}

func WrapInvoiceNotFound(invoiceID string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvoiceNotFound,
		fmt.Sprintf("invoice %s not found", invoiceID),
		ErrInvoiceNotFound,
	)
}

func WrapInvoiceAlreadyPaid(invoiceID string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvoiceAlreadyPaid,
		fmt.Sprintf("invoice %s is already paid in full", invoiceID),
		ErrInvoiceAlreadyPaid,
	)
}

func WrapDuplicateRequest(requestID string) *BusinessError {
	return NewBusinessError(
		ErrCodeDuplicateRequest,
		fmt.Sprintf("request %s was already processed", requestID),
		ErrDuplicateRequest,
	)
}

func WrapNoUnpaidInvoices(clientID string) *BusinessError {
	return NewBusinessError(
		ErrCodeNoUnpaidInvoices,
		fmt.Sprintf("client %s has no unpaid invoices", clientID),
		ErrNoUnpaidInvoices,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(ErrCodeDatabaseError, "database operation failed", err)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(ErrCodeCacheError, "cache operation failed", err)
}
