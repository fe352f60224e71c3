package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func invoiceWith(status string, dueDate time.Time) *Invoice {
	inv := &Invoice{
		ID:      uuid.New(),
		LineID:  uuid.New(),
		Amount:  decimal.RequireFromString("94.99"),
		Status:  status,
		DueDate: dueDate,
	}
	if status == InvoiceStatusPaid {
		inv.AmountPaid = inv.Amount
		now := time.Now()
		inv.PaymentDate = &now
	}
	return inv
}

func TestFilterInvoices(t *testing.T) {
	now := time.Date(2026, time.September, 20, 0, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -10)
	future := now.AddDate(0, 0, 10)

	invoices := []*Invoice{
		invoiceWith(InvoiceStatusPaid, past),
		invoiceWith(InvoiceStatusUnpaid, past),
		invoiceWith(InvoiceStatusUnpaid, future),
		invoiceWith(InvoiceStatusPartiallyPaid, past),
		invoiceWith(InvoiceStatusPartiallyPaid, future),
	}

	t.Run("All", func(t *testing.T) {
		assert.Len(t, FilterInvoices(invoices, FilterAll, now), 5)
		assert.Len(t, FilterInvoices(invoices, "", now), 5)
	})

	t.Run("Paid", func(t *testing.T) {
		paid := FilterInvoices(invoices, FilterPaid, now)
		assert.Len(t, paid, 1)
		assert.Equal(t, InvoiceStatusPaid, paid[0].Status)
	})

	t.Run("Unpaid includes partially paid", func(t *testing.T) {
		unpaid := FilterInvoices(invoices, FilterUnpaid, now)
		assert.Len(t, unpaid, 4)
	})

	t.Run("Overdue is the past-due unpaid subset", func(t *testing.T) {
		overdue := FilterInvoices(invoices, FilterOverdue, now)
		assert.Len(t, overdue, 2)
		for _, inv := range overdue {
			assert.True(t, inv.IsOpen())
			assert.True(t, inv.DueDate.Before(now))
		}
	})

	t.Run("Overdue is a subset of unpaid", func(t *testing.T) {
		unpaid := FilterInvoices(invoices, FilterUnpaid, now)
		unpaidIDs := make(map[uuid.UUID]bool, len(unpaid))
		for _, inv := range unpaid {
			unpaidIDs[inv.ID] = true
		}

		for _, inv := range FilterInvoices(invoices, FilterOverdue, now) {
			assert.True(t, unpaidIDs[inv.ID], "overdue invoice %s missing from unpaid set", inv.ID)
		}
	})

	t.Run("Input is not mutated", func(t *testing.T) {
		before := len(invoices)
		FilterInvoices(invoices, FilterOverdue, now)
		assert.Len(t, invoices, before)
	})
}

func TestInvoice_DaysOverdue(t *testing.T) {
	now := time.Date(2026, time.September, 20, 0, 0, 0, 0, time.UTC)

	unpaid := invoiceWith(InvoiceStatusUnpaid, now.AddDate(0, 0, -5))
	assert.Equal(t, 5, unpaid.DaysOverdue(now))

	notDue := invoiceWith(InvoiceStatusUnpaid, now.AddDate(0, 0, 5))
	assert.Equal(t, 0, notDue.DaysOverdue(now))

	paid := invoiceWith(InvoiceStatusPaid, now.AddDate(0, 0, -5))
	assert.Equal(t, 0, paid.DaysOverdue(now))
}
