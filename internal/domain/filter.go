package domain

import "time"

// Invoice filter modes.
const (
	FilterAll     = "all"
	FilterPaid    = "paid"
	FilterUnpaid  = "unpaid"
	FilterOverdue = "overdue"
)

// FilterInvoices projects a list of invoices into one display bucket.
// "unpaid" includes partially paid invoices; "overdue" is the unpaid subset
// past its due date, so a paid invoice can never show up as overdue. The
// input is not mutated. Unknown modes fall back to the full list.
func FilterInvoices(invoices []*Invoice, mode string, now time.Time) []*Invoice {
	if mode == FilterAll || mode == "" {
		return invoices
	}

	filtered := make([]*Invoice, 0, len(invoices))
	for _, inv := range invoices {
		switch mode {
		case FilterPaid:
			if inv.Status == InvoiceStatusPaid {
				filtered = append(filtered, inv)
			}
		case FilterUnpaid:
			if inv.IsOpen() {
				filtered = append(filtered, inv)
			}
		case FilterOverdue:
			if inv.IsOpen() && inv.DueDate.Before(now) {
				filtered = append(filtered, inv)
			}
		default:
			filtered = append(filtered, inv)
		}
	}
	return filtered
}
