package render

import (
	"bytes"
	"html/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mangaza/subscription-billing/internal/domain"
)

const invoiceHTMLTemplate = `<!doctype html>
<html lang="fr">
<head>
  <meta charset="utf-8" />
  <title>Facture {{.Invoice.PeriodKey}} - {{.Line.PhoneNumber}}</title>
  <style>
    * { box-sizing: border-box; }
    body {
      margin: 0;
      padding: 32px;
      font-family: "Helvetica Neue", Arial, sans-serif;
      color: #111827;
      background: #ffffff;
    }
    .invoice {
      max-width: 820px;
      margin: 0 auto;
    }
    .header {
      display: flex;
      justify-content: space-between;
      border-bottom: 2px solid #1d4ed8;
      padding-bottom: 16px;
      margin-bottom: 24px;
    }
    .meta {
      text-align: right;
      font-size: 14px;
    }
    .label {
      color: #6b7280;
      text-transform: uppercase;
      letter-spacing: 0.04em;
      font-size: 11px;
    }
    table {
      width: 100%;
      border-collapse: collapse;
      font-size: 14px;
    }
    th, td {
      padding: 10px;
      border-bottom: 1px solid #e5e7eb;
      text-align: left;
    }
    .totals {
      margin-top: 12px;
      display: flex;
      justify-content: flex-end;
      font-size: 16px;
    }
    .totals strong {
      margin-left: 12px;
    }
  </style>
</head>
<body>
  <div class="invoice">
    <div class="header">
      <div>
        <div><strong>Ligne {{.Line.PhoneNumber}}</strong></div>
        <div>Client {{.Line.ClientID}}</div>
      </div>
      <div class="meta">
        <div class="label">Facture</div>
        <div><strong>{{.Invoice.ID}}</strong></div>
        <div>Statut : {{.Invoice.Status}}</div>
        <div>Échéance : {{formatDate .Invoice.DueDate}}</div>
        {{if .Invoice.PaymentDate}}
        <div>Payée le : {{formatDate .Invoice.PaymentDate}}</div>
        {{end}}
      </div>
    </div>

    <table>
      <tr><th>Période</th><th>Montant</th><th>Réglé</th><th>Restant dû</th></tr>
      <tr>
        <td>{{.Invoice.PeriodKey}}</td>
        <td>{{formatAmount .Invoice.Amount}}</td>
        <td>{{formatAmount .Invoice.AmountPaid}}</td>
        <td>{{formatAmount .RemainingDue}}</td>
      </tr>
    </table>

    <div class="totals">
      Total dû :<strong>{{formatAmount .RemainingDue}}</strong>
    </div>
  </div>
</body>
</html>`

type invoiceView struct {
	Invoice      *domain.Invoice
	Line         *domain.Line
	RemainingDue decimal.Decimal
}

var invoiceTmpl = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"formatDate": func(t interface{}) string {
		switch v := t.(type) {
		case time.Time:
			return v.Format("02/01/2006")
		case *time.Time:
			if v == nil {
				return ""
			}
			return v.Format("02/01/2006")
		default:
			return ""
		}
	},
	"formatAmount": func(d decimal.Decimal) string {
		return d.StringFixed(2) + " €"
	},
}).Parse(invoiceHTMLTemplate))

// InvoiceDocument renders an invoice as a printable HTML document.
func InvoiceDocument(invoice *domain.Invoice, line *domain.Line) ([]byte, error) {
	var buf bytes.Buffer
	err := invoiceTmpl.Execute(&buf, invoiceView{
		Invoice:      invoice,
		Line:         line,
		RemainingDue: invoice.RemainingDue(),
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
