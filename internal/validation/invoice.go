package validation

import (
	"fmt"
	"math"
	"net/url"
	"time"
)

// totalTolerance absorbs currency rounding when cross-checking stored totals.
const totalTolerance = 0.005

// ItemSubmission is one validated invoice line. ID is set only on edits,
// when the line maps to an existing stored row.
type ItemSubmission struct {
	ID          string
	Description string
	Quantity    int
	Rate        float64
}

// InvoiceSubmission is the typed, trusted result of parsing a raw invoice
// form. All numeric fields are coerced here; nothing downstream re-parses
// strings.
type InvoiceSubmission struct {
	InvoiceName   string
	InvoiceNumber int
	Currency      string
	Date          time.Time
	DueDate       time.Time

	FromCompany       string
	FromAccountNumber string
	FromAddress       string
	FromEmail         string
	FromName          string

	ClientName    string
	ClientEmail   string
	ClientAddress string

	Total        float64
	Vat          float64
	TotalInclVat float64
	Note         string

	Items []ItemSubmission
}

var validCurrencies = map[string]bool{"NOK": true, "USD": true, "EUR": true}

// ParseInvoiceForm schema-checks a raw form into an InvoiceSubmission or a
// per-field error report. It has no side effects and is safe to re-run on
// resubmission.
func ParseInvoiceForm(form url.Values) (InvoiceSubmission, Violations) {
	v := Violations{}
	sub := InvoiceSubmission{}

	sub.InvoiceName = form.Get("invoiceName")
	Required("invoiceName", sub.InvoiceName, v)

	sub.InvoiceNumber = Int("invoiceNumber", form.Get("invoiceNumber"), v)
	if _, bad := v["invoiceNumber"]; !bad && sub.InvoiceNumber < 1 {
		v["invoiceNumber"] = "must_be_positive"
	}

	sub.Currency = form.Get("currency")
	if !validCurrencies[sub.Currency] {
		v["currency"] = "invalid_currency"
	}

	sub.Date = Date("date", form.Get("date"), v)
	sub.DueDate = Date("dueDate", form.Get("dueDate"), v)

	sub.FromCompany = form.Get("fromCompany")
	Required("fromCompany", sub.FromCompany, v)
	sub.FromAccountNumber = form.Get("fromAccountNumber")
	Required("fromAccountNumber", sub.FromAccountNumber, v)
	sub.FromAddress = form.Get("fromAddress")
	Required("fromAddress", sub.FromAddress, v)
	sub.FromEmail = form.Get("fromEmail")
	Email("fromEmail", sub.FromEmail, v)
	sub.FromName = form.Get("fromName")
	Required("fromName", sub.FromName, v)

	sub.ClientName = form.Get("clientName")
	Required("clientName", sub.ClientName, v)
	sub.ClientEmail = form.Get("clientEmail")
	Email("clientEmail", sub.ClientEmail, v)
	sub.ClientAddress = form.Get("clientAddress")
	Required("clientAddress", sub.ClientAddress, v)

	sub.Total = Float("total", form.Get("total"), v)
	NonNegative("total", sub.Total, v)
	sub.Vat = Float("vat", form.Get("vat"), v)
	NonNegative("vat", sub.Vat, v)
	sub.TotalInclVat = Float("totalInclVat", form.Get("totalInclVat"), v)
	NonNegative("totalInclVat", sub.TotalInclVat, v)

	sub.Note = form.Get("note")

	sub.Items = parseItems(form, v)

	// Totals are stored as submitted, so the arithmetic must hold before
	// anything reaches the store.
	if _, bad := v["totalInclVat"]; !bad {
		if math.Abs(sub.TotalInclVat-(sub.Total+sub.Vat)) > totalTolerance {
			v["totalInclVat"] = "totals_mismatch"
		}
	}

	if !v.Empty() {
		return InvoiceSubmission{}, v
	}
	return sub, nil
}

// parseItems reads ordered item rows keyed items[i].description etc.
func parseItems(form url.Values, v Violations) []ItemSubmission {
	var items []ItemSubmission
	for i := 0; ; i++ {
		prefix := fmt.Sprintf("items[%d].", i)
		desc, ok := firstOf(form, prefix+"description")
		qtyRaw, okQty := firstOf(form, prefix+"quantity")
		rateRaw, okRate := firstOf(form, prefix+"rate")
		if !ok && !okQty && !okRate {
			break
		}
		it := ItemSubmission{Description: desc}
		if id, okID := firstOf(form, prefix+"id"); okID {
			it.ID = id
		}
		Required(prefix+"description", desc, v)
		it.Quantity = Int(prefix+"quantity", qtyRaw, v)
		if _, bad := v[prefix+"quantity"]; !bad && it.Quantity <= 0 {
			v[prefix+"quantity"] = "must_be_positive"
		}
		it.Rate = Float(prefix+"rate", rateRaw, v)
		NonNegative(prefix+"rate", it.Rate, v)
		items = append(items, it)
	}
	if len(items) == 0 {
		v["items"] = "required"
	}
	return items
}

func firstOf(form url.Values, key string) (string, bool) {
	if vs, ok := form[key]; ok && len(vs) > 0 {
		return vs[0], true
	}
	return "", false
}
