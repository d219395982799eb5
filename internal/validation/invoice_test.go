package validation

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() url.Values {
	return url.Values{
		"invoiceName":          {"Energikartlegging kontorbygg"},
		"invoiceNumber":        {"42"},
		"currency":             {"NOK"},
		"date":                 {"2025-03-01"},
		"dueDate":              {"2025-03-15"},
		"fromCompany":          {"Scoped Energi AS"},
		"fromAccountNumber":    {"1234.56.78900"},
		"fromAddress":          {"Storgata 1, 0155 Oslo"},
		"fromEmail":            {"faktura@scoped.no"},
		"fromName":             {"Kari Nordmann"},
		"clientName":           {"Byggdrift AS"},
		"clientEmail":          {"post@byggdrift.no"},
		"clientAddress":        {"Industriveien 9, 2020 Skedsmokorset"},
		"total":                {"1000"},
		"vat":                  {"250"},
		"totalInclVat":         {"1250"},
		"note":                 {"Betales innen forfall."},
		"items[0].description": {"Consulting"},
		"items[0].quantity":    {"10"},
		"items[0].rate":        {"100"},
	}
}

func TestParseInvoiceFormValid(t *testing.T) {
	sub, v := ParseInvoiceForm(validForm())
	require.True(t, v.Empty(), "unexpected violations: %v", v)

	assert.Equal(t, 42, sub.InvoiceNumber)
	assert.Equal(t, "NOK", sub.Currency)
	assert.Equal(t, 1000.0, sub.Total)
	assert.Equal(t, 250.0, sub.Vat)
	assert.Equal(t, 1250.0, sub.TotalInclVat)
	require.Len(t, sub.Items, 1)
	assert.Equal(t, "Consulting", sub.Items[0].Description)
	assert.Equal(t, 10, sub.Items[0].Quantity)
	assert.Equal(t, 100.0, sub.Items[0].Rate)
}

func TestParseInvoiceFormNonNumericQuantity(t *testing.T) {
	form := validForm()
	form.Set("items[0].quantity", "ti")
	_, v := ParseInvoiceForm(form)
	assert.Equal(t, "invalid_number", v["items[0].quantity"])
}

func TestParseInvoiceFormNonNumericRate(t *testing.T) {
	form := validForm()
	form.Set("items[0].rate", "hundre kroner")
	_, v := ParseInvoiceForm(form)
	assert.Equal(t, "invalid_number", v["items[0].rate"])
}

func TestParseInvoiceFormNegativeAmounts(t *testing.T) {
	form := validForm()
	form.Set("total", "-1000")
	_, v := ParseInvoiceForm(form)
	assert.Equal(t, "must_be_non_negative", v["total"])
}

func TestParseInvoiceFormTotalsMismatch(t *testing.T) {
	form := validForm()
	form.Set("totalInclVat", "1300")
	_, v := ParseInvoiceForm(form)
	assert.Equal(t, "totals_mismatch", v["totalInclVat"])
}

func TestParseInvoiceFormTotalsWithinTolerance(t *testing.T) {
	form := validForm()
	form.Set("total", "999.998")
	form.Set("vat", "250")
	form.Set("totalInclVat", "1250")
	_, v := ParseInvoiceForm(form)
	assert.True(t, v.Empty(), "rounding noise should pass: %v", v)
}

func TestParseInvoiceFormMissingItems(t *testing.T) {
	form := validForm()
	form.Del("items[0].description")
	form.Del("items[0].quantity")
	form.Del("items[0].rate")
	_, v := ParseInvoiceForm(form)
	assert.Equal(t, "required", v["items"])
}

func TestParseInvoiceFormZeroQuantity(t *testing.T) {
	form := validForm()
	form.Set("items[0].quantity", "0")
	_, v := ParseInvoiceForm(form)
	assert.Equal(t, "must_be_positive", v["items[0].quantity"])
}

func TestParseInvoiceFormBadEmailAndCurrency(t *testing.T) {
	form := validForm()
	form.Set("clientEmail", "not-an-address")
	form.Set("currency", "GBP")
	_, v := ParseInvoiceForm(form)
	assert.Equal(t, "invalid_email", v["clientEmail"])
	assert.Equal(t, "invalid_currency", v["currency"])
}

func TestParseInvoiceFormMultipleItemsKeepOrder(t *testing.T) {
	form := validForm()
	form.Set("items[1].description", "Befaring")
	form.Set("items[1].quantity", "2")
	form.Set("items[1].rate", "500")
	form.Set("total", "2000")
	form.Set("vat", "500")
	form.Set("totalInclVat", "2500")
	sub, v := ParseInvoiceForm(form)
	require.True(t, v.Empty(), "unexpected violations: %v", v)
	require.Len(t, sub.Items, 2)
	assert.Equal(t, "Consulting", sub.Items[0].Description)
	assert.Equal(t, "Befaring", sub.Items[1].Description)
}
