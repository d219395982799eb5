package pdf

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopedno/energidesk/internal/models"
)

func sampleInvoice() *models.Invoice {
	return &models.Invoice{
		ID:                "8b5a0d0f-6a0f-4f6e-9a4e-0b1c2d3e4f5a",
		InvoiceNumber:     42,
		InvoiceName:       "Energikartlegging kontorbygg",
		Currency:          models.CurrencyNOK,
		Date:              time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		DueDate:           time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		FromCompany:       "Scoped Energi AS",
		FromName:          "Kari Nordmann",
		FromEmail:         "faktura@scoped.no",
		FromAddress:       "Storgata 1, 0155 Oslo",
		FromAccountNumber: "1234.56.78900",
		ClientName:        "Byggdrift AS",
		ClientEmail:       "post@byggdrift.no",
		ClientAddress:     "Industriveien 9, 2020 Skedsmokorset",
		Total:             1000,
		Vat:               250,
		TotalInclVat:      1250,
		Status:            models.StatusPending,
		Note:              "Betales innen forfall.",
		CreatedAt:         time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Items: []models.InvoiceItem{
			{Description: "Consulting", Quantity: 10, Rate: 100},
		},
	}
}

func TestRenderInvoiceProducesPDF(t *testing.T) {
	out, err := RenderInvoice(sampleInvoice())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")), "output must start with a PDF header")
	assert.Greater(t, len(out), 1000)
}

func TestRenderInvoiceDeterministic(t *testing.T) {
	inv := sampleInvoice()
	first, err := RenderInvoice(inv)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := RenderInvoice(inv)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(first, again), "render %d differs from the first", i)
	}
}

func TestRenderInvoiceManyItems(t *testing.T) {
	inv := sampleInvoice()
	inv.Items = nil
	for i := 0; i < 12; i++ {
		inv.Items = append(inv.Items, models.InvoiceItem{
			Description: strings.Repeat("Omfattende beskrivelse av tiltak og befaring ", 3),
			Quantity:    i + 1,
			Rate:        250,
		})
	}
	out, err := RenderInvoice(inv)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestRowHeight(t *testing.T) {
	assert.Equal(t, minRowHeight, rowHeight(lineHeight), "single line stays on the grid")
	assert.Equal(t, 3*lineHeight+lineHeight, rowHeight(3*lineHeight), "tall rows grow with their text")
	assert.GreaterOrEqual(t, rowHeight(0), minRowHeight)
}
