package models

import "time"

// Invoice statuses. PAID is terminal; there is no un-pay transition.
const (
	StatusPending = "PENDING"
	StatusPaid    = "PAID"
)

// Supported invoice currencies.
const (
	CurrencyNOK = "NOK"
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
)

// Invoicing models
type Invoice struct {
	ID            string `gorm:"primaryKey;size:36"` // uuid, doubles as the PDF capability token
	InvoiceNumber int    `gorm:"not null"`
	InvoiceName   string `gorm:"not null"`
	Currency      string `gorm:"not null;default:'NOK'"`
	Date          time.Time
	DueDate       time.Time

	// Sender fields are snapshotted from the submission at creation time so
	// historical invoices stay stable when the user's profile changes later.
	FromCompany       string
	FromAccountNumber string
	FromAddress       string
	FromEmail         string
	FromName          string

	ClientName    string
	ClientEmail   string
	ClientAddress string

	Total        float64 `gorm:"not null"`
	Vat          float64 `gorm:"not null"`
	TotalInclVat float64 `gorm:"not null"`
	Note         string

	Status string        `gorm:"not null;default:'PENDING'"`
	Items  []InvoiceItem `gorm:"foreignKey:InvoiceID"`

	UserID    uint `gorm:"not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type InvoiceItem struct {
	ID          string  `gorm:"primaryKey;size:36"`
	InvoiceID   string  `gorm:"not null;size:36;index"`
	Description string  `gorm:"not null"`
	Quantity    int     `gorm:"not null"`
	Rate        float64 `gorm:"not null"`
}

// Amount is the computed line total; it is never stored.
func (it InvoiceItem) Amount() float64 {
	return float64(it.Quantity) * it.Rate
}
