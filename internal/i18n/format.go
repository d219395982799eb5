// Package i18n renders currency amounts and dates with Norwegian locale
// conventions. Both the PDF renderer and the mail dispatcher go through this
// package so the two surfaces always show identical strings.
package i18n

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

type DateStyle int

const (
	StyleShort DateStyle = iota // 02.01.2006
	StyleLong                   // 2. januar 2006
)

var printer = message.NewPrinter(language.Norwegian)

// FormatCurrency renders an amount with Norwegian digit grouping and the
// currency's conventional placement: "kr" prefixed for NOK, "€" prefixed for
// EUR, the code prefixed for USD. Output is deterministic for equal input.
func FormatCurrency(amount float64, currency string) string {
	n := printer.Sprint(number.Decimal(amount, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
	switch currency {
	case "NOK":
		return "kr " + n
	case "EUR":
		return "€ " + n
	default:
		return currency + " " + n
	}
}

var longMonths = [...]string{
	"januar", "februar", "mars", "april", "mai", "juni",
	"juli", "august", "september", "oktober", "november", "desember",
}

// FormatDate renders a date in the requested Norwegian style.
func FormatDate(t time.Time, style DateStyle) string {
	if style == StyleLong {
		return fmt.Sprintf("%d. %s %d", t.Day(), longMonths[t.Month()-1], t.Year())
	}
	return t.Format("02.01.2006")
}
