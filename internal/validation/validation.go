package validation

import (
	"net/mail"
	"strconv"
	"strings"
	"time"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func Email(field, value string, v Violations) {
	if _, err := mail.ParseAddress(value); err != nil {
		v[field] = "invalid_email"
	}
}

// Int coerces a decimal string, rejecting non-numeric input instead of
// letting it reach persistence as zero.
func Int(field, value string, v Violations) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		v[field] = "invalid_number"
		return 0
	}
	return n
}

func Float(field, value string, v Violations) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		v[field] = "invalid_number"
		return 0
	}
	return f
}

func NonNegative(field string, val float64, v Violations) {
	if val < 0 {
		v[field] = "must_be_non_negative"
	}
}

// Date parses an ISO date (2006-01-02).
func Date(field, value string, v Violations) time.Time {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	if err != nil {
		v[field] = "invalid_date"
		return time.Time{}
	}
	return t
}
