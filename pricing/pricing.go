// Parse display prices like "₹999/year" or "₹30" once at the boundary and
// carry typed values internally; format back to a string only for display.
package pricing

import (
	"fmt"
	"strings"
	"unicode"
)

type Period string

const (
	PeriodNone  Period = ""
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

type Price struct {
	Amount   int    // whole currency units
	Currency string // symbol or code as it appeared, e.g. "₹"
	Period   Period
}

// Parse accepts "<currency><amount>[/<period>]", tolerating spaces and
// thousands separators in the amount.
func Parse(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Price{}, fmt.Errorf("empty price")
	}

	var period Period
	if idx := strings.IndexByte(s, '/'); idx >= 0 {
		p, err := parsePeriod(s[idx+1:])
		if err != nil {
			return Price{}, err
		}
		period = p
		s = strings.TrimSpace(s[:idx])
	}

	// leading run of non-digit runes is the currency marker
	cur := ""
	rest := s
	for len(rest) > 0 {
		r := []rune(rest)[0]
		if unicode.IsDigit(r) {
			break
		}
		cur += string(r)
		rest = rest[len(string(r)):]
	}
	cur = strings.TrimSpace(cur)

	amount := 0
	digits := 0
	for _, r := range rest {
		switch {
		case unicode.IsDigit(r):
			amount = amount*10 + int(r-'0')
			digits++
		case r == ',' || r == ' ':
			// separator
		default:
			return Price{}, fmt.Errorf("invalid price %q", s)
		}
	}
	if digits == 0 {
		return Price{}, fmt.Errorf("no amount in price %q", s)
	}

	return Price{Amount: amount, Currency: cur, Period: period}, nil
}

func parsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "year", "yr", "yearly", "annual":
		return PeriodYear, nil
	case "month", "mo", "monthly":
		return PeriodMonth, nil
	case "":
		return PeriodNone, nil
	}
	return PeriodNone, fmt.Errorf("unknown billing period %q", s)
}

func (p Price) String() string {
	s := fmt.Sprintf("%s%d", p.Currency, p.Amount)
	if p.Period != PeriodNone {
		s += "/" + string(p.Period)
	}
	return s
}

// Add returns a copy with n more whole units, keeping currency and period.
func (p Price) Add(n int) Price {
	p.Amount += n
	return p
}
