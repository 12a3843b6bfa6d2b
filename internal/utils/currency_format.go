package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

const maxFractionDigits = 3

// FormatAmount renders an amount the way en-US number locales do: thousands separators and
// at most three decimals, dropping trailing zeros.
// Example: 3000 returns "3,000"
// Example: 2500.5 returns "2,500.5"
// Example: -1234567.4567 returns "-1,234,567.457"
func FormatAmount(amount decimal.Decimal) string {
	s := amount.Round(maxFractionDigits).String()

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}

// FormatPula prefixes FormatAmount with the Botswana Pula symbol used in member-facing messages.
func FormatPula(amount decimal.Decimal) string {
	return "P " + FormatAmount(amount)
}
