package language

import (
	"fmt"
	"strings"
)

// FormatCurrency formats a monetary amount for the given currency and
// language. Brazilian Portuguese swaps the digit separators: R$ 1.234,56.
// Unknown languages use the English format; unknown currencies fall back
// to "CODE 1,234.56" regardless of language.
func FormatCurrency(amount float64, currency, lang string) string {
	grouped := groupThousands(amount)

	if lang != "pt-BR" {
		lang = "en"
	}

	switch {
	case lang == "pt-BR" && currency == "BRL":
		return "R$ " + swapSeparators(grouped)
	case lang == "pt-BR" && currency == "USD":
		return "US$ " + swapSeparators(grouped)
	case lang == "en" && currency == "BRL":
		return "R$ " + grouped
	case lang == "en" && currency == "USD":
		return "$" + grouped
	default:
		return currency + " " + grouped
	}
}

// groupThousands renders the amount with two decimals and comma
// thousands separators: 1234567.891 -> "1,234,567.89".
func groupThousands(amount float64) string {
	s := fmt.Sprintf("%.2f", amount)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	return sign + b.String() + "." + fracPart
}

// swapSeparators converts an en-formatted number to pt-BR separators:
// "1,234.56" -> "1.234,56".
func swapSeparators(s string) string {
	s = strings.ReplaceAll(s, ",", "\x00")
	s = strings.ReplaceAll(s, ".", ",")
	return strings.ReplaceAll(s, "\x00", ".")
}
