package reconcile

import (
	"fmt"
	"strings"

	"github.com/openlend/docpipe-backend/internal/config"
)

// FormatValue renders a raw value in the canonical representation the golden
// record carries: $#,###.## for currency, YYYY-MM-DD for dates, trimmed
// numbers, title-cased name fields.
func FormatValue(m config.FieldMapping, raw string) string {
	switch m.Compare {
	case config.CompareCurrency:
		amt, err := parseAmount(raw)
		if err != nil {
			return strings.TrimSpace(raw)
		}
		return "$" + groupThousands(fmt.Sprintf("%.2f", amt))
	case config.CompareNumeric:
		amt, err := parseAmount(raw)
		if err != nil {
			return strings.TrimSpace(raw)
		}
		if amt == float64(int64(amt)) {
			return fmt.Sprintf("%d", int64(amt))
		}
		return fmt.Sprintf("%.2f", amt)
	case config.CompareDate:
		if d, err := normalizeDate(raw); err == nil {
			return d
		}
		return strings.TrimSpace(raw)
	default:
		cleaned := wsRe.ReplaceAllString(strings.TrimSpace(raw), " ")
		if isNameField(m.Name) {
			return titleCase(cleaned)
		}
		return cleaned
	}
}

func isNameField(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "name")
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, " ")
}

// groupThousands inserts commas into the integer part of a fixed-point
// decimal string.
func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String()
	if fracPart != "" {
		out += "." + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out
}
