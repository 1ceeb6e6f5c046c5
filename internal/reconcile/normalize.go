package reconcile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	wsRe     = regexp.MustCompile(`\s+`)
	amountRe = regexp.MustCompile(`[^0-9.\-]`)
	dateRes  = []*regexp.Regexp{
		regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})$`), // YYYY-MM-DD
		regexp.MustCompile(`^(\d{1,2})[-/](\d{1,2})[-/](\d{4})$`), // MM/DD/YYYY or DD/MM/YYYY
	}
)

// normalizeText lowercases and collapses whitespace.
func normalizeText(s string) string {
	return wsRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

// parseAmount strips currency symbols and thousands separators and parses
// the remainder. Used for both currency and numeric comparison types.
func parseAmount(s string) (float64, error) {
	cleaned := amountRe.ReplaceAllString(strings.TrimSpace(s), "")
	if cleaned == "" || cleaned == "-" || cleaned == "." {
		return 0, fmt.Errorf("no numeric content in %q", s)
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return v, nil
}

// normalizeDate canonicalizes common date layouts to YYYY-MM-DD. A first
// component above 12 disambiguates DD/MM/YYYY from MM/DD/YYYY.
func normalizeDate(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if m := dateRes[0].FindStringSubmatch(trimmed); m != nil {
		return fmt.Sprintf("%s-%s-%s", m[1], pad2(m[2]), pad2(m[3])), nil
	}
	if m := dateRes[1].FindStringSubmatch(trimmed); m != nil {
		first, _ := strconv.Atoi(m[1])
		if first > 12 { // DD/MM/YYYY
			return fmt.Sprintf("%s-%s-%s", m[3], pad2(m[2]), pad2(m[1])), nil
		}
		return fmt.Sprintf("%s-%s-%s", m[3], pad2(m[1]), pad2(m[2])), nil
	}
	return "", fmt.Errorf("unrecognized date format %q", s)
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// relativeDifference is abs(a-b)/max(|a|,|b|,1). The divisor floor of 1
// keeps near-zero pairs from exploding the ratio.
func relativeDifference(a, b float64) float64 {
	den := abs(a)
	if abs(b) > den {
		den = abs(b)
	}
	if den < 1 {
		den = 1
	}
	return abs(a-b) / den
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
