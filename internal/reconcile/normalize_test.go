package reconcile

import (
	"testing"

	"github.com/openlend/docpipe-backend/internal/config"
)

func defaultCurrencyMapping() config.FieldMapping {
	return config.FieldMapping{
		Name:      "assessed_value",
		FormField: "ASSESSED_VALUE",
		Compare:   config.CompareCurrency,
		Priority:  config.PriorityOptional,
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "$75,000.00", want: 75000},
		{in: "76500", want: 76500},
		{in: "-1,250.50", want: -1250.5},
		{in: "CAD 12,000", want: 12000},
		{in: "", wantErr: true},
		{in: "n/a", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseAmount(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("parseAmount(%q)=%v, want error", tc.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseAmount(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("parseAmount(%q)=%v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "1985-03-15", want: "1985-03-15"},
		{in: "1985-3-5", want: "1985-03-05"},
		{in: "03/15/1985", want: "1985-03-15"},
		{in: "15/03/1985", want: "1985-03-15"},
		{in: "3-15-1985", want: "1985-03-15"},
		{in: "March 15 1985", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := normalizeDate(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("normalizeDate(%q)=%q, want error", tc.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("normalizeDate(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("normalizeDate(%q)=%q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestFormatValueCurrency(t *testing.T) {
	m := testRegistry(t, defaultCurrencyMapping()).Mappings()[0]
	cases := []struct {
		in   string
		want string
	}{
		{in: "76500", want: "$76,500.00"},
		{in: "$1234567.8", want: "$1,234,567.80"},
		{in: "950", want: "$950.00"},
	}
	for _, tc := range cases {
		if got := FormatValue(m, tc.in); got != tc.want {
			t.Fatalf("FormatValue(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRelativeDifferenceFloorsDenominator(t *testing.T) {
	// Near-zero pairs divide by 1 rather than exploding.
	if got := relativeDifference(0.2, 0.1); got != 0.1 {
		t.Fatalf("relativeDifference(0.2, 0.1)=%v, want 0.1", got)
	}
}
