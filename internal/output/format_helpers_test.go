package output

import "testing"

func TestFormatCurrency(t *testing.T) {
	cases := map[float64]string{
		1234.567:  "$1,235",
		0:         "$0",
		999.4:     "$999",
		1500000.2: "$1,500,000",
	}
	for v, want := range cases {
		if got := FormatCurrency(v); got != want {
			t.Errorf("FormatCurrency(%v) = %q, want %q", v, got, want)
		}
	}
}

func TestFormatCents(t *testing.T) {
	if got, want := FormatCents(1234.567), "$1,234.57"; got != want {
		t.Errorf("FormatCents = %q, want %q", got, want)
	}
}

func TestFormatPercentage(t *testing.T) {
	if got, want := FormatPercentage(0.12345), "12.3%"; got != want {
		t.Errorf("FormatPercentage = %q, want %q", got, want)
	}
	if got, want := FormatPercentage(1), "100.0%"; got != want {
		t.Errorf("FormatPercentage = %q, want %q", got, want)
	}
}

func TestIntToString(t *testing.T) {
	if got, want := intToString(42), "42"; got != want {
		t.Errorf("intToString(42) = %q, want %q", got, want)
	}
}

func TestFloatToString(t *testing.T) {
	if got, want := floatToString(1234.5), "1234.50"; got != want {
		t.Errorf("floatToString(1234.5) = %q, want %q", got, want)
	}
	if got, want := floatToString(-3.5), "-3.50"; got != want {
		t.Errorf("floatToString(-3.5) = %q, want %q", got, want)
	}
}
