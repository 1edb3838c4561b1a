package utils

import (
	"testing"
	"time"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{"cero", 0, "$0,00"},
		{"chico", 7.5, "$7,50"},
		{"miles", 1234.56, "$1.234,56"},
		{"millones", 1234567.8, "$1.234.567,80"},
		{"negativo", -1500, "$-1.500,00"},
		{"redondo", 1500, "$1.500,00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCurrency(tt.in); got != tt.want {
				t.Errorf("FormatCurrency(%v) = %q, esperaba %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    float64
		wantErr bool
	}{
		{"con signo", "$1.234,56", 1234.56, false},
		{"sin signo", "1.500,00", 1500, false},
		{"crudo", "750", 750, false},
		{"con espacios", " $ 99,90 ", 99.9, false},
		{"vacío", "", 0, true},
		{"basura", "$abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCurrency(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCurrency(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseCurrency(%q) = %v, esperaba %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatParseDate(t *testing.T) {
	d := time.Date(2026, 8, 9, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(d); got != "09/08/2026" {
		t.Errorf("FormatDate = %q, esperaba 09/08/2026", got)
	}

	parsed, err := ParseDate("09/08/2026")
	if err != nil {
		t.Fatalf("ParseDate falló: %v", err)
	}
	if !parsed.Equal(d) {
		t.Errorf("ParseDate = %v, esperaba %v", parsed, d)
	}

	if _, err := ParseDate("2026-08-09"); err == nil {
		t.Error("otro formato de fecha debe rechazarse")
	}
}

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"celular", "1155550000", "11-5555-0000"},
		{"con separadores", "(11) 5555-0000", "11-5555-0000"},
		{"fijo", "45550000", "4555-0000"},
		{"raro queda igual", "+54 9 11 5555 0000", "+54 9 11 5555 0000"},
		{"vacío", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatPhone(tt.in); got != tt.want {
				t.Errorf("FormatPhone(%q) = %q, esperaba %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatNumberDecimals(t *testing.T) {
	if got := FormatNumber(1234.5678, 0); got != "1.235" {
		t.Errorf("sin decimales = %q, esperaba 1.235", got)
	}
	if got := FormatNumber(12.3, 1); got != "12,3" {
		t.Errorf("un decimal = %q, esperaba 12,3", got)
	}
}
