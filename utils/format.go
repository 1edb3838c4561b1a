package utils

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Formateo con convención es-AR: miles con punto, decimales con coma,
// fechas dd/mm/aaaa.

var ErrInvalidNumber = errors.New("número inválido")
var ErrInvalidDate = errors.New("fecha inválida")

// FormatNumber arma "1.234.567,89" con la cantidad pedida de decimales.
func FormatNumber(v float64, decimals int) string {
	negative := math.Signbit(v)
	v = math.Abs(v)

	s := strconv.FormatFloat(v, 'f', decimals, 64)
	intPart := s
	decPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, decPart = s[:i], s[i+1:]
	}

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if decPart != "" {
		b.WriteByte(',')
		b.WriteString(decPart)
	}
	return b.String()
}

// FormatCurrency arma "$1.234,56".
func FormatCurrency(v float64) string {
	return "$" + FormatNumber(v, 2)
}

// ParseNumber lee un número con formato es-AR ("1.234,56") o ya crudo.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidNumber
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return v, nil
}

// ParseCurrency lee un monto con o sin el signo peso.
func ParseCurrency(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSpace(s)
	return ParseNumber(s)
}

// FormatDate arma "dd/mm/aaaa".
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// ParseDate lee "dd/mm/aaaa".
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("02/01/2006", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatPhone agrupa un teléfono argentino: 10 dígitos quedan
// "11-5555-0000", 8 dígitos "5555-0000". Cualquier otra cosa se
// devuelve como vino.
func FormatPhone(s string) string {
	var digits strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	d := digits.String()

	switch len(d) {
	case 10:
		return d[:2] + "-" + d[2:6] + "-" + d[6:]
	case 8:
		return d[:4] + "-" + d[4:]
	default:
		return s
	}
}
