package service

import (
	"fmt"
	"strings"
)

// NormalizarISBN keeps digits and a trailing check character X, dropping
// hyphens, spaces and any other separator.
func NormalizarISBN(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(s)) {
		if (r >= '0' && r <= '9') || r == 'X' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ISBNConsultable reports whether isbn has the shape of an ISBN-10 or ISBN-13.
func ISBNConsultable(isbn string) bool {
	switch len(isbn) {
	case 13:
		return strings.Trim(isbn, "0123456789") == ""
	case 10:
		return strings.Trim(isbn[:9], "0123456789") == "" && strings.ContainsAny(isbn[9:], "0123456789X")
	default:
		return false
	}
}

// DigitoControlEAN13 computes the EAN-13 check digit of a 12-digit body.
func DigitoControlEAN13(body string) int {
	sum := 0
	for i, r := range body {
		d := int(r - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return (10 - sum%10) % 10
}

// ISBNInterno builds an internal EAN-13: 3-digit prefix, 9-digit sequence
// and check digit.
func ISBNInterno(prefijo string, seq int64) string {
	body := fmt.Sprintf("%s%09d", prefijo, seq%1_000_000_000)
	return fmt.Sprintf("%s%d", body, DigitoControlEAN13(body))
}
