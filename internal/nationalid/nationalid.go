// Package nationalid validates Brazilian CPF numbers.
package nationalid

import "strings"

// Valid reports whether s is a well-formed CPF. Punctuation is ignored; the
// remaining eleven digits must not all be equal and must carry correct check
// digits.
func Valid(s string) bool {
	digits := Digits(s)
	if len(digits) != 11 {
		return false
	}
	if strings.Count(digits, digits[:1]) == 11 {
		return false
	}
	return checkDigit(digits[:9]) == digits[9] && checkDigit(digits[:10]) == digits[10]
}

// Digits strips everything but ASCII digits from s.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Format renders an eleven-digit CPF as 000.000.000-00. Other input is
// returned unchanged.
func Format(s string) string {
	d := Digits(s)
	if len(d) != 11 {
		return s
	}
	return d[0:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:11]
}

// checkDigit computes the next check digit for prefix using weights
// len(prefix)+1 down to 2.
func checkDigit(prefix string) byte {
	sum := 0
	weight := len(prefix) + 1
	for i := 0; i < len(prefix); i++ {
		sum += int(prefix[i]-'0') * (weight - i)
	}
	r := 11 - sum%11
	if r >= 10 {
		r = 0
	}
	return byte('0' + r)
}
