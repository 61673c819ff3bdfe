package validator

import (
	"strconv"
	"strings"
)

const cpfLength = 11

// cpfWeights is indexed from the end: a 9-digit base uses weights 10..2 and a
// 10-digit base uses 11..2.
var cpfWeights = [...]int{11, 10, 9, 8, 7, 6, 5, 4, 3, 2}

// IsValidCPF reports whether id is an 11-digit national identifier whose two
// trailing check digits match the weighted modulo-11 checksum of the first nine.
func IsValidCPF(id string) bool {
	if len(id) != cpfLength || !allDigits(id) || allSame(id) {
		return false
	}

	base := id[:9]
	withFirst := base + strconv.Itoa(checkDigit(base))

	return id == withFirst+strconv.Itoa(checkDigit(withFirst))
}

// FormatCPF renders an 11-digit id as ddd.ddd.ddd-dd. Anything else is
// returned as given.
func FormatCPF(id string) string {
	if len(id) != cpfLength || !allDigits(id) {
		return id
	}
	var b strings.Builder
	b.Grow(cpfLength + 3)
	b.WriteString(id[0:3])
	b.WriteByte('.')
	b.WriteString(id[3:6])
	b.WriteByte('.')
	b.WriteString(id[6:9])
	b.WriteByte('-')
	b.WriteString(id[9:11])
	return b.String()
}

// NormalizeCPF strips the dots, dash and spaces of a formatted id. The result
// still has to pass IsValidCPF.
func NormalizeCPF(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '-', ' ':
			return -1
		}
		return r
	}, strings.TrimSpace(id))
}

func checkDigit(digits string) int {
	offset := len(cpfWeights) - len(digits)
	sum := 0
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * cpfWeights[offset+i]
	}
	d := 11 - sum%11
	if d > 9 {
		return 0
	}
	return d
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func allSame(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}
