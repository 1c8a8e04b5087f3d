package pricing

import "strings"

const (
	MinQuantity = 1
	MaxQuantity = 5
)

// ClampQuantity bounds n to [MinQuantity, MaxQuantity].
func ClampQuantity(n int) int {
	if n < MinQuantity {
		return MinQuantity
	}
	if n > MaxQuantity {
		return MaxQuantity
	}
	return n
}

// ParseQuantity turns raw field input into a valid quantity. Leading digits
// are honoured ("3x" is 3); anything unparsable or zero becomes MinQuantity.
func ParseQuantity(raw string) int {
	s := strings.TrimSpace(raw)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}

	n, digits := 0, 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		digits++
		if n <= MaxQuantity {
			n = n*10 + int(r-'0')
		}
	}
	if digits == 0 || n == 0 {
		return MinQuantity
	}
	if neg {
		return MinQuantity
	}
	return ClampQuantity(n)
}
