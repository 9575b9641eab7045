package card

import (
	"fmt"
	"strings"
)

// normalizeNumber strips separators and verifies the number is a
// plausible PAN: digits only, 13-19 long, valid Luhn checksum.
func normalizeNumber(number string) (string, error) {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(number)
	if len(cleaned) < 13 || len(cleaned) > 19 {
		return "", fmt.Errorf("%w: length %d", ErrInvalidNumber, len(cleaned))
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: non-digit character", ErrInvalidNumber)
		}
	}
	if !luhnValid(cleaned) {
		return "", fmt.Errorf("%w: failed checksum", ErrInvalidNumber)
	}
	return cleaned, nil
}

func luhnValid(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
