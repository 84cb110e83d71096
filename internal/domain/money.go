package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Amount is a monetary value in cents. Balances and transaction amounts are
// kept in the smallest currency unit so arithmetic is exact.
type Amount int64

var errMalformedAmount = errors.New("malformed amount")

// ParseAmount converts a decimal string such as "100.00" or "7.5" into an
// Amount. At most two fractional digits are accepted and the value must not
// be negative.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return 0, errMalformedAmount
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" || len(frac) > 2 {
		return 0, errMalformedAmount
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, errMalformedAmount
	}

	cents := int64(0)
	for i := 0; i < len(frac); i++ {
		c := frac[i]
		if c < '0' || c > '9' {
			return 0, errMalformedAmount
		}
		cents = cents*10 + int64(c-'0')
	}
	if len(frac) == 1 {
		cents *= 10
	}

	if units > (1<<62)/100 {
		return 0, errMalformedAmount
	}
	return Amount(units*100 + cents), nil
}

// String renders the amount with two fractional digits, e.g. "150.00".
func (a Amount) String() string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
