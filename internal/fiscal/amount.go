package fiscal

import (
	"fmt"
	"strconv"
	"strings"
)

// Amount is a monetary value in centavos.
type Amount int64

// ParseAmount parses a dot-separated decimal such as "1234.56". Digits past
// the second decimal place round half up.
func ParseAmount(value string) (Amount, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("parse amount: empty value")
	}
	whole, frac, _ := strings.Cut(value, ".")
	if whole == "" {
		whole = "0"
	}
	if !allDigits(whole) || !allDigits(frac) {
		return 0, fmt.Errorf("parse amount %q: not a decimal", value)
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", value, err)
	}
	cents := int64(0)
	switch {
	case len(frac) == 1:
		cents = int64(frac[0]-'0') * 10
	case len(frac) >= 2:
		cents = int64(frac[0]-'0')*10 + int64(frac[1]-'0')
		if len(frac) > 2 && frac[2] >= '5' {
			cents++
		}
	}
	return Amount(units*100 + cents), nil
}

func allDigits(value string) bool {
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}

// Float64 returns the amount in reais.
func (a Amount) Float64() float64 {
	return float64(a) / 100
}

// String formats the amount with exactly two decimal places.
func (a Amount) String() string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON encodes the amount as a JSON number with two decimals.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts the form written by MarshalJSON, quoted or not.
func (a *Amount) UnmarshalJSON(data []byte) error {
	value := strings.Trim(string(data), `"`)
	negative := strings.HasPrefix(value, "-")
	parsed, err := ParseAmount(strings.TrimPrefix(value, "-"))
	if err != nil {
		return err
	}
	if negative {
		parsed = -parsed
	}
	*a = parsed
	return nil
}
