package textutil

import "strings"

// DigitsOnly drops every character that is not an ASCII digit, so formatted
// identifiers such as "12.345.678/0001-90" compare equal to their raw form.
func DigitsOnly(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); i++ {
		if c := value[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}
