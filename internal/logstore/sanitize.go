package logstore

import (
	"fmt"
	"strings"
)

// SafeFileName converts an arbitrary identifier into a single safe path
// segment. Letters, digits, '-' and '_' pass through; every other rune
// (separators, dots, control characters) is escaped as %XXXX using the
// rune's uppercase hex value. Deterministic, so the same identifier always
// maps to the same file name, and the output can never traverse out of its
// parent directory.
func SafeFileName(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_':
			b.WriteRune(r)
		default:
			fmt.Fprintf(&b, "%%%04X", r)
		}
	}
	return b.String()
}
