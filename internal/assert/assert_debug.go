//go:build debug

package assert

import "fmt"

// Enabled reports whether assertions are compiled in.
const Enabled = true

// That panics when cond is false.
func That(cond bool, format string, args ...any) {
	if !cond {
		panic("assert: " + fmt.Sprintf(format, args...))
	}
}
