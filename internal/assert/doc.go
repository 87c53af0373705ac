// Package assert provides precondition checks for the real-time path.
//
// Built with the "debug" tag, a failed check panics with the given message.
// Without it every check compiles to a no-op and callers fall back to
// clamping, so the audio path never branches on errors at runtime.
//
//	go test -tags debug ./...
package assert
