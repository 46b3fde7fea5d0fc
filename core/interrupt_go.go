//go:build !tinygo

package core

// State is a placeholder for saved interrupt state on regular Go.
type State uintptr

// disableInterrupts is a no-op on regular Go. Tests and the simulator
// run producer and consumer on one goroutine, so there is nothing to
// mask around the ring-cursor critical sections.
func disableInterrupts() State {
	return 0
}

// restoreInterrupts is a no-op on regular Go.
func restoreInterrupts(state State) {
}
