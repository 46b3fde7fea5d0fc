//go:build tinygo

package core

import "runtime/interrupt"

// disableInterrupts masks interrupts and returns the previous state.
// Used around the console TX ring cursor manipulation, where the USB RX
// handler may append while the main loop drains or rewinds.
func disableInterrupts() interrupt.State {
	return interrupt.Disable()
}

// restoreInterrupts restores the saved interrupt state.
func restoreInterrupts(state interrupt.State) {
	interrupt.Restore(state)
}
