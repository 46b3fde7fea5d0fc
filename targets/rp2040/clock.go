//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"
)

// RP2040 Timer peripheral memory map. The hardware timer is a 64-bit
// microsecond counter running at 1MHz.
const (
	timerBase     = 0x40054000
	timerTIMERAWH = timerBase + 0x08 // Raw timer high word
	timerTIMERAWL = timerBase + 0x0C // Raw timer low word
)

var (
	timerRAWH = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWH)))
	timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
)

// readTimer64 reads the full 64-bit microsecond counter. High word is
// read twice to detect a rollover during the read.
func readTimer64() uint64 {
	for {
		high1 := timerRAWH.Get()
		low := timerRAWL.Get()
		high2 := timerRAWH.Get()
		if high1 == high2 {
			return uint64(high1)<<32 | uint64(low)
		}
	}
}

// hwClock derives the application's millisecond time base from the raw
// hardware timer. Truncating the 64-bit millisecond count to 32 bits
// gives a counter that wraps exactly the way the consumers' difference
// arithmetic expects.
type hwClock struct{}

func (hwClock) NowMS() uint32 {
	return uint32(readTimer64() / 1000)
}
