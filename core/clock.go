package core

// Clock provides the monotonic millisecond time base for the whole
// application. On hardware it reads the SysTick-derived tick counter;
// tests supply a fake.
type Clock interface {
	NowMS() uint32
}

// Elapsed reports whether now has reached or passed deadline.
//
// The comparison uses signed 32-bit difference arithmetic so it stays
// correct across tick-counter wraparound (roughly every 49.7 days).
func Elapsed(now, deadline uint32) bool {
	return int32(now-deadline) >= 0
}

// Deadline is a self-rearming schedule point for a periodic service.
// Zero value fires immediately on the first check.
type Deadline struct {
	next uint32
}

// Due reports whether the deadline has passed and, if so, re-arms it
// period milliseconds after now. A slow iteration delays the next firing
// rather than producing catch-up bursts.
func (d *Deadline) Due(now, period uint32) bool {
	if !Elapsed(now, d.next) {
		return false
	}
	d.next = now + period
	return true
}

// Reset re-arms the deadline period milliseconds after now without
// reporting due.
func (d *Deadline) Reset(now, period uint32) {
	d.next = now + period
}
