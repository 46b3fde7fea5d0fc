package core

// UI line manager: a fixed bank of display rows fed by the application
// and drained one dirty line at a time through the display engine.

const (
	UIMaxLines = 16
	uiTextMax  = 128
)

// Fixed row layout.
const (
	UILineI2C        = 0
	UILineCAN101     = 1
	UILineCAN120     = 2
	UILineLux        = 3
	UILineFull       = 4
	UILineIR         = 5
	UILineNetTCP     = 6
	UILineTCPPayload = 7
	UILineNetUDP     = 8
	UILineUDPPayload = 9
)

type uiLine struct {
	used  bool
	dirty bool
	fg    uint16
	bg    uint16
	text  string
	last  string // last rendered text, to detect no-op updates
}

// UIManager tracks per-line desired text plus dirty state, and pushes at
// most one changed line per pump so the display never hogs the loop.
type UIManager struct {
	lines [UIMaxLines]uiLine
	rr    uint8 // round-robin cursor for fair rotation among dirty lines
}

// SetLine updates a line's content; marks it dirty only when the text
// actually changed.
func (u *UIManager) SetLine(idx int, fg, bg uint16, text string) {
	if idx < 0 || idx >= UIMaxLines {
		return
	}
	if len(text) > uiTextMax {
		text = text[:uiTextMax]
	}

	l := &u.lines[idx]
	l.used = true
	l.fg = fg
	l.bg = bg

	if l.text != text {
		l.text = text
		l.dirty = true
	}
}

// ClearLine forgets one line entirely.
func (u *UIManager) ClearLine(idx int) {
	if idx < 0 || idx >= UIMaxLines {
		return
	}
	u.lines[idx] = uiLine{}
}

// ClearAll resets the manager.
func (u *UIManager) ClearAll() {
	for i := range u.lines {
		u.lines[i] = uiLine{}
	}
	u.rr = 0
}

// activeCount returns the highest used index plus one.
func (u *UIManager) activeCount() int {
	last := -1
	for i := range u.lines {
		if u.lines[i].used {
			last = i
		}
	}
	return last + 1
}

// PumpOnce renders at most one dirty line, in round-robin order, if the
// display is idle. Returns true when a blit was started.
func (u *UIManager) PumpOnce(d *Display) bool {
	if d.IsBusy() {
		return false
	}

	n := u.activeCount()
	if n == 0 {
		return false
	}

	for k := 0; k < n; k++ {
		idx := (int(u.rr) + k) % n
		l := &u.lines[idx]

		if !l.used {
			continue
		}
		if l.dirty || l.text != l.last {
			y := uint16(idx * LineHeight)
			d.StartTextLine(y, l.text, l.fg, l.bg)

			l.last = l.text
			l.dirty = false
			u.rr = uint8((idx + 1) % n)
			return true
		}
	}

	// Nothing dirty; restart rotation.
	u.rr = 0
	return false
}
