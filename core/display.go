package core

import (
	"time"

	"tinygo.org/x/drivers"
)

// Display geometry, landscape orientation.
const (
	DisplayWidth  = 160
	DisplayHeight = 128
	DisplayPixels = DisplayWidth * DisplayHeight

	// 5x7 glyph plus 1px spacing; an 8px line band holds one row of text.
	fontWidth    = 5
	fontHeight   = 7
	charSpacing  = 1
	cellWidth    = fontWidth + charSpacing
	LineHeight   = 8
	MaxLineChars = DisplayWidth / cellWidth // 26
)

// ChunkBytes is the per-Pump transfer budget. One pump never occupies
// the bus for more than this many bytes.
const ChunkBytes = 512

// ST77xx-style controller commands. Opaque beyond "set window, stream".
const (
	cmdSleepOut    = 0x11
	cmdDisplayOn   = 0x29
	cmdColumnAddr  = 0x2A
	cmdRowAddr     = 0x2B
	cmdMemoryWrite = 0x2C
	cmdMADCTL      = 0x36
	cmdCOLMOD      = 0x3A
)

type displayOp uint8

const (
	opNone displayOp = iota
	opFill
	opBlit
)

// OutputPin drives one display control line. machine.Pin satisfies it.
type OutputPin interface {
	Set(high bool)
}

// RGB565 packs 8-bit RGB into the display's 16-bit pixel format.
func RGB565(r, g, b uint8) uint16 {
	return uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b&0xF8)>>3
}

// Display is the chunked, resumable transfer engine for the SPI TFT.
//
// Starting an operation sets the address window and records a job;
// repeated Pump calls stream at most ChunkBytes each until the job
// drains. At most one job is in flight; starts while busy are no-ops.
type Display struct {
	spi drivers.SPI
	cs  OutputPin
	dc  OutputPin
	rst OutputPin

	op displayOp

	fillColor      uint16
	fillSentPixels uint32

	blitLen  uint32
	blitSent uint32

	linebuf [DisplayWidth * LineHeight]uint16
	txbuf   [ChunkBytes]byte

	cycle colorCycle
}

// NewDisplay wires the engine to its SPI bus and control pins. The
// controller is untouched until Init.
func NewDisplay(spi drivers.SPI, cs, dc, rst OutputPin) *Display {
	return &Display{spi: spi, cs: cs, dc: dc, rst: rst}
}

// Init resets and configures the controller. Blocking; call once at
// startup before the main loop.
func (d *Display) Init() {
	d.rst.Set(false)
	time.Sleep(50 * time.Millisecond)
	d.rst.Set(true)
	time.Sleep(120 * time.Millisecond)

	d.command(cmdSleepOut)
	time.Sleep(120 * time.Millisecond)

	d.command(cmdCOLMOD)
	d.data8(0x05) // 16-bit RGB565

	d.command(cmdMADCTL)
	d.data8(0x60) // landscape

	d.command(cmdDisplayOn)
	time.Sleep(20 * time.Millisecond)

	d.op = opNone
	d.cycle.running = false
}

func (d *Display) command(c byte) {
	d.cs.Set(false)
	d.dc.Set(false)
	d.spi.Tx([]byte{c}, nil)
	d.cs.Set(true)
}

func (d *Display) data8(b byte) {
	d.cs.Set(false)
	d.dc.Set(true)
	d.spi.Tx([]byte{b}, nil)
	d.cs.Set(true)
}

// setAddrWindow selects the drawing rectangle and issues the memory
// write command; subsequent data bytes fill the window in display order.
func (d *Display) setAddrWindow(x0, y0, x1, y1 uint16) {
	d.command(cmdColumnAddr)
	d.data8(byte(x0 >> 8))
	d.data8(byte(x0))
	d.data8(byte(x1 >> 8))
	d.data8(byte(x1))

	d.command(cmdRowAddr)
	d.data8(byte(y0 >> 8))
	d.data8(byte(y0))
	d.data8(byte(y1 >> 8))
	d.data8(byte(y1))

	d.command(cmdMemoryWrite)
}

// StartFill begins a non-blocking full-screen fill. No-op while another
// operation is in flight.
func (d *Display) StartFill(color uint16) {
	if d.op != opNone {
		return
	}

	d.fillColor = color
	d.fillSentPixels = 0

	d.setAddrWindow(0, 0, DisplayWidth-1, DisplayHeight-1)

	// CS stays low and DC high for the whole pixel stream.
	d.cs.Set(false)
	d.dc.Set(true)
	d.op = opFill
}

// StartTextLine renders text into the line buffer and begins streaming
// the 8px band at pixel row y. Rejects while busy or when y is off
// screen; y is clamped so the band fits. Text longer than MaxLineChars
// is truncated with a trailing ellipsis.
func (d *Display) StartTextLine(y uint16, text string, fg, bg uint16) {
	if y >= DisplayHeight {
		return
	}
	if d.op != opNone {
		return
	}
	if y > DisplayHeight-LineHeight {
		y = DisplayHeight - LineHeight
	}

	d.renderLine(text, fg, bg)

	d.setAddrWindow(0, y, DisplayWidth-1, y+LineHeight-1)

	d.blitLen = DisplayWidth * LineHeight * 2
	d.blitSent = 0

	d.cs.Set(false)
	d.dc.Set(true)
	d.op = opBlit
}

// renderLine draws text into the off-screen line buffer, glyph by glyph.
func (d *Display) renderLine(text string, fg, bg uint16) {
	for i := range d.linebuf {
		d.linebuf[i] = bg
	}

	line := TruncateLine(text)

	x := 0
	for i := 0; i < len(line); i++ {
		d.drawChar(x, line[i], fg, bg)
		x += cellWidth
		if x >= DisplayWidth {
			break
		}
	}
}

// TruncateLine clips text to MaxLineChars, replacing the tail with an
// ellipsis when the original was longer.
func TruncateLine(text string) string {
	if len(text) <= MaxLineChars {
		return text
	}
	return text[:MaxLineChars-3] + "..."
}

func (d *Display) drawChar(x int, ch byte, fg, bg uint16) {
	g := glyphFor(ch)

	for col := 0; col < fontWidth; col++ {
		bits := g[col]
		for row := 0; row < fontHeight; row++ {
			color := bg
			if bits&(1<<row) != 0 {
				color = fg
			}
			d.setPixel(x+col, row, color)
		}
	}

	// Spacing column right of the glyph.
	for row := 0; row < fontHeight; row++ {
		d.setPixel(x+fontWidth, row, bg)
	}
}

func (d *Display) setPixel(x, y int, c uint16) {
	if x < 0 || x >= DisplayWidth || y < 0 || y >= LineHeight {
		return
	}
	d.linebuf[y*DisplayWidth+x] = c
}

// Pump advances the in-flight operation by at most one chunk. On a
// transfer error the job state is left untouched so the same chunk is
// retried on the next call. No-op when idle.
func (d *Display) Pump() {
	switch d.op {
	case opFill:
		d.pumpFill()
	case opBlit:
		d.pumpBlit()
	}
}

func (d *Display) pumpFill() {
	remaining := uint32(DisplayPixels) - d.fillSentPixels
	if remaining == 0 {
		d.finish()
		return
	}

	maxPixels := uint32(ChunkBytes / 2)
	thisPixels := remaining
	if thisPixels > maxPixels {
		thisPixels = maxPixels
	}

	hi := byte(d.fillColor >> 8)
	lo := byte(d.fillColor)
	thisBytes := thisPixels * 2

	for i := uint32(0); i < thisBytes; i += 2 {
		d.txbuf[i] = hi
		d.txbuf[i+1] = lo
	}

	if err := d.spi.Tx(d.txbuf[:thisBytes], nil); err != nil {
		return
	}

	d.fillSentPixels += thisPixels
	if d.fillSentPixels >= DisplayPixels {
		d.finish()
	}
}

func (d *Display) pumpBlit() {
	remaining := d.blitLen - d.blitSent
	if remaining == 0 {
		d.finish()
		return
	}

	maxPixels := uint32(ChunkBytes / 2)
	thisPixels := remaining / 2
	if thisPixels > maxPixels {
		thisPixels = maxPixels
	}

	// Convert RGB565 to the controller's big-endian byte order.
	src := d.linebuf[d.blitSent/2:]
	for i := uint32(0); i < thisPixels; i++ {
		c := src[i]
		d.txbuf[2*i] = byte(c >> 8)
		d.txbuf[2*i+1] = byte(c)
	}

	thisBytes := thisPixels * 2
	if err := d.spi.Tx(d.txbuf[:thisBytes], nil); err != nil {
		return
	}

	d.blitSent += thisBytes
	if d.blitSent >= d.blitLen {
		d.finish()
	}
}

func (d *Display) finish() {
	d.cs.Set(true)
	d.op = opNone
}

// IsBusy reports an operation in flight.
func (d *Display) IsBusy() bool {
	return d.op != opNone
}

// colorCycle is a small non-blocking demo that rotates the screen
// through red, green and blue.
type colorCycle struct {
	phase      uint8
	phaseStart uint32
	running    bool
	holdMS     uint32
}

var cyclePalette = [3]uint16{0xF800, 0x07E0, 0x001F}

// StartColorCycle begins cycling with the given hold time per color
// (700 ms when zero).
func (d *Display) StartColorCycle(now, holdMS uint32) {
	if holdMS == 0 {
		holdMS = 700
	}
	d.cycle = colorCycle{phaseStart: now, running: true, holdMS: holdMS}
	d.StartFill(cyclePalette[0])
}

// StopColorCycle halts cycling; any in-flight fill still drains.
func (d *Display) StopColorCycle() {
	d.cycle.running = false
}

// ServiceColorCycle pumps the engine and advances the cycle phase once
// the current fill has drained and the hold time elapsed.
func (d *Display) ServiceColorCycle(now uint32) {
	d.Pump()

	if !d.cycle.running || d.IsBusy() {
		return
	}
	if now-d.cycle.phaseStart < d.cycle.holdMS {
		return
	}

	d.cycle.phaseStart = now
	d.cycle.phase = (d.cycle.phase + 1) % 3
	d.StartFill(cyclePalette[d.cycle.phase])
}
