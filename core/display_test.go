package core

import "testing"

func newTestDisplay() (*Display, *fakeSPI, *fakePin) {
	spi := &fakeSPI{}
	cs := &fakePin{}
	dc := &fakePin{}
	rst := &fakePin{}
	return NewDisplay(spi, cs, dc, rst), spi, cs
}

func TestDisplayFillChunkCount(t *testing.T) {
	d, spi, _ := newTestDisplay()

	d.StartFill(0xF800)
	if !d.IsBusy() {
		t.Fatal("expected busy after StartFill")
	}

	base := len(spi.sent)

	// 160*128 pixels * 2 bytes = 40960 bytes; 512-byte chunks => 80 pumps.
	const wantPumps = DisplayPixels * 2 / ChunkBytes
	pumps := 0
	for d.IsBusy() {
		d.Pump()
		pumps++
		if pumps > wantPumps+1 {
			t.Fatal("fill did not drain")
		}
	}

	if pumps != wantPumps {
		t.Errorf("pumps = %d, want %d", pumps, wantPumps)
	}
	if got := len(spi.sent) - base; got != DisplayPixels*2 {
		t.Errorf("sent %d data bytes, want %d", got, DisplayPixels*2)
	}
}

func TestDisplayFillByteOrder(t *testing.T) {
	d, spi, _ := newTestDisplay()

	d.StartFill(0x07E0)
	base := len(spi.sent)
	d.Pump()

	data := spi.sent[base:]
	if len(data) != ChunkBytes {
		t.Fatalf("first chunk = %d bytes, want %d", len(data), ChunkBytes)
	}
	// High byte first on the wire.
	if data[0] != 0x07 || data[1] != 0xE0 {
		t.Errorf("first pixel bytes = %02X %02X, want 07 E0", data[0], data[1])
	}
}

func TestDisplayStartWhileBusyIsNoop(t *testing.T) {
	d, _, _ := newTestDisplay()

	d.StartFill(0xF800)
	d.Pump()

	before := d.fillSentPixels
	d.StartFill(0x001F)
	if d.fillColor != 0xF800 {
		t.Error("StartFill while busy replaced the job")
	}
	if d.fillSentPixels != before {
		t.Error("StartFill while busy reset progress")
	}

	d.StartTextLine(0, "hi", 0xFFFF, 0x0000)
	if d.op != opFill {
		t.Error("StartTextLine while busy replaced the job")
	}
}

func TestDisplayPumpRetriesFailedChunk(t *testing.T) {
	d, spi, _ := newTestDisplay()

	d.StartFill(0xFFFF)
	d.Pump()
	sentAfterFirst := d.fillSentPixels

	spi.failN = 1
	d.Pump()
	if d.fillSentPixels != sentAfterFirst {
		t.Error("failed chunk advanced progress")
	}
	if !d.IsBusy() {
		t.Error("display went idle on a transfer error")
	}

	// Next pump retries the same chunk and succeeds.
	d.Pump()
	if d.fillSentPixels != sentAfterFirst+ChunkBytes/2 {
		t.Errorf("retry sent %d pixels, want %d",
			d.fillSentPixels-sentAfterFirst, ChunkBytes/2)
	}
}

func TestDisplayTextLineChunkCount(t *testing.T) {
	d, _, _ := newTestDisplay()

	d.StartTextLine(8, "hello", 0xFFFF, 0x0000)
	if !d.IsBusy() {
		t.Fatal("expected busy after StartTextLine")
	}

	// 160*8 pixels * 2 bytes = 2560 bytes => 5 pumps of 512.
	const wantPumps = DisplayWidth * LineHeight * 2 / ChunkBytes
	pumps := 0
	for d.IsBusy() {
		d.Pump()
		pumps++
		if pumps > wantPumps+1 {
			t.Fatal("blit did not drain")
		}
	}
	if pumps != wantPumps {
		t.Errorf("pumps = %d, want %d", pumps, wantPumps)
	}
}

func TestDisplayTextLineRejectsOffscreen(t *testing.T) {
	d, _, _ := newTestDisplay()

	d.StartTextLine(DisplayHeight, "x", 0xFFFF, 0x0000)
	if d.IsBusy() {
		t.Error("off-screen row started a blit")
	}
}

func TestDisplayTextLineClampsRow(t *testing.T) {
	d, _, _ := newTestDisplay()

	// Row 125 would run past the bottom; the band is pulled up to 120.
	d.StartTextLine(DisplayHeight-3, "x", 0xFFFF, 0x0000)
	if !d.IsBusy() {
		t.Fatal("clamped row did not start")
	}
}

func TestTruncateLine(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"short", "short"},
		{"exactly-twenty-six-chars!!", "exactly-twenty-six-chars!!"},
		{"this line is forty characters long yess!", "this line is forty char..."},
	}

	for _, c := range cases {
		got := TruncateLine(c.in)
		if got != c.want {
			t.Errorf("TruncateLine(%q) = %q, want %q", c.in, got, c.want)
		}
		if len(got) > MaxLineChars {
			t.Errorf("TruncateLine(%q) length %d exceeds %d", c.in, len(got), MaxLineChars)
		}
	}

	long := TruncateLine("this line is forty characters long yess!")
	if len(long) != MaxLineChars {
		t.Errorf("truncated length = %d, want %d", len(long), MaxLineChars)
	}
	if long[len(long)-3:] != "..." {
		t.Errorf("truncated line %q does not end in ellipsis", long)
	}
}

func TestDisplayGlyphRendering(t *testing.T) {
	d, _, _ := newTestDisplay()

	fg := uint16(0xFFFF)
	bg := uint16(0x0000)
	d.renderLine("!", fg, bg)

	// '!' is a single column of set rows 0-4 and 6 at glyph column 2.
	g := glyphFor('!')
	for row := 0; row < fontHeight; row++ {
		for col := 0; col < fontWidth; col++ {
			want := bg
			if g[col]&(1<<row) != 0 {
				want = fg
			}
			got := d.linebuf[row*DisplayWidth+col]
			if got != want {
				t.Fatalf("pixel (%d,%d) = %04X, want %04X", col, row, got, want)
			}
		}
		// Spacing column stays background.
		if d.linebuf[row*DisplayWidth+fontWidth] != bg {
			t.Fatalf("spacing column painted at row %d", row)
		}
	}
}

func TestDisplayColorCycle(t *testing.T) {
	d, _, _ := newTestDisplay()

	d.StartColorCycle(0, 700)
	if !d.IsBusy() {
		t.Fatal("cycle did not start a fill")
	}
	if d.fillColor != cyclePalette[0] {
		t.Errorf("first color = %04X, want %04X", d.fillColor, cyclePalette[0])
	}

	// Drain the first fill.
	for d.IsBusy() {
		d.ServiceColorCycle(100)
	}

	// Hold time not yet elapsed: stays idle.
	d.ServiceColorCycle(500)
	if d.IsBusy() {
		t.Error("advanced before hold time elapsed")
	}

	d.ServiceColorCycle(800)
	if !d.IsBusy() {
		t.Fatal("did not advance after hold time")
	}
	if d.fillColor != cyclePalette[1] {
		t.Errorf("second color = %04X, want %04X", d.fillColor, cyclePalette[1])
	}

	d.StopColorCycle()
	for d.IsBusy() {
		d.ServiceColorCycle(900)
	}
	d.ServiceColorCycle(5000)
	if d.IsBusy() {
		t.Error("cycle restarted after stop")
	}
}

func TestRGB565(t *testing.T) {
	cases := []struct {
		r, g, b uint8
		want    uint16
	}{
		{255, 0, 0, 0xF800},
		{0, 255, 0, 0x07E0},
		{0, 0, 255, 0x001F},
		{255, 255, 255, 0xFFFF},
		{0, 0, 0, 0x0000},
	}
	for _, c := range cases {
		if got := RGB565(c.r, c.g, c.b); got != c.want {
			t.Errorf("RGB565(%d,%d,%d) = %04X, want %04X", c.r, c.g, c.b, got, c.want)
		}
	}
}
