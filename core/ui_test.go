package core

import "testing"

func TestUIManagerPumpOnePerCall(t *testing.T) {
	var u UIManager
	d, _, _ := newTestDisplay()

	u.SetLine(0, 0xFFFF, 0x0000, "line zero")
	u.SetLine(1, 0xFFFF, 0x0000, "line one")
	u.SetLine(2, 0xFFFF, 0x0000, "line two")

	// One blit per pump, display busy afterwards.
	if !u.PumpOnce(d) {
		t.Fatal("first pump started nothing")
	}
	if !d.IsBusy() {
		t.Fatal("display idle after pump")
	}

	// Busy display: no second start.
	if u.PumpOnce(d) {
		t.Error("pump started a blit while display busy")
	}

	for d.IsBusy() {
		d.Pump()
	}

	if !u.PumpOnce(d) {
		t.Error("second dirty line never rendered")
	}
	for d.IsBusy() {
		d.Pump()
	}
	if !u.PumpOnce(d) {
		t.Error("third dirty line never rendered")
	}
	for d.IsBusy() {
		d.Pump()
	}

	// All clean now.
	if u.PumpOnce(d) {
		t.Error("pump started a blit with nothing dirty")
	}
}

func TestUIManagerNoopUpdateStaysClean(t *testing.T) {
	var u UIManager
	d, _, _ := newTestDisplay()

	u.SetLine(0, 0xFFFF, 0x0000, "stable")
	u.PumpOnce(d)
	for d.IsBusy() {
		d.Pump()
	}

	// Same text again: no re-render.
	u.SetLine(0, 0xFFFF, 0x0000, "stable")
	if u.PumpOnce(d) {
		t.Error("unchanged text re-rendered")
	}

	// Changed text: dirty again.
	u.SetLine(0, 0xFFFF, 0x0000, "changed")
	if !u.PumpOnce(d) {
		t.Error("changed text not rendered")
	}
}

func TestUIManagerRoundRobinFairness(t *testing.T) {
	var u UIManager
	d, spi, _ := newTestDisplay()

	u.SetLine(0, 0xFFFF, 0x0000, "a")
	u.SetLine(3, 0xFFFF, 0x0000, "b")

	rendered := 0
	for i := 0; i < 10 && rendered < 2; i++ {
		if u.PumpOnce(d) {
			rendered++
		}
		for d.IsBusy() {
			d.Pump()
		}
	}
	if rendered != 2 {
		t.Errorf("rendered %d lines, want 2", rendered)
	}
	if len(spi.sent) == 0 {
		t.Error("no pixel data reached the bus")
	}
}

func TestUIManagerClear(t *testing.T) {
	var u UIManager
	d, _, _ := newTestDisplay()

	u.SetLine(0, 0xFFFF, 0x0000, "x")
	u.SetLine(5, 0xFFFF, 0x0000, "y")

	u.ClearLine(0)
	if !u.PumpOnce(d) {
		t.Error("surviving line not rendered after ClearLine")
	}
	for d.IsBusy() {
		d.Pump()
	}
	if u.PumpOnce(d) {
		t.Error("cleared line rendered")
	}

	u.ClearAll()
	if u.PumpOnce(d) {
		t.Error("pump rendered after ClearAll")
	}
}

func TestUIManagerBoundsChecks(t *testing.T) {
	var u UIManager

	// Out-of-range indices are ignored, not panics.
	u.SetLine(-1, 0, 0, "x")
	u.SetLine(UIMaxLines, 0, 0, "x")
	u.ClearLine(-1)
	u.ClearLine(UIMaxLines)

	d, _, _ := newTestDisplay()
	if u.PumpOnce(d) {
		t.Error("out-of-range SetLine registered a line")
	}
}
