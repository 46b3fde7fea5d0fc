package core

import (
	"errors"
	"testing"
)

func TestTempSensorHealthyRead(t *testing.T) {
	bus := &fakeI2C{response: [2]byte{0x17, 0x00}} // 23 C
	s := NewTempSensor(bus, &fakeRecovery{sdaHigh: true})

	s.PollOnce()

	if !s.IsOk() {
		t.Fatal("healthy read reported not ok")
	}
	if s.TempC() != 23 {
		t.Errorf("TempC = %d, want 23", s.TempC())
	}
	if s.LastErr() != "NONE" {
		t.Errorf("LastErr = %q, want NONE", s.LastErr())
	}
	if bus.calls != 1 {
		t.Errorf("bus calls = %d, want 1", bus.calls)
	}
}

func TestTempSensorNegativeTemperature(t *testing.T) {
	// -5 C little-endian int16.
	bus := &fakeI2C{response: [2]byte{0xFB, 0xFF}}
	s := NewTempSensor(bus, &fakeRecovery{sdaHigh: true})

	s.PollOnce()

	if s.TempC() != -5 {
		t.Errorf("TempC = %d, want -5", s.TempC())
	}
}

func TestTempSensorRecoverThenSucceed(t *testing.T) {
	bus := &fakeI2C{
		response: [2]byte{0x19, 0x00},
		script:   []error{ErrBusTimeout, nil},
	}
	rec := &fakeRecovery{sdaHigh: true}
	s := NewTempSensor(bus, rec)

	var logged []string
	s.Log = func(msg string) { logged = append(logged, msg) }

	s.PollOnce()

	if !s.IsOk() {
		t.Fatal("retry after recovery did not report ok")
	}
	if s.TempC() != 25 {
		t.Errorf("TempC = %d, want 25", s.TempC())
	}
	if s.LastErr() != "NONE" {
		t.Errorf("LastErr = %q, want NONE after successful retry", s.LastErr())
	}
	if rec.detached != 1 || rec.reattached != 1 {
		t.Errorf("recovery ran %d/%d times, want exactly once", rec.detached, rec.reattached)
	}
	if bus.calls != 2 {
		t.Errorf("bus calls = %d, want 2", bus.calls)
	}
	if len(logged) != 1 || logged[0] != "I2C err (TIMEOUT) -> recover" {
		t.Errorf("log lines = %q", logged)
	}
}

func TestTempSensorDoubleFailure(t *testing.T) {
	bus := &fakeI2C{script: []error{ErrBusNACK, ErrBusNACK}}
	rec := &fakeRecovery{sdaHigh: true}
	s := NewTempSensor(bus, rec)

	s.PollOnce()

	if s.IsOk() {
		t.Error("double failure reported ok")
	}
	if s.LastErr() != "NACK" {
		t.Errorf("LastErr = %q, want NACK", s.LastErr())
	}
	// Exactly one recovery per cycle, never a second.
	if rec.detached != 1 {
		t.Errorf("recoveries = %d, want 1", rec.detached)
	}
	if bus.calls != 2 {
		t.Errorf("bus calls = %d, want 2", bus.calls)
	}
}

func TestTempSensorRecoveryPulsesStuckBus(t *testing.T) {
	bus := &fakeI2C{script: []error{ErrBusFault, ErrBusFault}}
	rec := &fakeRecovery{sdaHigh: false} // SDA held low the whole time
	s := NewTempSensor(bus, rec)

	s.PollOnce()

	// 9 clock pulses plus the forced STOP's final SCL-high edge.
	if rec.sclPulses < 9 {
		t.Errorf("SCL pulses = %d, want at least 9", rec.sclPulses)
	}
}

func TestTempSensorKeepsLastGoodValue(t *testing.T) {
	bus := &fakeI2C{
		response: [2]byte{0x1E, 0x00}, // 30 C
		script:   []error{nil, ErrBusOverrun, ErrBusOverrun},
	}
	s := NewTempSensor(bus, &fakeRecovery{sdaHigh: true})

	s.PollOnce()
	if !s.IsOk() || s.TempC() != 30 {
		t.Fatalf("first poll: ok=%v temp=%d", s.IsOk(), s.TempC())
	}

	s.PollOnce()
	if s.IsOk() {
		t.Error("failed cycle still reported ok")
	}
	if s.LastErr() != "OVR" {
		t.Errorf("LastErr = %q, want OVR", s.LastErr())
	}
	// Last good temperature survives for display purposes.
	if s.TempC() != 30 {
		t.Errorf("TempC after failure = %d, want 30", s.TempC())
	}
}

func TestTempSensorServiceCadence(t *testing.T) {
	bus := &fakeI2C{response: [2]byte{0x14, 0x00}}
	s := NewTempSensor(bus, &fakeRecovery{sdaHigh: true})

	s.Service(0)
	if bus.calls != 1 {
		t.Fatalf("first Service polled %d times, want 1", bus.calls)
	}

	s.Service(100)
	s.Service(499)
	if bus.calls != 1 {
		t.Errorf("polled again before 500 ms, calls = %d", bus.calls)
	}

	s.Service(500)
	if bus.calls != 2 {
		t.Errorf("calls after 500 ms = %d, want 2", bus.calls)
	}
}

func TestBusErrString(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "NONE"},
		{ErrBusNACK, "NACK"},
		{ErrBusTimeout, "TIMEOUT"},
		{ErrBusFault, "BUS"},
		{ErrBusArbitration, "ARLO"},
		{ErrBusOverrun, "OVR"},
		{ErrBusTransfer, "XFER"},
		{errSPI, "UNKNOWN"},
	}
	for _, c := range cases {
		if got := busErrString(c.err); got != c.want {
			t.Errorf("busErrString(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}

func TestClassifyBusError(t *testing.T) {
	cases := []struct {
		err  error
		want error
	}{
		{nil, nil},
		{ErrBusNACK, ErrBusNACK},
		{ErrBusTimeout, ErrBusTimeout},
		{errors.New("I2C timeout expired"), ErrBusTimeout},
		{errors.New("I2C transaction aborted"), ErrBusNACK},
		{errors.New("address not acknowledged"), ErrBusNACK},
		{errors.New("received NACK on transmit"), ErrBusNACK},
		{errors.New("arbitration lost"), ErrBusArbitration},
		{errors.New("rx fifo overrun"), ErrBusOverrun},
		{errors.New("bus stuck low"), ErrBusFault},
		{errors.New("something else entirely"), ErrBusTransfer},
	}
	for _, c := range cases {
		if got := ClassifyBusError(c.err); got != c.want {
			t.Errorf("ClassifyBusError(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestTempSensorClassifiesVendorErrors(t *testing.T) {
	// Raw peripheral errors carry message text only. The read site must
	// map them onto the closed taxonomy before they reach LastErr.
	vendor := errors.New("I2C timeout during transfer")
	bus := &fakeI2C{script: []error{vendor, vendor}}
	s := NewTempSensor(bus, &fakeRecovery{sdaHigh: true})

	s.PollOnce()

	if s.LastErr() != "TIMEOUT" {
		t.Errorf("LastErr = %q, want TIMEOUT", s.LastErr())
	}
}

func TestTempSensorLogsFailedReinit(t *testing.T) {
	bus := &fakeI2C{script: []error{ErrBusTimeout, ErrBusTimeout}}
	rec := &fakeRecovery{sdaHigh: true, reattachErr: errors.New("I2C timeout on enable")}
	s := NewTempSensor(bus, rec)

	var logged []string
	s.Log = func(msg string) { logged = append(logged, msg) }

	s.PollOnce()

	if rec.reattached != 1 {
		t.Fatalf("reattach attempts = %d, want 1", rec.reattached)
	}
	found := false
	for _, l := range logged {
		if l == "I2C reinit failed (TIMEOUT)" {
			found = true
		}
	}
	if !found {
		t.Errorf("reinit failure not logged, log lines = %q", logged)
	}
}

func TestTempSensorNilRecovery(t *testing.T) {
	bus := &fakeI2C{script: []error{ErrBusNACK, ErrBusNACK}}
	s := NewTempSensor(bus, nil)

	s.PollOnce() // must not panic without recovery pins

	if s.IsOk() {
		t.Error("failure with nil recovery reported ok")
	}
}
