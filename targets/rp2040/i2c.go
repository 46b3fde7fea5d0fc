//go:build rp2040 || rp2350

package main

import "machine"

// i2cRecovery implements physical bus recovery for I2C0 by taking the
// two bus pins away from the controller, bit-banging them as outputs,
// and handing them back.
type i2cRecovery struct {
	bus *machine.I2C
	scl machine.Pin
	sda machine.Pin
	hz  uint32
}

func newI2CRecovery(bus *machine.I2C, scl, sda machine.Pin, hz uint32) *i2cRecovery {
	return &i2cRecovery{bus: bus, scl: scl, sda: sda, hz: hz}
}

func (r *i2cRecovery) DetachBus() {
	// Open-drain style: drive low, release high via input pull-up.
	r.scl.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.sda.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.scl.High()
	r.sda.High()
}

func (r *i2cRecovery) SetSCL(high bool) {
	r.scl.Set(high)
}

func (r *i2cRecovery) SetSDA(high bool) {
	r.sda.Set(high)
}

func (r *i2cRecovery) ReadSDA() bool {
	r.sda.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	v := r.sda.Get()
	r.sda.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.sda.High()
	return v
}

func (r *i2cRecovery) ReattachBus() error {
	return r.bus.Configure(machine.I2CConfig{
		Frequency: r.hz,
		SCL:       r.scl,
		SDA:       r.sda,
	})
}
