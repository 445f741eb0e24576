package core

// A slave that missed a clock edge can hold SDA low forever, wedging the
// bus. The standard recovery is to bit-bang up to nine SCL pulses so the
// slave finishes whatever byte it believes it is sending and releases the
// line. Never triggered automatically on error: recovery is always an
// explicit caller decision (or the BusResetFirst enable flag).

const (
	busResetPulses  = 9
	busResetDelayUs = 10
)

// BusReset runs the recovery sequence: take the pins away from the
// peripheral, pulse SCL while sampling SDA, issue a manual start/stop so
// any half-addressed slave sees a clean transaction boundary, hand the
// pins back, and reset the peripheral into the idle state.
//
// The peripheral must be re-enabled with MasterEnable before the next
// transfer if it was configured before the reset.
func (d *Dev) BusReset() {
	gpio := MustGPIO()
	if d.sda == 0 && d.scl == 0 {
		// Not enabled yet; recover on the primary mapping.
		d.sda, d.scl = d.SDA, d.SCL
	}
	sda, scl := d.sda, d.scl

	// Release both lines under direct GPIO control.
	gpio.SetPinMode(scl, PinOutputOpenDrain)
	gpio.SetPinMode(sda, PinOutputOpenDrain)
	gpio.WritePin(scl, true)
	gpio.WritePin(sda, true)
	delayMicros(busResetDelayUs)

	for i := 0; i < busResetPulses && !gpio.ReadPin(sda); i++ {
		gpio.WritePin(scl, false)
		delayMicros(busResetDelayUs)
		gpio.WritePin(scl, true)
		delayMicros(busResetDelayUs)
	}

	// Manual start then stop.
	gpio.WritePin(sda, false)
	delayMicros(busResetDelayUs)
	gpio.WritePin(sda, true)
	delayMicros(busResetDelayUs)

	// Back to the peripheral.
	gpio.SetPinMode(scl, PinAltOpenDrain)
	gpio.SetPinMode(sda, PinAltOpenDrain)
	d.Regs.PeripheralReset()
	d.errorFlags = 0
	d.state = StateIdle
}
