//go:build stm32f103

package stm32f1

import "gomaple/core"

// Bus devices on this part. The first bus lives on PB7/PB6 (PB9/PB8 with
// the remap), the second on PB11/PB10.
var (
	I2C1 = &core.Dev{
		Regs:     i2c1Regs,
		SDA:      7,
		SCL:      6,
		SDARemap: 9,
		SCLRemap: 8,
		Clock:    ClockI2C1,
		EventIRQ: IRQI2C1Event,
		ErrorIRQ: IRQI2C1Error,
	}
	I2C2 = &core.Dev{
		Regs:     i2c2Regs,
		SDA:      11,
		SCL:      10,
		Clock:    ClockI2C2,
		EventIRQ: IRQI2C2Event,
		ErrorIRQ: IRQI2C2Error,
	}
)

// NVIC is the shared interrupt driver; vector stubs route into
// NVIC.Dispatch.
var NVIC = NewInterruptDriver()

// Setup registers the target drivers with core and starts the µs time
// source. Call once from startup code before touching the buses.
//
// Interrupt-driven operation is opt-in: pass withIRQ=true and wire the
// I2C event/error vectors to NVIC.Dispatch; otherwise every device runs
// in polled mode.
func Setup(withIRQ bool) {
	core.SetGPIODriver(NewGPIODriver())
	core.SetClockDriver(NewClockDriver())
	if withIRQ {
		core.SetInterruptDriver(NVIC)
	}
	initCycleCounter()
	core.SetTimeSource(microTicks)
}
