package core

// ClockID identifies a peripheral clock domain entry (one per peripheral
// instance) at the clock controller.
type ClockID uint8

// ClockDriver is the abstract clock-controller interface. The engine only
// needs two things from it: turning a peripheral's clock on, and knowing
// the input frequency that peripheral sees.
type ClockDriver interface {
	// EnableClock gates the given peripheral clock on.
	EnableClock(id ClockID)

	// ClockFrequency reports the input clock frequency, in Hz, feeding
	// the given peripheral.
	ClockFrequency(id ClockID) uint32
}

// Global singleton used by core code.
var clockDriver ClockDriver

// SetClockDriver is called by target-specific code to register its driver.
func SetClockDriver(d ClockDriver) {
	clockDriver = d
}

// MustClock returns the configured driver or panics if missing.
func MustClock() ClockDriver {
	if clockDriver == nil {
		panic("clock driver not configured")
	}
	return clockDriver
}
