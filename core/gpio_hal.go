package core

// GPIOPin identifies a hardware GPIO pin number.
type GPIOPin uint8

// PinMode is the electrical configuration of a pin.
type PinMode uint8

const (
	// PinInputFloating leaves the pin high-impedance so the bus
	// pull-ups (or a slave) determine its level.
	PinInputFloating PinMode = iota
	// PinOutputOpenDrain drives the pin low or releases it.
	PinOutputOpenDrain
	// PinAltOpenDrain hands the pin to the peripheral (alternate
	// function, open drain).
	PinAltOpenDrain
)

// GPIODriver is the abstract GPIO interface used for enable-time pin
// configuration and for bus recovery. Platform-specific implementations
// handle actual hardware control.
type GPIODriver interface {
	// SetPinMode configures the electrical mode of a pin.
	SetPinMode(pin GPIOPin, mode PinMode)

	// WritePin drives the pin low (false) or releases/drives it high (true).
	WritePin(pin GPIOPin, high bool)

	// ReadPin samples the current pin level.
	ReadPin(pin GPIOPin) bool
}

// Global singleton used by core code.
var gpioDriver GPIODriver

// SetGPIODriver is called by target-specific code to register its driver.
func SetGPIODriver(d GPIODriver) {
	gpioDriver = d
}

// MustGPIO returns the configured driver or panics if missing.
func MustGPIO() GPIODriver {
	if gpioDriver == nil {
		panic("GPIO driver not configured")
	}
	return gpioDriver
}
