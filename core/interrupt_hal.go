package core

// IRQLine identifies one interrupt line at the interrupt controller.
type IRQLine uint8

// InterruptDriver is the abstract interrupt-controller interface. It is
// optional: when no driver is registered the engine runs every device in
// polled mode; when one is registered, devices enabled afterwards run
// interrupt-driven. Handlers installed through it must be short and
// non-blocking; the engine's handlers only update progress state and
// signal completion.
type InterruptDriver interface {
	// SetHandler installs fn as the handler for a line. Must be called
	// before EnableLine.
	SetHandler(line IRQLine, fn func())

	// EnableLine unmasks the line at the controller.
	EnableLine(line IRQLine)

	// DisableLine masks the line at the controller.
	DisableLine(line IRQLine)
}

// Global singleton used by core code. A nil driver selects polled mode.
var interruptDriver InterruptDriver

// SetInterruptDriver is called by target-specific code to register its
// driver. Devices pick their concurrency mode at enable time, so this
// must happen before MasterEnable.
func SetInterruptDriver(d InterruptDriver) {
	interruptDriver = d
}
