//go:build stm32f103

package stm32f1

import (
	"runtime/volatile"
	"unsafe"

	"gomaple/core"
)

// Cortex-M3 NVIC set-enable/clear-enable registers.
const (
	nvicISERBase = 0xE000E100
	nvicICERBase = 0xE000E180
)

// Interrupt lines for the I2C blocks.
const (
	IRQI2C1Event core.IRQLine = 31
	IRQI2C1Error core.IRQLine = 32
	IRQI2C2Event core.IRQLine = 33
	IRQI2C2Error core.IRQLine = 34
)

// InterruptDriver implements core.InterruptDriver over the NVIC. The
// vector stubs installed at startup route each line into Dispatch, which
// fans out to the handler registered here.
type InterruptDriver struct {
	iser     *[8]volatile.Register32
	icer     *[8]volatile.Register32
	handlers [64]func()
}

// NewInterruptDriver constructs the NVIC driver.
func NewInterruptDriver() *InterruptDriver {
	return &InterruptDriver{
		iser: (*[8]volatile.Register32)(unsafe.Pointer(uintptr(nvicISERBase))),
		icer: (*[8]volatile.Register32)(unsafe.Pointer(uintptr(nvicICERBase))),
	}
}

func (n *InterruptDriver) SetHandler(line core.IRQLine, fn func()) {
	n.handlers[line] = fn
}

func (n *InterruptDriver) EnableLine(line core.IRQLine) {
	n.iser[line/32].Set(1 << (uint32(line) % 32))
}

func (n *InterruptDriver) DisableLine(line core.IRQLine) {
	n.icer[line/32].Set(1 << (uint32(line) % 32))
}

// Dispatch is called from the vector stubs with the active line.
func (n *InterruptDriver) Dispatch(line core.IRQLine) {
	if fn := n.handlers[line]; fn != nil {
		fn()
	}
}
