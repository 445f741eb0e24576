//go:build stm32f103

package stm32f1

import (
	"runtime/volatile"
	"unsafe"

	"gomaple/core"
)

// Reset and clock control block.
const rccBase = 0x40021000

type rccRegMap struct {
	CR       volatile.Register32
	CFGR     volatile.Register32
	CIR      volatile.Register32
	APB2RSTR volatile.Register32
	APB1RSTR volatile.Register32
	AHBENR   volatile.Register32
	APB2ENR  volatile.Register32
	APB1ENR  volatile.Register32
	BDCR     volatile.Register32
	CSR      volatile.Register32
}

// Clock IDs understood by this driver.
const (
	ClockI2C1 core.ClockID = 1
	ClockI2C2 core.ClockID = 2
)

// APB1 enable bits
const (
	apb1I2C1EN = 1 << 21
	apb1I2C2EN = 1 << 22
)

// APB1 frequency with the usual 72 MHz sysclk configuration.
const pclk1Hz = 36000000

// ClockDriver implements core.ClockDriver over the RCC block.
type ClockDriver struct {
	regs *rccRegMap
}

// NewClockDriver constructs the RCC driver.
func NewClockDriver() *ClockDriver {
	return &ClockDriver{regs: (*rccRegMap)(unsafe.Pointer(uintptr(rccBase)))}
}

func (c *ClockDriver) EnableClock(id core.ClockID) {
	switch id {
	case ClockI2C1:
		c.regs.APB1ENR.SetBits(apb1I2C1EN)
	case ClockI2C2:
		c.regs.APB1ENR.SetBits(apb1I2C2EN)
	}
}

func (c *ClockDriver) ClockFrequency(id core.ClockID) uint32 {
	return pclk1Hz
}
