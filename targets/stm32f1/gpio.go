//go:build stm32f103

package stm32f1

import (
	"runtime/volatile"
	"unsafe"

	"gomaple/core"
)

// Port B GPIO block, home of the I2C pins on this part (PB6/PB7 for the
// first bus, PB10/PB11 for the second, PB8/PB9 with the remap).
const gpiobBase = 0x40010C00

type gpioRegMap struct {
	CRL  volatile.Register32 // Configuration, pins 0-7
	CRH  volatile.Register32 // Configuration, pins 8-15
	IDR  volatile.Register32 // Input data
	ODR  volatile.Register32 // Output data
	BSRR volatile.Register32 // Bit set/reset
	BRR  volatile.Register32 // Bit reset
	LCKR volatile.Register32 // Lock
}

// Pin configuration nibbles: MODE[1:0] output 2 MHz, CNF[1:0] per mode.
const (
	cnfInputFloating   = 0x4 // MODE=00 CNF=01
	cnfOutputOpenDrain = 0x6 // MODE=10 CNF=01
	cnfAltOpenDrain    = 0xE // MODE=10 CNF=11
)

// GPIODriver implements core.GPIODriver for port B. Pin numbers are the
// bit positions within the port.
type GPIODriver struct {
	regs *gpioRegMap
}

// NewGPIODriver constructs the port B driver.
func NewGPIODriver() *GPIODriver {
	return &GPIODriver{regs: (*gpioRegMap)(unsafe.Pointer(uintptr(gpiobBase)))}
}

func (g *GPIODriver) SetPinMode(pin core.GPIOPin, mode core.PinMode) {
	var nibble uint32
	switch mode {
	case core.PinInputFloating:
		nibble = cnfInputFloating
	case core.PinOutputOpenDrain:
		nibble = cnfOutputOpenDrain
	case core.PinAltOpenDrain:
		nibble = cnfAltOpenDrain
	}

	reg := &g.regs.CRL
	shift := uint32(pin) * 4
	if pin >= 8 {
		reg = &g.regs.CRH
		shift = uint32(pin-8) * 4
	}
	reg.ReplaceBits(nibble, 0xF, uint8(shift))
}

func (g *GPIODriver) WritePin(pin core.GPIOPin, high bool) {
	if high {
		g.regs.BSRR.Set(1 << uint32(pin))
	} else {
		g.regs.BRR.Set(1 << uint32(pin))
	}
}

func (g *GPIODriver) ReadPin(pin core.GPIOPin) bool {
	return g.regs.IDR.Get()&(1<<uint32(pin)) != 0
}
