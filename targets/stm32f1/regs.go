//go:build stm32f103

package stm32f1

import (
	"runtime/volatile"
	"unsafe"

	"gomaple/core"
)

// STM32F1 I2C peripheral memory map.
const (
	i2c1Base = 0x40005400
	i2c2Base = 0x40005800
)

type regMap struct {
	CR1   volatile.Register32 // Control register 1
	CR2   volatile.Register32 // Control register 2
	OAR1  volatile.Register32 // Own address register 1
	OAR2  volatile.Register32 // Own address register 2
	DR    volatile.Register32 // Data register
	SR1   volatile.Register32 // Status register 1
	SR2   volatile.Register32 // Status register 2
	CCR   volatile.Register32 // Clock control register
	TRISE volatile.Register32 // Rise time register
}

// Control register 1 bits
const (
	cr1SWRST = 1 << 15
	cr1ACK   = 1 << 10
	cr1STOP  = 1 << 9
	cr1START = 1 << 8
	cr1PEC   = 1 << 12
	cr1PE    = 1 << 0
)

// Control register 2 bits
const (
	cr2ITBUFEN = 1 << 10
	cr2ITEVTEN = 1 << 9
	cr2ITERREN = 1 << 8
	cr2FREQ    = 0xFFF
)

// Status register 2 bits
const (
	sr2BUSY = 1 << 1
)

// I2CRegs drives one hardware I2C block through its memory-mapped
// registers. It implements core.I2CRegs.
type I2CRegs struct {
	regs *regMap
}

var (
	i2c1Regs = &I2CRegs{regs: (*regMap)(unsafe.Pointer(uintptr(i2c1Base)))}
	i2c2Regs = &I2CRegs{regs: (*regMap)(unsafe.Pointer(uintptr(i2c2Base)))}
)

func (r *I2CRegs) PeripheralEnable()  { r.regs.CR1.SetBits(cr1PE) }
func (r *I2CRegs) PeripheralDisable() { r.regs.CR1.ClearBits(cr1PE) }

func (r *I2CRegs) PeripheralReset() {
	r.regs.CR1.SetBits(cr1SWRST)
	r.regs.CR1.ClearBits(cr1SWRST)
}

// waitCondClear spins until no start/stop/PEC request is pending, so a
// new condition cannot corrupt one still being driven onto the bus.
func (r *I2CRegs) waitCondClear() {
	for r.regs.CR1.Get()&(cr1START|cr1STOP|cr1PEC) != 0 {
	}
}

func (r *I2CRegs) StartCondition() {
	r.waitCondClear()
	r.regs.CR1.SetBits(cr1START)
}

func (r *I2CRegs) StopCondition() {
	r.waitCondClear()
	r.regs.CR1.SetBits(cr1STOP)
	r.waitCondClear()
}

func (r *I2CRegs) WriteData(b byte) { r.regs.DR.Set(uint32(b)) }
func (r *I2CRegs) ReadData() byte   { return byte(r.regs.DR.Get()) }

func (r *I2CRegs) Status1() core.Status { return core.Status(r.regs.SR1.Get()) }

// ClearAddrFlag releases the address-sent flag (and the bus stretch that
// comes with it) with the SR1-then-SR2 read sequence the hardware requires.
func (r *I2CRegs) ClearAddrFlag() {
	_ = r.regs.SR1.Get()
	_ = r.regs.SR2.Get()
}

func (r *I2CRegs) ClearErrorFlags(f core.Status) {
	r.regs.SR1.ClearBits(uint32(f))
}

func (r *I2CRegs) BusBusy() bool { return r.regs.SR2.Get()&sr2BUSY != 0 }

func (r *I2CRegs) EnableAck()  { r.regs.CR1.SetBits(cr1ACK) }
func (r *I2CRegs) DisableAck() { r.regs.CR1.ClearBits(cr1ACK) }

func irqBits(c core.IRQClass) uint32 {
	var bits uint32
	if c&core.IRQError != 0 {
		bits |= cr2ITERREN
	}
	if c&core.IRQEvent != 0 {
		bits |= cr2ITEVTEN
	}
	if c&core.IRQBuffer != 0 {
		bits |= cr2ITBUFEN
	}
	return bits
}

func (r *I2CRegs) EnableIRQ(c core.IRQClass)  { r.regs.CR2.SetBits(irqBits(c)) }
func (r *I2CRegs) DisableIRQ(c core.IRQClass) { r.regs.CR2.ClearBits(irqBits(c)) }

func (r *I2CRegs) SetInputClock(mhz uint32) {
	r.regs.CR2.ReplaceBits(mhz, cr2FREQ, 0)
}

func (r *I2CRegs) SetClockControl(val uint32) { r.regs.CCR.Set(val) }
func (r *I2CRegs) SetTrise(val uint32)        { r.regs.TRISE.Set(val) }
