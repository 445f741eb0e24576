//go:build stm32f103

package stm32f1

import (
	"runtime/volatile"
	"unsafe"
)

// DWT cycle counter, used as the µs time source for the watchdog.
const (
	dwtCtrlAddr   = 0xE0001000
	dwtCyccntAddr = 0xE0001004
	demcrAddr     = 0xE000EDFC

	dwtCtrlCycEn = 1 << 0
	demcrTrcEna  = 1 << 24

	cpuMHz = 72
)

var (
	dwtCtrl   = (*volatile.Register32)(unsafe.Pointer(uintptr(dwtCtrlAddr)))
	dwtCyccnt = (*volatile.Register32)(unsafe.Pointer(uintptr(dwtCyccntAddr)))
	demcr     = (*volatile.Register32)(unsafe.Pointer(uintptr(demcrAddr)))
)

// initCycleCounter turns the DWT cycle counter on.
func initCycleCounter() {
	demcr.SetBits(demcrTrcEna)
	dwtCyccnt.Set(0)
	dwtCtrl.SetBits(dwtCtrlCycEn)
}

// microTicks reads the cycle counter scaled to microseconds. Wraps every
// ~59 seconds at 72 MHz; the watchdog only uses wrap-safe differences.
func microTicks() uint32 {
	return dwtCyccnt.Get() / cpuMHz
}
