package core

// Clock-control register layout shared by the configurator and the
// register implementations.
const (
	CCRFastMode uint32 = 1 << 15 // fast-mode selection
	CCRDuty16x9 uint32 = 1 << 14 // Tlow/Thigh = 16/9 instead of 2
	CCRMask     uint32 = 0xFFF   // clock-control field width

	TriseMask uint32 = 0x3F // rise-time field width
)

const (
	standardModeHz = 100000
	fastModeHz     = 400000
)

// TimingFor derives the clock-control and rise-time register values for
// the selected bus mode from the peripheral input clock, per the
// controller's documented timing formulas.
//
// Standard mode runs the bus at 100 kHz with Tlow/Thigh = 1 and ignores
// the duty-ratio flag. Fast mode runs at 400 kHz with Tlow/Thigh = 2, or
// 16/9 when Duty16x9 is also set. The rise-time value is the input clock
// scaled to the mode's maximum rise time (1000 ns standard, 300 ns fast)
// plus one.
func TimingFor(flags EnableFlags, pclkHz uint32) (ccr, trise uint32) {
	clkMHz := pclkHz / 1000000

	if flags&FastMode != 0 {
		ccr |= CCRFastMode
		if flags&Duty16x9 != 0 {
			ccr |= CCRDuty16x9
			ccr |= pclkHz / (fastModeHz * 25)
		} else {
			ccr |= pclkHz / (fastModeHz * 3)
		}
		trise = 300*clkMHz/1000 + 1
	} else {
		ccr = pclkHz / (standardModeHz * 2)
		trise = clkMHz + 1
	}

	// The clock-control field must never be zero.
	if ccr&CCRMask == 0 {
		ccr |= 0x1
	}
	return ccr, trise
}
