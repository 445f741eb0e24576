package core

// The watchdog measures progress in microsecond ticks from an injectable
// time source. Targets register their hardware timer here; tests register
// a deterministic fake; host builds fall back to the wall clock.

var ticksFn func() uint32

// SetTimeSource installs the microsecond tick source used by every
// blocking wait. Passing nil restores the platform default.
func SetTimeSource(fn func() uint32) {
	ticksFn = fn
}

// ticks returns the current time in microseconds. The value wraps; all
// comparisons use wrap-safe subtraction.
func ticks() uint32 {
	if ticksFn != nil {
		return ticksFn()
	}
	return defaultTicks()
}

// delayMicros busy-waits for roughly n microseconds.
func delayMicros(n uint32) {
	start := ticks()
	for ticks()-start < n {
	}
}
