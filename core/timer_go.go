//go:build !tinygo

package core

import "time"

var bootTime = time.Now()

// defaultTicks derives microsecond ticks from the wall clock (regular Go,
// for host-side tests and tools).
func defaultTicks() uint32 {
	return uint32(time.Since(bootTime).Microseconds())
}
