//go:build tinygo

package core

// defaultTicks is a placeholder until the target registers its hardware
// timer via SetTimeSource. With no source every watchdog wait degenerates
// to "no progress observed", so targets must register one before issuing
// transfers with a nonzero timeout.
func defaultTicks() uint32 {
	return 0
}
