package core

import "runtime"

// Watchdog'd blocking loops. Every wait for bus progress measures elapsed
// µs ticks since the device timestamp (the last-progress marker written
// by the event path) against the caller's timeout. A zero timeout waits
// without bound. Expiry aborts the call with ErrTimeout and never invokes
// bus recovery on its own.

func (d *Dev) expired(timeoutMs uint32) bool {
	return timeoutMs != 0 && ticks()-d.loadTimestamp() > timeoutMs*1000
}

// runPolled drives the transaction from the calling goroutine by polling
// the status flags directly.
func (d *Dev) runPolled(x *xfer, timeoutMs uint32) error {
	for {
		st := d.Regs.Status1()
		if st&StatusErrorMask != 0 {
			return x.fail(st)
		}
		progressed, finished := x.step(st)
		if finished {
			d.state = StateXferDone
			return nil
		}
		if progressed {
			d.setTimestamp(ticks())
			continue
		}
		if d.expired(timeoutMs) {
			d.state = StateError
			return ErrTimeout
		}
	}
}

// waitCompletion blocks the caller in interrupt mode until the handlers
// signal completion or the watchdog expires. The handoff channel is the
// only synchronization with interrupt context.
func (d *Dev) waitCompletion(x *xfer, timeoutMs uint32) error {
	for {
		select {
		case err := <-x.done:
			return err
		default:
		}
		if d.expired(timeoutMs) {
			// A completion racing the deadline still wins.
			select {
			case err := <-x.done:
				return err
			default:
			}
			d.state = StateError
			return ErrTimeout
		}
		runtime.Gosched()
	}
}

// handleEvent services the event and buffer interrupts. It only advances
// the cursor, records progress, and signals completion; no blocking work
// happens in interrupt context.
func (d *Dev) handleEvent() {
	x := d.x
	if x == nil {
		return
	}
	st := d.Regs.Status1()
	if st&StatusErrorMask != 0 {
		// Error lines can share a vector on some parts.
		x.done <- x.fail(st)
		return
	}
	progressed, finished := x.step(st)
	if progressed {
		d.setTimestamp(ticks())
	}
	if finished {
		d.state = StateXferDone
		x.done <- nil
	}
}

// handleError services the error interrupt.
func (d *Dev) handleError() {
	x := d.x
	if x == nil {
		return
	}
	st := d.Regs.Status1()
	if st&StatusErrorMask == 0 {
		return
	}
	x.done <- x.fail(st)
}
