package core

import "fmt"

// Engine phases between hardware events. The data phase direction comes
// from the current message's flags.
type xferPhase uint8

const (
	phaseStart    xferPhase = iota // waiting for the start condition
	phaseAddr10Low                 // 10-bit header sent, low byte next
	phaseAddrAck                   // waiting for address acknowledge
	phaseData                      // shifting data bytes
)

// xfer is the cursor of one in-flight transaction. It is advanced by
// exactly one goroutine at a time: the caller in polled mode, the
// interrupt handler in interrupt mode.
type xfer struct {
	dev   *Dev
	msgs  []Msg
	idx   int
	phase xferPhase

	// 10-bit read: set once the repeated start for the read-direction
	// header has been issued.
	hdrReadPass bool

	// Completion handoff for interrupt mode. Buffered so the handler
	// never blocks; single producer (handler), single consumer (caller).
	done chan error
}

func (x *xfer) msg() *Msg { return &x.msgs[x.idx] }

// step advances the engine on one observed status word. It reports
// whether the status carried progress and whether the whole transaction
// finished. Error-class bits are handled by the caller before step.
func (x *xfer) step(st Status) (progressed, finished bool) {
	d := x.dev
	m := x.msg()

	switch x.phase {
	case phaseStart:
		if st&StatusStartSent == 0 {
			return false, false
		}
		if m.Flags&Msg10BitAddr != 0 {
			// 11110xx header carrying the two high address bits.
			hdr := byte(0xF0) | byte((m.Addr>>8)&0x3)<<1
			if x.hdrReadPass {
				d.Regs.WriteData(hdr | 1)
				x.phase = phaseAddrAck
			} else {
				d.Regs.WriteData(hdr)
				x.phase = phaseAddr10Low
			}
		} else {
			ab := byte(m.Addr) << 1
			if m.Flags&MsgRead != 0 {
				ab |= 1
			}
			d.Regs.WriteData(ab)
			x.phase = phaseAddrAck
		}
		return true, false

	case phaseAddr10Low:
		if st&StatusAddr10Sent == 0 {
			return false, false
		}
		d.Regs.WriteData(byte(m.Addr))
		x.phase = phaseAddrAck
		return true, false

	case phaseAddrAck:
		if st&StatusAddrSent == 0 {
			return false, false
		}
		if m.Flags&Msg10BitAddr != 0 && m.Flags&MsgRead != 0 && !x.hdrReadPass {
			// Header acknowledged in write direction. Repeat the start
			// and resend it with the read bit to turn the bus around.
			d.Regs.ClearAddrFlag()
			x.hdrReadPass = true
			d.Regs.StartCondition()
			x.phase = phaseStart
			return true, false
		}
		if m.Flags&MsgRead != 0 && m.remaining() <= 1 {
			// A single-byte read must NACK that byte; acknowledge
			// generation goes off before the address stretch is
			// released and the byte gets clocked in.
			d.Regs.DisableAck()
		}
		d.Regs.ClearAddrFlag()
		if m.remaining() == 0 {
			// Address-only probe.
			return true, x.finishMsg()
		}
		x.phase = phaseData
		return true, false

	case phaseData:
		if m.Flags&MsgRead != 0 {
			if st&StatusRxNotEmpty == 0 {
				return false, false
			}
			if m.remaining() == 2 {
				// Reading the second-to-last byte clocks the final one
				// in; the slave must see acknowledge generation off by
				// then so it detects end-of-transfer.
				d.Regs.DisableAck()
			}
			m.Data[m.Xferred] = d.Regs.ReadData()
			m.Xferred++
			if m.remaining() == 0 {
				return true, x.finishMsg()
			}
			return true, false
		}

		if st&StatusTxEmpty == 0 {
			return false, false
		}
		if m.Xferred < m.Len {
			d.Regs.WriteData(m.Data[m.Xferred])
			m.Xferred++
			return true, false
		}
		// Data register drained after the final byte.
		return true, x.finishMsg()
	}
	return false, false
}

// finishMsg closes out the current message: a repeated start (no stop in
// between, so combined-format transactions keep bus ownership) when more
// messages follow, the single final stop otherwise. Reports whether the
// transaction is complete.
func (x *xfer) finishMsg() bool {
	d := x.dev
	x.idx++
	if x.idx < len(x.msgs) {
		x.hdrReadPass = false
		d.Regs.EnableAck()
		d.Regs.StartCondition()
		x.phase = phaseStart
		return false
	}
	d.Regs.StopCondition()
	return true
}

// fail aborts the transaction on an error-class status word: capture the
// raw bits, clear them at the peripheral, release the bus unless
// arbitration was lost (it is no longer ours to release), and park the
// device in the error state. The remaining queue is abandoned and the
// current message keeps its partial Xferred count.
func (x *xfer) fail(st Status) error {
	d := x.dev
	flags := st & StatusErrorMask
	d.errorFlags = flags
	d.Regs.ClearErrorFlags(flags)
	if flags&StatusArbitrationLost == 0 {
		d.Regs.StopCondition()
	}
	d.state = StateError
	return fmt.Errorf("%w (status %#x)", ErrProtocol, uint32(flags))
}
