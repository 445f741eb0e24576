package core

import "fmt"

// simBus is a scripted register-level bus simulator implementing I2CRegs.
// It models one well-behaved slave that acknowledges everything unless a
// fault is injected, and records the observable bus trace: START, RSTART,
// ADDR, HDR/ADDRL (10-bit), W/R data bytes, STOP.
type simBus struct {
	trace []string

	enabled bool
	started bool
	ackOn   bool
	status  Status

	addrPhase bool // between a start condition and the address byte(s)
	expectLow bool // 10-bit header seen, low address byte next
	reading   bool

	msgIdx    int // counts address phases, 10-bit header pairs count once
	dataCount int // data bytes in the current message

	// Received-byte source and the master's ack setting observed when
	// each byte was clocked in. The last entry must be false for a
	// correctly terminated read.
	nextRead   byte
	ackAtClock []bool
	rxStopped  bool

	// Recorded configuration writes.
	inputClkMHz uint32
	ccr         uint32
	trise       uint32
	irqMask     IRQClass

	// Fault injection.
	nackAddrAt    int // message index whose address byte is NACKed
	nackDataMsg   int // message index for the data-byte NACK below
	nackDataAfter int // NACK once this many data bytes arrived in that message
	dead          bool
	stallPolls    int // Status1 returns no events for this many reads

	// Fired after any event-producing transition (interrupt-mode tests).
	onEvent func()
}

func newSimBus() *simBus {
	return &simBus{nackAddrAt: -1, nackDataMsg: -1, nackDataAfter: -1}
}

func (s *simBus) event(st Status) {
	s.status = st
	if s.onEvent != nil {
		s.onEvent()
	}
}

func (s *simBus) PeripheralEnable()  { s.enabled = true }
func (s *simBus) PeripheralDisable() { s.enabled = false }

func (s *simBus) PeripheralReset() {
	s.enabled = false
	s.started = false
	s.status = 0
	s.addrPhase = false
	s.expectLow = false
	s.reading = false
}

func (s *simBus) StartCondition() {
	if s.dead {
		s.trace = append(s.trace, "START")
		return
	}
	if s.started {
		s.trace = append(s.trace, "RSTART")
	} else {
		s.trace = append(s.trace, "START")
		s.started = true
	}
	s.addrPhase = true
	s.reading = false
	s.rxStopped = false
	s.dataCount = 0
	s.event(StatusStartSent)
}

func (s *simBus) StopCondition() {
	s.trace = append(s.trace, "STOP")
	s.started = false
	s.addrPhase = false
	s.status = 0
}

func (s *simBus) WriteData(b byte) {
	switch {
	case s.addrPhase && s.expectLow:
		// Low byte of a 10-bit address.
		s.trace = append(s.trace, fmt.Sprintf("ADDRL %02X", b))
		s.expectLow = false
		s.addrPhase = false
		if s.nackAddrAt == s.msgIdx {
			s.msgIdx++
			s.event(StatusAckFailure)
			return
		}
		s.msgIdx++
		s.event(StatusAddrSent)

	case s.addrPhase && b&0xF8 == 0xF0:
		// 10-bit header.
		if b&1 != 0 {
			s.trace = append(s.trace, fmt.Sprintf("HDR %02X R", b))
			s.reading = true
			s.addrPhase = false
			s.event(StatusAddrSent)
			return
		}
		s.trace = append(s.trace, fmt.Sprintf("HDR %02X", b))
		s.expectLow = true
		s.event(StatusAddr10Sent)

	case s.addrPhase:
		dir := "W"
		if b&1 != 0 {
			dir = "R"
			s.reading = true
		}
		s.trace = append(s.trace, fmt.Sprintf("ADDR %02X %s", b>>1, dir))
		s.addrPhase = false
		if s.nackAddrAt == s.msgIdx {
			s.msgIdx++
			s.event(StatusAckFailure)
			return
		}
		s.msgIdx++
		s.event(StatusAddrSent)

	default:
		// Data byte from the master.
		s.trace = append(s.trace, fmt.Sprintf("W %02X", b))
		s.dataCount++
		if s.nackDataMsg == s.msgIdx-1 && s.dataCount >= s.nackDataAfter && s.nackDataAfter >= 0 {
			s.event(StatusAckFailure)
			return
		}
		s.event(StatusTxEmpty)
	}
}

// clockRx shifts the next byte in from the slave, honoring the master's
// acknowledge setting at clock time.
func (s *simBus) clockRx() {
	if s.rxStopped {
		s.status &^= StatusRxNotEmpty
		return
	}
	s.ackAtClock = append(s.ackAtClock, s.ackOn)
	if !s.ackOn {
		// The slave saw the NACK; this byte is its last.
		s.rxStopped = true
	}
	s.event(StatusRxNotEmpty)
}

func (s *simBus) ReadData() byte {
	b := s.nextRead
	s.nextRead++
	s.trace = append(s.trace, fmt.Sprintf("R %02X", b))
	s.clockRx()
	return b
}

func (s *simBus) Status1() Status {
	if s.stallPolls > 0 {
		s.stallPolls--
		return 0
	}
	return s.status
}

func (s *simBus) ClearAddrFlag() {
	s.status &^= StatusAddrSent
	if s.reading {
		s.rxStopped = false
		s.clockRx()
		return
	}
	if !s.addrPhase && !s.expectLow && s.started {
		s.event(StatusTxEmpty)
	}
}

func (s *simBus) ClearErrorFlags(f Status) { s.status &^= f }

func (s *simBus) BusBusy() bool { return s.started }

func (s *simBus) EnableAck()  { s.ackOn = true }
func (s *simBus) DisableAck() { s.ackOn = false }

func (s *simBus) EnableIRQ(c IRQClass)  { s.irqMask |= c }
func (s *simBus) DisableIRQ(c IRQClass) { s.irqMask &^= c }

func (s *simBus) SetInputClock(mhz uint32)   { s.inputClkMHz = mhz }
func (s *simBus) SetClockControl(val uint32) { s.ccr = val }
func (s *simBus) SetTrise(val uint32)        { s.trise = val }

// fakeClock is a deterministic µs time source that advances one tick per
// read, so watchdog expiry and busy delays need no real elapsed time.
type fakeClock struct {
	now uint32
}

func (c *fakeClock) ticks() uint32 {
	c.now++
	return c.now
}

// fakeGPIO records pin modes and levels. SDA can be scripted to stay low
// until a number of SCL falling edges have been seen, like a slave stuck
// mid-byte.
type fakeGPIO struct {
	modes  map[GPIOPin]PinMode
	levels map[GPIOPin]bool

	sdaPin         GPIOPin
	sclPin         GPIOPin
	sdaStuckEdges  int // falling SCL edges before SDA releases
	sclFallingSeen int
}

func newFakeGPIO() *fakeGPIO {
	return &fakeGPIO{
		modes:  make(map[GPIOPin]PinMode),
		levels: make(map[GPIOPin]bool),
	}
}

func (g *fakeGPIO) SetPinMode(pin GPIOPin, mode PinMode) { g.modes[pin] = mode }

func (g *fakeGPIO) WritePin(pin GPIOPin, high bool) {
	if pin == g.sclPin && g.levels[pin] && !high {
		g.sclFallingSeen++
	}
	g.levels[pin] = high
}

func (g *fakeGPIO) ReadPin(pin GPIOPin) bool {
	if pin == g.sdaPin && g.sclFallingSeen < g.sdaStuckEdges {
		return false
	}
	return g.levels[pin]
}

// fakeClockDriver reports a fixed input frequency.
type fakeClockDriver struct {
	freq    uint32
	enabled map[ClockID]bool
}

func newFakeClockDriver(freq uint32) *fakeClockDriver {
	return &fakeClockDriver{freq: freq, enabled: make(map[ClockID]bool)}
}

func (c *fakeClockDriver) EnableClock(id ClockID)           { c.enabled[id] = true }
func (c *fakeClockDriver) ClockFrequency(id ClockID) uint32 { return c.freq }

// fakeIntr is an interrupt controller whose lines are fired manually by
// the test's event pump.
type fakeIntr struct {
	handlers map[IRQLine]func()
	enabled  map[IRQLine]bool
}

func newFakeIntr() *fakeIntr {
	return &fakeIntr{
		handlers: make(map[IRQLine]func()),
		enabled:  make(map[IRQLine]bool),
	}
}

func (f *fakeIntr) SetHandler(line IRQLine, fn func()) { f.handlers[line] = fn }
func (f *fakeIntr) EnableLine(line IRQLine)            { f.enabled[line] = true }
func (f *fakeIntr) DisableLine(line IRQLine)           { f.enabled[line] = false }
