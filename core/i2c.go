// I2C bus-master support.
//
// The engine drives one physical bus per Dev through an abstract register
// interface (I2CRegs), sequencing start conditions, address phases, data
// bytes, repeated starts and the final stop across a caller-supplied
// message queue. Hardware events are consumed either by polling status
// flags from the calling goroutine or from interrupt handlers; both modes
// present the same synchronous MasterXfer contract.
package core

import (
	"fmt"
	"sync/atomic"

	"tinygo.org/x/drivers"
)

// DevState is the run state of one bus device.
type DevState int8

const (
	StateError    DevState = -1
	StateDisabled DevState = 0
	StateIdle     DevState = 1
	StateXferDone DevState = 2
	StateBusy     DevState = 3
)

// MsgFlags qualifies one message.
type MsgFlags uint16

const (
	MsgRead      MsgFlags = 0x1 // read from the slave instead of writing
	Msg10BitAddr MsgFlags = 0x2 // Addr is a 10-bit address
)

// EnableFlags selects bus options at MasterEnable time.
type EnableFlags uint32

const (
	FastMode      EnableFlags = 0x1 // 400 kHz
	Duty16x9      EnableFlags = 0x2 // 16/9 duty ratio (fast mode only)
	Remap         EnableFlags = 0x4 // use the alternate pin mapping
	BusResetFirst EnableFlags = 0x8 // run the bus recovery sequence first
)

// Msg is one logical transfer within a transaction. Data is owned by the
// caller and must remain valid until MasterXfer returns. Xferred is
// written by the engine and reflects actual progress even after an error.
type Msg struct {
	Addr    uint16 // 7-bit address, or 10-bit with Msg10BitAddr
	Flags   MsgFlags
	Len     uint16 // requested byte count
	Xferred uint16 // bytes actually transferred (output)
	Data    []byte
}

func (m *Msg) remaining() uint16 { return m.Len - m.Xferred }

// Dev is one physical bus instance. The configuration fields are set once
// by startup code; the engine only mutates the run state.
type Dev struct {
	Regs I2CRegs

	SDA, SCL GPIOPin
	// Alternate mapping, selected by the Remap enable flag.
	SDARemap, SCLRemap GPIOPin

	Clock    ClockID
	EventIRQ IRQLine
	ErrorIRQ IRQLine

	// Run state. state and errorFlags are written only by the engine
	// (polling loop or interrupt handler) and are defined for the
	// caller only once the blocking call has returned. timestamp is
	// the µs tick of the last observed progress, written solely by the
	// event path.
	state      DevState
	errorFlags Status
	timestamp  uint32

	sda, scl GPIOPin // active pins
	irqMode  bool
	x        *xfer // in-flight transaction, for handler access
}

// NewDev builds a device handle for one bus instance.
func NewDev(regs I2CRegs, sda, scl GPIOPin, clock ClockID, evIRQ, erIRQ IRQLine) *Dev {
	return &Dev{
		Regs:     regs,
		SDA:      sda,
		SCL:      scl,
		Clock:    clock,
		EventIRQ: evIRQ,
		ErrorIRQ: erIRQ,
		sda:      sda,
		scl:      scl,
	}
}

// State returns the device run state. Only meaningful while no transfer
// is in flight.
func (d *Dev) State() DevState { return d.state }

// ErrorFlags returns the raw error-class status bits captured when the
// device last entered the error state. Zero after a watchdog timeout.
func (d *Dev) ErrorFlags() Status { return d.errorFlags }

func (d *Dev) setTimestamp(t uint32) { atomic.StoreUint32(&d.timestamp, t) }
func (d *Dev) loadTimestamp() uint32 { return atomic.LoadUint32(&d.timestamp) }

// Init resets the peripheral to its default register values and marks the
// device idle. The peripheral clock is gated on first so register access
// is legal.
func (d *Dev) Init() {
	MustClock().EnableClock(d.Clock)
	d.Regs.PeripheralReset()
	d.errorFlags = 0
	d.state = StateIdle
}

// MasterEnable configures the device as bus master: clock source, pin
// modes (delegated to the GPIO driver), bus timing per TimingFor, the
// concurrency mode, and finally the peripheral enable.
//
// The concurrency mode is fixed here for the life of the device: polled
// when no interrupt driver is registered, interrupt-driven otherwise.
func (d *Dev) MasterEnable(flags EnableFlags) {
	d.sda, d.scl = d.SDA, d.SCL
	if flags&Remap != 0 && (d.SDARemap != 0 || d.SCLRemap != 0) {
		d.sda, d.scl = d.SDARemap, d.SCLRemap
	}

	if flags&BusResetFirst != 0 {
		d.BusReset()
	}

	clk := MustClock()
	clk.EnableClock(d.Clock)

	gpio := MustGPIO()
	gpio.SetPinMode(d.scl, PinAltOpenDrain)
	gpio.SetPinMode(d.sda, PinAltOpenDrain)

	pclk := clk.ClockFrequency(d.Clock)
	d.Regs.SetInputClock(pclk / 1000000)
	ccr, trise := TimingFor(flags, pclk)
	d.Regs.SetClockControl(ccr)
	d.Regs.SetTrise(trise)

	if intr := interruptDriver; intr != nil {
		d.irqMode = true
		intr.SetHandler(d.EventIRQ, d.handleEvent)
		intr.SetHandler(d.ErrorIRQ, d.handleError)
		intr.EnableLine(d.EventIRQ)
		intr.EnableLine(d.ErrorIRQ)
	} else {
		d.irqMode = false
	}

	d.Regs.PeripheralEnable()
	d.state = StateIdle
}

// drain budget for Disable, in µs
const disableDrainMicros = 25000

// Disable waits for any in-flight bus activity to drain, then switches
// the peripheral off.
func (d *Dev) Disable() {
	start := ticks()
	for d.Regs.BusBusy() && ticks()-start < disableDrainMicros {
	}
	if d.irqMode {
		if intr := interruptDriver; intr != nil {
			intr.DisableLine(d.EventIRQ)
			intr.DisableLine(d.ErrorIRQ)
		}
		d.Regs.DisableIRQ(IRQError | IRQEvent | IRQBuffer)
	}
	d.Regs.PeripheralDisable()
	d.state = StateDisabled
}

// MasterXfer executes msgs as one transaction, in submission order:
// a start condition, then for each message the address phase and data
// bytes, a repeated start between messages, and a single stop after the
// final byte. The call blocks until every message completes or the first
// error.
//
// timeoutMs bounds each wait for bus progress; 0 waits without bound.
// On return every message's Xferred reflects actual progress. Errors are
// ErrProtocol (inspect ErrorFlags for the captured status bits) or
// ErrTimeout; neither triggers any automatic retry or recovery. The
// caller decides between Init, BusReset, or giving up.
func (d *Dev) MasterXfer(msgs []Msg, timeoutMs uint32) error {
	switch d.state {
	case StateIdle, StateXferDone, StateError:
	case StateBusy:
		return ErrBusy
	default:
		return ErrDisabled
	}
	if len(msgs) == 0 {
		return nil
	}
	for i := range msgs {
		if int(msgs[i].Len) > len(msgs[i].Data) {
			return fmt.Errorf("i2c: message %d length %d exceeds buffer size %d",
				i, msgs[i].Len, len(msgs[i].Data))
		}
		msgs[i].Xferred = 0
	}

	x := &xfer{dev: d, msgs: msgs}
	d.errorFlags = 0
	d.state = StateBusy
	d.setTimestamp(ticks())
	d.x = x
	d.Regs.EnableAck()

	if d.irqMode {
		x.done = make(chan error, 1)
		d.Regs.EnableIRQ(IRQError | IRQEvent | IRQBuffer)
		d.Regs.StartCondition()
		err := d.waitCompletion(x, timeoutMs)
		d.Regs.DisableIRQ(IRQError | IRQEvent | IRQBuffer)
		d.x = nil
		return err
	}

	d.Regs.StartCondition()
	err := d.runPolled(x, timeoutMs)
	d.x = nil
	return err
}

// Default timeout for the drivers.I2C adapter, in ms.
const adapterTimeoutMs = 100

// Tx implements the tinygo.org/x/drivers I2C contract on top of
// MasterXfer: a write message for w, a read message for r, with a
// repeated start between them when both are present. An empty pair
// degenerates to an address-only probe.
func (d *Dev) Tx(addr uint16, w, r []byte) error {
	var msgs [2]Msg
	n := 0
	if len(w) > 0 || len(r) == 0 {
		msgs[n] = Msg{Addr: addr, Len: uint16(len(w)), Data: w}
		n++
	}
	if len(r) > 0 {
		msgs[n] = Msg{Addr: addr, Flags: MsgRead, Len: uint16(len(r)), Data: r}
		n++
	}
	return d.MasterXfer(msgs[:n], adapterTimeoutMs)
}

// ReadRegister reads buf from register reg of the device at addr.
func (d *Dev) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	return d.Tx(uint16(addr), []byte{reg}, buf)
}

// WriteRegister writes buf to register reg of the device at addr.
func (d *Dev) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	w := make([]byte, len(buf)+1)
	w[0] = reg
	copy(w[1:], buf)
	return d.Tx(uint16(addr), w, nil)
}

// Existing TinyGo device drivers can run on this bus unmodified.
var _ drivers.I2C = (*Dev)(nil)
