package core

// IRQClass selects one of the peripheral's three interrupt enables.
// Classes can be OR'd together when enabling or disabling.
type IRQClass uint8

const (
	IRQError  IRQClass = 1 << iota // error conditions (bus error, NACK, ...)
	IRQEvent                       // protocol events (start sent, address sent, ...)
	IRQBuffer                      // data register ready (TxEmpty/RxNotEmpty)
)

// Status is the raw event/error flag word reported by the peripheral,
// laid out like an SR1-style status register.
type Status uint32

const (
	StatusStartSent    Status = 1 << 0 // start condition generated
	StatusAddrSent     Status = 1 << 1 // address sent and acknowledged
	StatusByteDone     Status = 1 << 2 // byte transfer finished
	StatusAddr10Sent   Status = 1 << 3 // 10-bit header sent
	StatusStopDetected Status = 1 << 4
	StatusRxNotEmpty   Status = 1 << 6 // data register holds a received byte
	StatusTxEmpty      Status = 1 << 7 // data register ready for the next byte

	StatusBusError        Status = 1 << 8
	StatusArbitrationLost Status = 1 << 9
	StatusAckFailure      Status = 1 << 10
	StatusOverrun         Status = 1 << 11
	StatusPECError        Status = 1 << 12
	StatusBusTimeout      Status = 1 << 14
	StatusSMBAlert        Status = 1 << 15
)

// StatusErrorMask covers every error-class flag the engine aborts on.
const StatusErrorMask = StatusBusError | StatusArbitrationLost | StatusAckFailure |
	StatusOverrun | StatusPECError | StatusBusTimeout | StatusSMBAlert

// I2CRegs is the abstract register interface the transaction engine drives.
// Every method is a direct hardware effect with no implicit retry; the only
// blocking these methods may do is the start/stop pending-bit busy-wait
// required to avoid corrupting an in-flight condition.
//
// Implemented by targets (memory-mapped registers) and by the simulated
// bus in tests.
type I2CRegs interface {
	// PeripheralEnable sets the peripheral-enable bit.
	PeripheralEnable()
	// PeripheralDisable clears the peripheral-enable bit.
	PeripheralDisable()
	// PeripheralReset pulses the software-reset bit, returning every
	// register to its reset value.
	PeripheralReset()

	// StartCondition waits until no start/stop/PEC request is pending,
	// then requests a (repeated) start condition.
	StartCondition()
	// StopCondition waits until no start/stop/PEC request is pending,
	// requests a stop, then waits for the request to clear so the
	// condition has physically completed before returning.
	StopCondition()

	// WriteData loads one byte into the data register.
	WriteData(b byte)
	// ReadData drains one byte from the data register.
	ReadData() byte

	// Status1 reads the event/error flag word.
	Status1() Status
	// ClearAddrFlag performs the status-read sequence that releases the
	// address-sent flag (and with it the clock stretch on the bus).
	ClearAddrFlag()
	// ClearErrorFlags clears the given error-class flags.
	ClearErrorFlags(Status)
	// BusBusy reports whether a transfer is ongoing on the bus.
	BusBusy() bool

	// EnableAck and DisableAck control acknowledge generation for
	// received bytes.
	EnableAck()
	DisableAck()

	// EnableIRQ and DisableIRQ control the peripheral-side interrupt
	// enables per class.
	EnableIRQ(IRQClass)
	DisableIRQ(IRQClass)

	// SetInputClock programs the peripheral input clock field, in MHz.
	SetInputClock(mhz uint32)
	// SetClockControl programs the clock-control register value
	// (including the fast-mode and duty bits).
	SetClockControl(val uint32)
	// SetTrise programs the maximum rise-time field.
	SetTrise(val uint32)
}
