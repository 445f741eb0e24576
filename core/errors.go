package core

import "errors"

// ErrProtocol signals a hardware-reported error condition: bus error,
// arbitration loss, acknowledge failure, overrun/underrun, checksum
// mismatch or bus alert. The captured status bits are available from
// Dev.ErrorFlags.
var ErrProtocol = errors.New("i2c: protocol error")

// ErrTimeout signals watchdog expiry with no observed bus progress.
var ErrTimeout = errors.New("i2c: transfer timed out")

// ErrBusy signals that a transaction was submitted while another one is
// still in flight on the same device.
var ErrBusy = errors.New("i2c: device busy")

// ErrDisabled signals a transfer on a device that has not been enabled.
var ErrDisabled = errors.New("i2c: device not enabled")
