// Package console carries bus transactions over a serial link, so a host
// can drive a firmware-attached bus interactively: the host side encodes
// transfer requests into protocol frames, the firmware side decodes them,
// runs them against the engine, and answers with per-message results.
package console

import (
	"errors"
	"fmt"
	"io"

	"gomaple/core"
	"gomaple/protocol"
)

// Request opcodes.
const (
	opXfer  = 1
	opReset = 2
)

// Transfer status codes on the wire.
const (
	StatusOK       = 0
	StatusProtocol = 1
	StatusTimeout  = 2
	StatusInvalid  = 3
)

// Bus is the engine surface the console drives. *core.Dev implements it.
type Bus interface {
	MasterXfer(msgs []core.Msg, timeoutMs uint32) error
	BusReset()
	ErrorFlags() core.Status
}

// Request is one transaction to run on the remote bus.
type Request struct {
	Timeout uint32 // ms, 0 waits forever
	Msgs    []core.Msg
}

// MsgResult reports the outcome of one message.
type MsgResult struct {
	Xferred uint16
	Data    []byte // received bytes, read messages only
}

// Result is the remote outcome of a Request.
type Result struct {
	Status     uint8
	ErrorFlags uint32
	Msgs       []MsgResult
}

// EncodeRequest renders req into a frame payload.
func EncodeRequest(req Request) []byte {
	p := []byte{opXfer}
	p = protocol.AppendUint(p, req.Timeout)
	p = protocol.AppendUint(p, uint32(len(req.Msgs)))
	for i := range req.Msgs {
		m := &req.Msgs[i]
		n := m.Len
		if m.Flags&core.MsgRead == 0 && int(n) > len(m.Data) {
			// Never encode a write longer than the bytes we hold.
			n = uint16(len(m.Data))
		}
		p = protocol.AppendUint(p, uint32(m.Addr))
		p = protocol.AppendUint(p, uint32(m.Flags))
		p = protocol.AppendUint(p, uint32(n))
		if m.Flags&core.MsgRead == 0 {
			p = protocol.AppendBytes(p, m.Data[:n])
		}
	}
	return p
}

// DecodeRequest parses a frame payload into a runnable request, with
// buffers allocated for the read messages.
func DecodeRequest(payload []byte) (Request, error) {
	var req Request
	if len(payload) == 0 || payload[0] != opXfer {
		return req, fmt.Errorf("console: malformed request payload")
	}
	rest := payload[1:]
	timeout, err := protocol.DecodeUint(&rest)
	if err != nil {
		return req, err
	}
	req.Timeout = timeout
	nmsgs, err := protocol.DecodeUint(&rest)
	if err != nil {
		return req, err
	}
	// Counts and lengths come off the wire; bound them by what the
	// payload can actually carry before allocating anything. Every
	// message takes at least three bytes (addr, flags, length).
	if nmsgs > uint32(len(rest))/3 {
		return req, fmt.Errorf("console: request claims %d messages in %d bytes", nmsgs, len(rest))
	}
	req.Msgs = make([]core.Msg, 0, nmsgs)
	for i := uint32(0); i < nmsgs; i++ {
		var m core.Msg
		addr, err := protocol.DecodeUint(&rest)
		if err != nil {
			return req, err
		}
		flags, err := protocol.DecodeUint(&rest)
		if err != nil {
			return req, err
		}
		length, err := protocol.DecodeUint(&rest)
		if err != nil {
			return req, err
		}
		m.Addr = uint16(addr)
		m.Flags = core.MsgFlags(flags)
		m.Len = uint16(length)
		if m.Flags&core.MsgRead == 0 {
			data, err := protocol.DecodeBytes(&rest)
			if err != nil {
				return req, err
			}
			m.Data = append([]byte(nil), data...)
		} else {
			// The read result must travel back in one frame.
			if int(m.Len) > protocol.PayloadMax {
				return req, fmt.Errorf("console: read length %d exceeds frame capacity", m.Len)
			}
			m.Data = make([]byte, m.Len)
		}
		req.Msgs = append(req.Msgs, m)
	}
	return req, nil
}

func encodeResult(res *Result) []byte {
	p := []byte{opXfer, res.Status}
	p = protocol.AppendUint(p, res.ErrorFlags)
	p = protocol.AppendUint(p, uint32(len(res.Msgs)))
	for i := range res.Msgs {
		p = protocol.AppendUint(p, uint32(res.Msgs[i].Xferred))
		p = protocol.AppendBytes(p, res.Msgs[i].Data)
	}
	return p
}

func decodeResult(payload []byte) (*Result, error) {
	if len(payload) < 2 || payload[0] != opXfer {
		return nil, fmt.Errorf("console: malformed result payload")
	}
	res := &Result{Status: payload[1]}
	rest := payload[2:]
	flags, err := protocol.DecodeUint(&rest)
	if err != nil {
		return nil, err
	}
	res.ErrorFlags = flags
	nmsgs, err := protocol.DecodeUint(&rest)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nmsgs; i++ {
		xferred, err := protocol.DecodeUint(&rest)
		if err != nil {
			return nil, err
		}
		data, err := protocol.DecodeBytes(&rest)
		if err != nil {
			return nil, err
		}
		res.Msgs = append(res.Msgs, MsgResult{
			Xferred: uint16(xferred),
			Data:    append([]byte(nil), data...),
		})
	}
	return res, nil
}

func statusFor(err error) uint8 {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, core.ErrTimeout):
		return StatusTimeout
	case errors.Is(err, core.ErrProtocol):
		return StatusProtocol
	default:
		return StatusInvalid
	}
}

// Serve runs the firmware side: decode requests from port, execute them
// on bus, answer with the matching sequence number. Returns on the first
// port error.
func Serve(port io.ReadWriter, bus Bus) error {
	dec := protocol.NewDecoder()
	buf := make([]byte, 64)
	for {
		n, err := port.Read(buf)
		if err != nil {
			return err
		}
		for _, f := range dec.Write(buf[:n]) {
			resp := handle(f.Payload, bus)
			out, err := protocol.EncodeFrame(f.Seq, resp)
			if err != nil {
				continue
			}
			if _, err := port.Write(out); err != nil {
				return err
			}
		}
	}
}

func handle(payload []byte, bus Bus) []byte {
	if len(payload) == 0 {
		return encodeResult(&Result{Status: StatusInvalid})
	}
	switch payload[0] {
	case opReset:
		bus.BusReset()
		return []byte{opReset, StatusOK}

	case opXfer:
		req, err := DecodeRequest(payload)
		if err != nil {
			return encodeResult(&Result{Status: StatusInvalid})
		}

		xferErr := bus.MasterXfer(req.Msgs, req.Timeout)
		res := &Result{
			Status:     statusFor(xferErr),
			ErrorFlags: uint32(bus.ErrorFlags()),
		}
		for i := range req.Msgs {
			m := &req.Msgs[i]
			mr := MsgResult{Xferred: m.Xferred}
			if m.Flags&core.MsgRead != 0 {
				mr.Data = m.Data[:m.Xferred]
			}
			res.Msgs = append(res.Msgs, mr)
		}
		return encodeResult(res)

	default:
		return encodeResult(&Result{Status: StatusInvalid})
	}
}
