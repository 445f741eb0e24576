package console

import (
	"errors"
	"fmt"
	"io"

	"gomaple/core"
	"gomaple/protocol"
)

// ErrNoResponse signals that the device never answered a request.
var ErrNoResponse = errors.New("console: no response from device")

// Client is the host side of the link. Not safe for concurrent use; the
// link itself is strictly request/response.
type Client struct {
	port io.ReadWriter
	dec  *protocol.Decoder
	seq  byte
}

// NewClient wraps an open port.
func NewClient(port io.ReadWriter) *Client {
	return &Client{port: port, dec: protocol.NewDecoder()}
}

func (c *Client) roundTrip(payload []byte) ([]byte, error) {
	c.seq++
	frame, err := protocol.EncodeFrame(c.seq, payload)
	if err != nil {
		return nil, err
	}
	if _, err := c.port.Write(frame); err != nil {
		return nil, err
	}

	buf := make([]byte, 64)
	// Ports with a read timeout report idle as (0, nil); bound how long
	// we tolerate silence.
	for idle := 0; idle < 200; {
		n, err := c.port.Read(buf)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			idle++
			continue
		}
		for _, f := range c.dec.Write(buf[:n]) {
			if f.Seq == c.seq {
				return f.Payload, nil
			}
		}
	}
	return nil, ErrNoResponse
}

// Xfer runs one transaction on the remote bus.
func (c *Client) Xfer(req Request) (*Result, error) {
	payload, err := c.roundTrip(EncodeRequest(req))
	if err != nil {
		return nil, err
	}
	return decodeResult(payload)
}

// Write sends data to the device at addr.
func (c *Client) Write(addr uint16, data []byte, timeoutMs uint32) (*Result, error) {
	return c.Xfer(Request{
		Timeout: timeoutMs,
		Msgs: []core.Msg{
			{Addr: addr, Len: uint16(len(data)), Data: data},
		},
	})
}

// Read fetches n bytes from the device at addr.
func (c *Client) Read(addr uint16, n uint16, timeoutMs uint32) (*Result, error) {
	return c.Xfer(Request{
		Timeout: timeoutMs,
		Msgs: []core.Msg{
			{Addr: addr, Flags: core.MsgRead, Len: n},
		},
	})
}

// WriteRead writes w (typically a register address) then reads n bytes
// with a repeated start, the usual register-read idiom.
func (c *Client) WriteRead(addr uint16, w []byte, n uint16, timeoutMs uint32) (*Result, error) {
	return c.Xfer(Request{
		Timeout: timeoutMs,
		Msgs: []core.Msg{
			{Addr: addr, Len: uint16(len(w)), Data: w},
			{Addr: addr, Flags: core.MsgRead, Len: n},
		},
	})
}

// BusReset runs the recovery sequence on the remote bus.
func (c *Client) BusReset() error {
	payload, err := c.roundTrip([]byte{opReset})
	if err != nil {
		return err
	}
	if len(payload) < 2 || payload[0] != opReset || payload[1] != StatusOK {
		return fmt.Errorf("console: bus reset failed")
	}
	return nil
}
