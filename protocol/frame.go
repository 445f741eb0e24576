package protocol

import "errors"

// Wire framing for the console link:
//
//	[len][seq][payload ...][crc16 hi][crc16 lo][0x7E]
//
// len counts the whole frame. The CRC covers len, seq and the payload.
// A trailing sync byte bounds resynchronization after line noise.
const (
	frameHeaderSize  = 2
	frameTrailerSize = 3
	FrameOverhead    = frameHeaderSize + frameTrailerSize

	FrameLengthMax = 255
	PayloadMax     = FrameLengthMax - FrameOverhead

	syncByte = 0x7E
)

// ErrPayloadTooLarge signals a payload that cannot fit one frame.
var ErrPayloadTooLarge = errors.New("protocol: payload too large for frame")

// EncodeFrame wraps payload into one wire frame.
func EncodeFrame(seq byte, payload []byte) ([]byte, error) {
	if len(payload) > PayloadMax {
		return nil, ErrPayloadTooLarge
	}
	n := len(payload) + FrameOverhead
	frame := make([]byte, 0, n)
	frame = append(frame, byte(n), seq)
	frame = append(frame, payload...)
	crc := CRC16(frame)
	frame = append(frame, byte(crc>>8), byte(crc), syncByte)
	return frame, nil
}

// Frame is one decoded message.
type Frame struct {
	Seq     byte
	Payload []byte
}

// Decoder reassembles frames from a byte stream. Garbage between frames
// is skipped by hunting for the trailing sync byte, mirroring how the
// firmware side resynchronizes after noise.
type Decoder struct {
	buf    []byte
	synced bool
}

// NewDecoder returns a decoder that assumes the stream starts clean.
func NewDecoder() *Decoder {
	return &Decoder{synced: true}
}

// Write feeds raw bytes into the decoder and returns every complete
// frame they finished.
func (d *Decoder) Write(p []byte) []Frame {
	d.buf = append(d.buf, p...)
	var frames []Frame
	for {
		f, ok := d.next()
		if !ok {
			return frames
		}
		frames = append(frames, f)
	}
}

func (d *Decoder) next() (Frame, bool) {
	for {
		if !d.synced {
			// Hunt for a sync byte and resume after it.
			for i, b := range d.buf {
				if b == syncByte {
					d.buf = d.buf[i+1:]
					d.synced = true
					break
				}
			}
			if !d.synced {
				d.buf = nil
				return Frame{}, false
			}
		}

		// Skip idle sync bytes between frames.
		for len(d.buf) > 0 && d.buf[0] == syncByte {
			d.buf = d.buf[1:]
		}
		if len(d.buf) < FrameOverhead {
			return Frame{}, false
		}

		n := int(d.buf[0])
		if n < FrameOverhead || n > FrameLengthMax {
			d.synced = false
			continue
		}
		if len(d.buf) < n {
			return Frame{}, false
		}
		if d.buf[n-1] != syncByte {
			d.synced = false
			continue
		}
		wantCRC := uint16(d.buf[n-3])<<8 | uint16(d.buf[n-2])
		if CRC16(d.buf[:n-frameTrailerSize]) != wantCRC {
			d.synced = false
			continue
		}

		payload := make([]byte, n-FrameOverhead)
		copy(payload, d.buf[frameHeaderSize:n-frameTrailerSize])
		f := Frame{Seq: d.buf[1], Payload: payload}
		d.buf = d.buf[n:]
		return f, true
	}
}
