package protocol

import "errors"

var (
	// ErrTruncated signals that a payload ended inside a field.
	ErrTruncated = errors.New("protocol: truncated payload")
)

// Variable-length unsigned integers, 7 bits per byte, most significant
// group first, high bit as continuation marker.

// AppendUint appends the VLQ encoding of v to dst.
func AppendUint(dst []byte, v uint32) []byte {
	switch {
	case v >= 1<<28:
		dst = append(dst, byte(v>>28)|0x80)
		fallthrough
	case v >= 1<<21:
		dst = append(dst, byte(v>>21)&0x7F|0x80)
		fallthrough
	case v >= 1<<14:
		dst = append(dst, byte(v>>14)&0x7F|0x80)
		fallthrough
	case v >= 1<<7:
		dst = append(dst, byte(v>>7)&0x7F|0x80)
		fallthrough
	default:
		dst = append(dst, byte(v)&0x7F)
	}
	return dst
}

// DecodeUint consumes one VLQ integer from *data, advancing the slice.
func DecodeUint(data *[]byte) (uint32, error) {
	var v uint32
	for i := 0; ; i++ {
		if len(*data) == 0 {
			return 0, ErrTruncated
		}
		c := (*data)[0]
		*data = (*data)[1:]
		v = v<<7 | uint32(c&0x7F)
		if c&0x80 == 0 {
			return v, nil
		}
		if i == 4 {
			return 0, errors.New("protocol: varint too long")
		}
	}
}

// AppendBytes appends a length-prefixed byte string to dst.
func AppendBytes(dst, b []byte) []byte {
	dst = AppendUint(dst, uint32(len(b)))
	return append(dst, b...)
}

// DecodeBytes consumes one length-prefixed byte string from *data. The
// returned slice aliases the input.
func DecodeBytes(data *[]byte) ([]byte, error) {
	n, err := DecodeUint(data)
	if err != nil {
		return nil, err
	}
	if uint32(len(*data)) < n {
		return nil, ErrTruncated
	}
	b := (*data)[:n]
	*data = (*data)[n:]
	return b, nil
}
