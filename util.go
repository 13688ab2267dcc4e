package bincodec

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Order is the wire byte order of every multi-byte scalar.
// Its type only admits big-endian, so it cannot be swapped at runtime.
var Order = binary.BigEndian

// MaxSpan is the largest byte span, string or array count a uint16 prefix
// can describe.
const MaxSpan = 0xffff

// MaxPadding bounds the number of trailing bytes Unmarshal inspects.
// Anything larger is considered a framing error rather than padding.
const MaxPadding = 1024 // 1KB

func Ptr[T any](v T) *T { return &v } // Ptr is a helper function to create a pointer to a value, making test setup cleaner.

// CheckBufferNotZeros verifies that data holds nothing but zero padding.
func CheckBufferNotZeros(data []byte) error {
	if len(data) > MaxPadding {
		return fmt.Errorf("%w: %d bytes exceed maximum expected padding of %d bytes", ErrTrailingData, len(data), MaxPadding)
	}
	for i, b := range data {
		if b != 0 {
			return fmt.Errorf("%w: found non-zero byte 0x%02x at offset %d", ErrTrailingData, b, i)
		}
	}
	return nil
}

// need checks that buf holds n readable bytes at off.
func need(buf []byte, off, n int) error {
	if off < 0 || n < 0 || off > len(buf)-n {
		return truncated(off, n, len(buf))
	}
	return nil
}

// room checks that buf can take n written bytes at off.
func room(buf []byte, off, n int) error {
	if off < 0 || n < 0 || off > len(buf)-n {
		return fmt.Errorf("%w: need %d bytes at offset %d, buffer holds %d", io.ErrShortBuffer, n, off, len(buf))
	}
	return nil
}

// readLength reads a uint16 length or count prefix at off.
func readLength(buf []byte, off int) (int, error) {
	if err := need(buf, off, 2); err != nil {
		return 0, err
	}
	return int(Order.Uint16(buf[off:])), nil
}
