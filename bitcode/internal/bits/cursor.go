package bits

import (
	"github.com/wippyai/bpf-linker/errors"
)

// Cursor is a bit-addressable reader over 32-bit little-endian words.
// It tracks the current bit offset and supports arbitrary-width fields
// stitched across word boundaries.
type Cursor struct {
	words  []uint32
	bitLen uint
	bitPos uint
}

// NewCursor creates a Cursor over the given words.
func NewCursor(words []uint32) *Cursor {
	return &Cursor{
		words:  words,
		bitLen: uint(len(words)) * 32,
	}
}

// BitPos returns the current bit position.
func (c *Cursor) BitPos() uint {
	return c.bitPos
}

// BitLen returns the total length of the stream in bits.
func (c *Cursor) BitLen() uint {
	return c.bitLen
}

// EOF reports whether the cursor is at or past the end of the stream.
func (c *Cursor) EOF() bool {
	return c.bitPos >= c.bitLen
}

// SeekBit positions the cursor at the given absolute bit offset.
func (c *Cursor) SeekBit(bit uint) error {
	if bit > c.bitLen {
		return errors.OutOfBounds(bit, c.bitLen)
	}
	c.bitPos = bit
	return nil
}

// ReadBits reads n bits (n <= 64) from the current position, LSB-first,
// and advances the cursor by exactly n bits.
func (c *Cursor) ReadBits(n uint) (uint64, error) {
	if n == 0 {
		return 0, nil
	}
	if c.bitPos+n > c.bitLen {
		return 0, errors.UnexpectedEnd()
	}

	var result uint64
	var read uint

	for read < n {
		wordIndex := c.bitPos >> 5
		bitIndex := c.bitPos & 31
		available := 32 - bitIndex
		take := min(available, n-read)
		mask := uint64(1)<<take - 1
		chunk := (uint64(c.words[wordIndex]) >> bitIndex) & mask
		result |= chunk << read
		c.bitPos += take
		read += take
	}

	return result, nil
}

// ReadVBR reads an LLVM variable-bit-rate integer. Each width-bit chunk
// uses the MSB as a continuation flag, with the remaining bits appended
// LSB-first until a chunk clears the flag.
func (c *Cursor) ReadVBR(width uint) (uint64, error) {
	var result uint64
	var shift uint
	for {
		piece, err := c.ReadBits(width)
		if err != nil {
			return 0, err
		}
		continueBit := uint64(1) << (width - 1)
		result |= (piece & (continueBit - 1)) << shift
		if piece&continueBit == 0 {
			return result, nil
		}
		shift += width - 1
	}
}

// Align32 skips padding so the cursor advances to the next 32-bit boundary.
// Block boundaries in the bitstream require word-aligned offsets.
func (c *Cursor) Align32() error {
	remainder := c.bitPos & 31
	if remainder != 0 {
		if _, err := c.ReadBits(32 - remainder); err != nil {
			return err
		}
	}
	return nil
}
