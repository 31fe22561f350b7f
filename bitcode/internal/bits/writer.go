package bits

import "encoding/binary"

// Writer is the mirror image of Cursor: it appends arbitrary-width bit
// fields, LSB-first, into a growing sequence of 32-bit words. Used to
// construct bitstream fixtures.
type Writer struct {
	words  []uint32
	bitPos uint
}

// NewWriter creates an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// BitPos returns the number of bits written so far.
func (w *Writer) BitPos() uint {
	return w.bitPos
}

// WriteBits appends the low n bits (n <= 64) of v.
func (w *Writer) WriteBits(v uint64, n uint) {
	for n > 0 {
		wordIndex := w.bitPos >> 5
		for uint(len(w.words)) <= wordIndex {
			w.words = append(w.words, 0)
		}
		bitIndex := w.bitPos & 31
		available := 32 - bitIndex
		take := min(available, n)
		mask := uint64(1)<<take - 1
		w.words[wordIndex] |= uint32((v & mask) << bitIndex)
		v >>= take
		w.bitPos += take
		n -= take
	}
}

// WriteVBR appends v as a variable-bit-rate integer with the given chunk
// width. Each chunk carries width-1 payload bits plus a continuation flag.
func (w *Writer) WriteVBR(v uint64, width uint) {
	payloadBits := width - 1
	mask := uint64(1)<<payloadBits - 1
	for {
		chunk := v & mask
		v >>= payloadBits
		if v != 0 {
			chunk |= uint64(1) << payloadBits
		}
		w.WriteBits(chunk, width)
		if v == 0 {
			return
		}
	}
}

// Align32 pads with zero bits to the next 32-bit boundary.
func (w *Writer) Align32() {
	if remainder := w.bitPos & 31; remainder != 0 {
		w.WriteBits(0, 32-remainder)
	}
}

// Words returns the accumulated words, padding the tail to a full word.
func (w *Writer) Words() []uint32 {
	w.Align32()
	return w.words
}

// Bytes returns the stream as little-endian bytes.
func (w *Writer) Bytes() []byte {
	words := w.Words()
	buf := make([]byte, 0, len(words)*4)
	for _, word := range words {
		buf = binary.LittleEndian.AppendUint32(buf, word)
	}
	return buf
}
