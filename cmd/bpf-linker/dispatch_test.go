package main

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

// bitWriter emits an LSB-first bitstream in 32-bit little-endian words,
// enough to assemble identification-block fixtures.
type bitWriter struct {
	words []uint32
	cur   uint32
	nbits uint
}

func (w *bitWriter) writeBits(v uint64, n uint) {
	for i := uint(0); i < n; i++ {
		w.cur |= uint32((v>>i)&1) << w.nbits
		w.nbits++
		if w.nbits == 32 {
			w.words = append(w.words, w.cur)
			w.cur, w.nbits = 0, 0
		}
	}
}

func (w *bitWriter) writeVBR(v uint64, width uint) {
	payload := width - 1
	for {
		chunk := v & (1<<payload - 1)
		v >>= payload
		if v != 0 {
			chunk |= 1 << payload
		}
		w.writeBits(chunk, width)
		if v == 0 {
			return
		}
	}
}

func (w *bitWriter) align32() {
	if w.nbits > 0 {
		w.words = append(w.words, w.cur)
		w.cur, w.nbits = 0, 0
	}
}

func (w *bitWriter) bytes() []byte {
	w.align32()
	out := make([]byte, 0, len(w.words)*4)
	for _, word := range w.words {
		out = binary.LittleEndian.AppendUint32(out, word)
	}
	return out
}

// identBitcode builds a minimal bitcode buffer whose identification
// block carries the given producer string.
func identBitcode(ident string) []byte {
	w := &bitWriter{}
	w.writeBits(0xDEC04342, 32)

	w.writeBits(1, 2) // ENTER_SUBBLOCK
	w.writeVBR(13, 8) // identification block
	w.writeVBR(2, 4)  // abbrev width
	w.align32()
	w.writeBits(0, 32) // declared length, unused by the scanner

	w.writeBits(3, 2) // UNABBREV_RECORD
	w.writeVBR(1, 6)  // identification string code
	w.writeVBR(uint64(len(ident)), 6)
	for i := 0; i < len(ident); i++ {
		w.writeVBR(uint64(ident[i]), 6)
	}

	w.writeBits(0, 2) // END_BLOCK
	w.align32()
	return w.bytes()
}

func writeInput(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestDetectMajor(t *testing.T) {
	bc := writeInput(t, "prog.bc", identBitcode("rustc version 1.84.0 LLVM (19.1.5)"))

	major, ok, err := detectMajor([]string{bc}, zap.NewNop())
	if err != nil {
		t.Fatalf("detectMajor: %v", err)
	}
	if !ok || major != 19 {
		t.Errorf("got %d (ok=%v), want 19", major, ok)
	}
}

func TestDetectMajorSkipsNonBitcode(t *testing.T) {
	obj := writeInput(t, "host.o", make([]byte, 32))
	bc := writeInput(t, "prog.bc", identBitcode("LLVM 20.1.0"))

	major, ok, err := detectMajor([]string{obj, bc}, zap.NewNop())
	if err != nil {
		t.Fatalf("detectMajor: %v", err)
	}
	if !ok || major != 20 {
		t.Errorf("got %d (ok=%v), want 20", major, ok)
	}
}

func TestDetectMajorNoBitcode(t *testing.T) {
	obj := writeInput(t, "host.o", make([]byte, 32))

	_, ok, err := detectMajor([]string{obj}, zap.NewNop())
	if err != nil {
		t.Fatalf("detectMajor: %v", err)
	}
	if ok {
		t.Error("detected a version in a non-bitcode input")
	}
}

func TestDetectMajorBadVersionFatal(t *testing.T) {
	bc := writeInput(t, "prog.bc", identBitcode("some producer"))

	_, _, err := detectMajor([]string{bc}, zap.NewNop())
	if err == nil {
		t.Error("unparseable producer string should be fatal")
	}
}

func TestDetectMajorMissingInputFatal(t *testing.T) {
	_, _, err := detectMajor([]string{filepath.Join(t.TempDir(), "absent.bc")}, zap.NewNop())
	if err == nil {
		t.Error("unreadable input should be fatal")
	}
}

func TestBinaryForMajor(t *testing.T) {
	tests := []struct {
		major uint64
		want  string
		ok    bool
	}{
		{19, "bpf-linker-19", true},
		{20, "bpf-linker-20", true},
		{21, "bpf-linker-21", true},
		{18, "", false},
		{22, "", false},
	}

	for _, tt := range tests {
		got, ok := binaryForMajor(tt.major)
		if ok != tt.ok || got != tt.want {
			t.Errorf("binaryForMajor(%d) = %q, %v; want %q, %v", tt.major, got, ok, tt.want, tt.ok)
		}
	}
}
