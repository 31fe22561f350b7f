package linker

import (
	"bytes"
	"encoding/binary"
	stderrors "errors"
	"testing"

	"github.com/wippyai/bpf-linker/errors"
)

// rawBitcode returns a detection-sized buffer with the raw bitcode magic.
func rawBitcode() []byte {
	return append(append([]byte{}, magicBitcode...), 0, 0, 0, 0)
}

type elfSection struct {
	name string
	data []byte
}

// buildELF assembles a minimal little-endian ELF64 relocatable with the
// given sections, a null section, and a .shstrtab.
func buildELF(secs ...elfSection) []byte {
	shstrtab := []byte{0}
	nameOff := make([]uint32, len(secs))
	for i, s := range secs {
		nameOff[i] = uint32(len(shstrtab))
		shstrtab = append(shstrtab, s.name...)
		shstrtab = append(shstrtab, 0)
	}
	shstrOff := uint32(len(shstrtab))
	shstrtab = append(shstrtab, ".shstrtab"...)
	shstrtab = append(shstrtab, 0)

	const ehSize = 64
	const shSize = 64
	shnum := len(secs) + 2

	var buf bytes.Buffer
	le := binary.LittleEndian
	u16 := func(v uint16) { _ = binary.Write(&buf, le, v) }
	u32 := func(v uint32) { _ = binary.Write(&buf, le, v) }
	u64 := func(v uint64) { _ = binary.Write(&buf, le, v) }

	// ELF header
	buf.Write([]byte{0x7F, 'E', 'L', 'F', 2, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	u16(1)   // ET_REL
	u16(247) // EM_BPF
	u32(1)
	u64(0)      // entry
	u64(0)      // phoff
	u64(ehSize) // shoff
	u32(0)      // flags
	u16(ehSize)
	u16(0) // phentsize
	u16(0) // phnum
	u16(shSize)
	u16(uint16(shnum))
	u16(uint16(shnum - 1)) // shstrndx

	// Section headers: null, payload sections, .shstrtab.
	dataOff := uint64(ehSize + shnum*shSize)
	buf.Write(make([]byte, shSize))
	for i, s := range secs {
		u32(nameOff[i])
		u32(1) // SHT_PROGBITS
		u64(0) // flags
		u64(0) // addr
		u64(dataOff)
		u64(uint64(len(s.data)))
		u32(0) // link
		u32(0) // info
		u64(1) // addralign
		u64(0) // entsize
		dataOff += uint64(len(s.data))
	}
	u32(shstrOff)
	u32(3) // SHT_STRTAB
	u64(0)
	u64(0)
	u64(dataOff)
	u64(uint64(len(shstrtab)))
	u32(0)
	u32(0)
	u64(1)
	u64(0)

	for _, s := range secs {
		buf.Write(s.data)
	}
	buf.Write(shstrtab)
	return buf.Bytes()
}

func TestDetectInputType(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want InputType
		ok   bool
	}{
		{"raw bitcode", rawBitcode(), InputBitcode, true},
		{"wrapped bitcode", append(append([]byte{}, magicBitcodeWrapper...), 0, 0, 0, 0), InputBitcode, true},
		{"elf", buildELF(), InputELF, true},
		{"mach-o", append(append([]byte{}, magicMachO...), 0, 0, 0, 0), InputMachO, true},
		{"archive", []byte("!<arch>\x0Arest"), InputArchive, true},
		{"short", magicBitcode, 0, false},
		{"unknown", make([]byte, 16), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectInputType(tt.data)
			if ok != tt.ok {
				t.Fatalf("ok: got %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractBitcodeRaw(t *testing.T) {
	data := rawBitcode()
	got, err := extractBitcode("prog.bc", data)
	if err != nil {
		t.Fatalf("extractBitcode: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("raw bitcode was not returned unchanged")
	}
}

func TestExtractBitcodeEmbedded(t *testing.T) {
	payload := rawBitcode()
	data := buildELF(elfSection{name: bitcodeSection, data: payload})

	got, err := extractBitcode("prog.o", data)
	if err != nil {
		t.Fatalf("extractBitcode: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("embedded bitcode mismatch: got %d bytes, want %d", len(got), len(payload))
	}
}

func TestExtractBitcodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		kind errors.Kind
	}{
		{"no bitcode section", buildELF(elfSection{name: ".text", data: []byte{0}}), errors.KindMissingBitcode},
		{"empty bitcode section", buildELF(elfSection{name: bitcodeSection, data: nil}), errors.KindMissingBitcode},
		{"mach-o", append(append([]byte{}, magicMachO...), 0, 0, 0, 0), errors.KindInvalidInput},
		{"garbage", make([]byte, 16), errors.KindInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extractBitcode(tt.name, tt.data)
			var le *errors.Error
			if !stderrors.As(err, &le) {
				t.Fatalf("got %v, want *errors.Error", err)
			}
			if le.Kind != tt.kind {
				t.Errorf("kind: got %s, want %s", le.Kind, tt.kind)
			}
			if !skippable(err) {
				t.Error("extraction failure should be skippable")
			}
		})
	}
}

func TestExtractBitcodeMalformedELFIsFatal(t *testing.T) {
	// A file that claims to be ELF but cannot be parsed is a broken
	// input, not a skippable non-carrier.
	data := append(append([]byte{}, magicELF...), 0, 0, 0, 0)
	_, err := extractBitcode("broken.o", data)

	var le *errors.Error
	if !stderrors.As(err, &le) {
		t.Fatalf("got %v, want *errors.Error", err)
	}
	if le.Kind != errors.KindEmbeddedBitcode {
		t.Errorf("kind: got %s, want %s", le.Kind, errors.KindEmbeddedBitcode)
	}
	if skippable(err) {
		t.Error("malformed ELF must not be skippable")
	}
}
