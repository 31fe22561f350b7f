package linker

import (
	"bytes"
	"debug/elf"

	"github.com/wippyai/bpf-linker/errors"
)

// InputType classifies a linker input by its leading bytes.
type InputType uint8

const (
	// InputBitcode is raw bitcode, wrapped or not.
	InputBitcode InputType = iota
	// InputELF is an ELF object, possibly with embedded bitcode.
	InputELF
	// InputMachO is a Mach-O object. Accepted during detection and
	// rejected during extraction; archives built on macOS routinely
	// carry Mach-O metadata members.
	InputMachO
	// InputArchive is an ar archive.
	InputArchive
)

func (t InputType) String() string {
	switch t {
	case InputBitcode:
		return "bitcode"
	case InputELF:
		return "elf"
	case InputMachO:
		return "Mach-O"
	default:
		return "archive"
	}
}

var (
	magicBitcode        = []byte{0x42, 0x43, 0xC0, 0xDE}
	magicBitcodeWrapper = []byte{0xDE, 0xC0, 0x17, 0x0B}
	magicELF            = []byte{0x7F, 'E', 'L', 'F'}
	magicMachO          = []byte{0xCF, 0xFA, 0xED, 0xFE}
	magicArchive        = []byte("!<arch>\x0A")
)

// DetectInputType classifies data by its magic bytes. ok is false when
// the data is too short or matches no supported format.
func DetectInputType(data []byte) (InputType, bool) {
	if len(data) < 8 {
		return 0, false
	}
	switch {
	case bytes.HasPrefix(data, magicBitcode), bytes.HasPrefix(data, magicBitcodeWrapper):
		return InputBitcode, true
	case bytes.HasPrefix(data, magicELF):
		return InputELF, true
	case bytes.HasPrefix(data, magicMachO):
		return InputMachO, true
	case bytes.HasPrefix(data, magicArchive):
		return InputArchive, true
	default:
		return 0, false
	}
}

// bitcodeSection is the ELF section the compiler embeds bitcode in.
const bitcodeSection = ".llvmbc"

// extractBitcode returns the bitcode carried by one non-archive input:
// raw bitcode as-is, ELF via its embedded section. Mach-O and
// unclassifiable data fail with an invalid-input error so archive
// iteration can skip them.
func extractBitcode(path string, data []byte) ([]byte, error) {
	typ, ok := DetectInputType(data)
	if !ok {
		return nil, errors.InvalidInput(path)
	}

	switch typ {
	case InputBitcode:
		return data, nil
	case InputELF:
		return embeddedBitcode(path, data)
	default:
		return nil, errors.InvalidInput(path)
	}
}

// embeddedBitcode pulls the bitcode section out of an ELF object.
func embeddedBitcode(path string, data []byte) ([]byte, error) {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, errors.New(errors.PhaseLink, errors.KindEmbeddedBitcode).
			Input(path).
			Cause(err).
			Detail("malformed ELF").
			Build()
	}
	defer f.Close()

	sec := f.Section(bitcodeSection)
	if sec == nil {
		return nil, errors.MissingBitcode(path)
	}
	raw, err := sec.Data()
	if err != nil {
		return nil, errors.New(errors.PhaseLink, errors.KindEmbeddedBitcode).
			Input(path).
			Cause(err).
			Detail("reading %s section", bitcodeSection).
			Build()
	}
	if len(raw) == 0 {
		return nil, errors.MissingBitcode(path)
	}
	return raw, nil
}
