package bitcode

import (
	"encoding/binary"
	stderrors "errors"
	"strings"
	"unicode/utf8"

	"github.com/wippyai/bpf-linker/bitcode/internal/bits"
	"github.com/wippyai/bpf-linker/errors"
)

// Magic is the first little-endian word of every bitcode stream.
const Magic uint32 = 0xDEC04342

// Builtin abbreviation ids defined by the bitstream container.
const (
	abbrevEndBlock       = 0
	abbrevEnterSubblock  = 1
	abbrevDefineAbbrev   = 2
	abbrevUnabbrevRecord = 3
)

// IdentificationBlockID is the block carrying the producer string.
const IdentificationBlockID = 13

// identificationCodeString is the record code of the producer string.
const identificationCodeString = 1

// VBR chunk widths mandated by the container format.
const (
	subblockIDWidth     = 8 // block ids inside ENTER_SUBBLOCK
	subblockCodeWidth   = 4 // a subblock's local abbreviation bit width
	recordCodeWidth     = 6 // unabbreviated record codes
	recordNumOpsWidth   = 6 // operand counts in unabbreviated records
	recordOperandWidth  = 6 // each operand in unabbreviated records
	abbrevNumOpsWidth   = 5 // operand counts in DEFINE_ABBREV
	abbrevLiteralWidth  = 8 // literal values inside DEFINE_ABBREV
	abbrevEncodingWidth = 5 // width data for Fixed/VBR abbrev encodings
)

// Abbreviation operand encodings. Only their widths are consumed; the
// definitions themselves are discarded.
const (
	encodingFixed = 1
	encodingVBR   = 2
	encodingArray = 3
	encodingChar6 = 4
	encodingBlob  = 5
)

// ErrStopWalk halts a Walk early without reporting an error.
var ErrStopWalk = stderrors.New("bitcode: stop walk")

// Record is one unabbreviated record.
type Record struct {
	Code     uint64
	Operands []uint64
}

// Visitor receives structural events during a bitstream walk. Any event
// may return ErrStopWalk to end the walk, or another error to abort it.
type Visitor interface {
	// EnterBlock is called when a sub-block starts. lenWords is the
	// declared payload length of the block in 32-bit words.
	EnterBlock(blockID uint64, abbrevWidth uint, lenWords uint32) error
	// EndBlock is called when an entered sub-block ends.
	EndBlock() error
	// Record is called for every unabbreviated record.
	Record(rec Record) error
}

// blockContext is one frame of the scanner's block stack. The root frame
// has no block id and the implicit outer abbreviation width of 2 bits.
type blockContext struct {
	blockID    uint64
	hasBlockID bool
	codeWidth  uint
}

// IdentificationString extracts the producer identification string from a
// raw bitcode buffer. The toolkit is never initialized.
func IdentificationString(buf []byte) (string, error) {
	words, err := splitWords(buf)
	if err != nil {
		return "", err
	}

	var ident identVisitor
	if err := walk(words, &ident); err != nil {
		return "", err
	}
	if !ident.found {
		return "", errors.MissingIdentification()
	}
	return ident.value, nil
}

// Walk parses the buffer's block/record structure, reporting each event
// to v. It understands the same subset of the format as the scanner.
func Walk(buf []byte, v Visitor) error {
	words, err := splitWords(buf)
	if err != nil {
		return err
	}
	return walk(words, v)
}

// splitWords validates the buffer header and converts it to words.
func splitWords(buf []byte) ([]uint32, error) {
	if len(buf) < 8 {
		return nil, errors.InvalidSize(len(buf))
	}
	if len(buf)%4 != 0 {
		return nil, errors.Misaligned()
	}

	words := make([]uint32, len(buf)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(buf[i*4:])
	}
	if words[0] != Magic {
		return nil, errors.MissingMagic()
	}
	return words, nil
}

// walk runs the structural scan loop. The cursor starts past the magic
// word; the loop ends at end-of-stream or when the root frame is popped.
func walk(words []uint32, v Visitor) error {
	cur := bits.NewCursor(words)
	if err := cur.SeekBit(32); err != nil {
		return err
	}

	stack := []blockContext{{codeWidth: 2}}

	for len(stack) > 0 && !cur.EOF() {
		top := stack[len(stack)-1]

		id, err := cur.ReadBits(top.codeWidth)
		if err != nil {
			return err
		}

		switch id {
		case abbrevEndBlock:
			if err := cur.Align32(); err != nil {
				return err
			}
			stack = stack[:len(stack)-1]
			if top.hasBlockID {
				if err := v.EndBlock(); err != nil {
					return stopOrErr(err)
				}
			}

		case abbrevEnterSubblock:
			blockID, err := cur.ReadVBR(subblockIDWidth)
			if err != nil {
				return err
			}
			codeWidth, err := cur.ReadVBR(subblockCodeWidth)
			if err != nil {
				return err
			}
			if err := cur.Align32(); err != nil {
				return err
			}
			lenWords, err := cur.ReadBits(32)
			if err != nil {
				return err
			}
			stack = append(stack, blockContext{
				blockID:    blockID,
				hasBlockID: true,
				codeWidth:  uint(codeWidth),
			})
			if err := v.EnterBlock(blockID, uint(codeWidth), uint32(lenWords)); err != nil {
				return stopOrErr(err)
			}

		case abbrevDefineAbbrev:
			if err := skipDefineAbbrev(cur); err != nil {
				return err
			}

		case abbrevUnabbrevRecord:
			rec, err := readUnabbrevRecord(cur)
			if err != nil {
				return err
			}
			if err := v.Record(rec); err != nil {
				return stopOrErr(err)
			}

		default:
			return errors.UnsupportedAbbrevID(id)
		}
	}

	return nil
}

func stopOrErr(err error) error {
	if stderrors.Is(err, ErrStopWalk) {
		return nil
	}
	return err
}

// readUnabbrevRecord decodes a record code, its operand count, and that
// many operands, all VBR-6.
func readUnabbrevRecord(cur *bits.Cursor) (Record, error) {
	code, err := cur.ReadVBR(recordCodeWidth)
	if err != nil {
		return Record{}, err
	}
	numOps, err := cur.ReadVBR(recordNumOpsWidth)
	if err != nil {
		return Record{}, err
	}
	operands := make([]uint64, 0, numOps)
	for range numOps {
		op, err := cur.ReadVBR(recordOperandWidth)
		if err != nil {
			return Record{}, err
		}
		operands = append(operands, op)
	}
	return Record{Code: code, Operands: operands}, nil
}

// skipDefineAbbrev consumes a DEFINE_ABBREV without retaining it. The
// scanner never reads abbreviated record contents, so the definitions
// only need to be skipped correctly.
func skipDefineAbbrev(cur *bits.Cursor) error {
	numOps, err := cur.ReadVBR(abbrevNumOpsWidth)
	if err != nil {
		return err
	}
	for range numOps {
		isLiteral, err := cur.ReadBits(1)
		if err != nil {
			return err
		}
		if isLiteral != 0 {
			if _, err := cur.ReadVBR(abbrevLiteralWidth); err != nil {
				return err
			}
			continue
		}
		encoding, err := cur.ReadBits(3)
		if err != nil {
			return err
		}
		switch encoding {
		case encodingFixed, encodingVBR:
			if _, err := cur.ReadVBR(abbrevEncodingWidth); err != nil {
				return err
			}
		case encodingArray, encodingChar6, encodingBlob:
		default:
			return errors.UnsupportedEncoding(encoding)
		}
	}
	return nil
}

// identVisitor finds the first identification-string record. It tracks
// the enclosing block on its own stack; the root level has no id.
type identVisitor struct {
	blocks []uint64
	value  string
	found  bool
}

func (s *identVisitor) EnterBlock(blockID uint64, _ uint, _ uint32) error {
	s.blocks = append(s.blocks, blockID)
	return nil
}

func (s *identVisitor) EndBlock() error {
	s.blocks = s.blocks[:len(s.blocks)-1]
	return nil
}

func (s *identVisitor) Record(rec Record) error {
	if len(s.blocks) == 0 || s.blocks[len(s.blocks)-1] != IdentificationBlockID {
		return nil
	}
	if rec.Code != identificationCodeString {
		return nil
	}
	bytes := make([]byte, len(rec.Operands))
	for i, op := range rec.Operands {
		bytes[i] = byte(op)
	}
	s.value = decodeLossyUTF8(bytes)
	s.found = true
	return ErrStopWalk
}

// decodeLossyUTF8 replaces invalid sequences with U+FFFD.
func decodeLossyUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var sb strings.Builder
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		sb.WriteRune(r)
		b = b[size:]
	}
	return sb.String()
}
