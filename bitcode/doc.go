// Package bitcode provides a minimal parser for the LLVM bitstream
// container format.
//
// The parser covers exactly the subset of the format needed to locate the
// identification block emitted at the front of every bitcode file and
// extract the producer identification string from it, without loading the
// compiler toolkit. It understands block structure (ENTER_SUBBLOCK,
// END_BLOCK), skips DEFINE_ABBREV definitions, and decodes unabbreviated
// records. Abbreviated record contents are not supported: the producer
// this linker is paired with always emits the identification block with
// unabbreviated records, so any abbreviated record encountered before it
// is reported as an unsupported-format error rather than skipped.
//
// Extract the producer string or the toolkit version from a raw buffer:
//
//	data, _ := os.ReadFile("prog.bc")
//	ident, err := bitcode.IdentificationString(data)
//	version, err := bitcode.ScanVersion(data)
//
// Walk exposes the same structural subset to callers that want to inspect
// the block/record tree:
//
//	err := bitcode.Walk(data, visitor)
//
// All failures are *errors.Error values with Phase "scan"; they are
// terminal for the buffer being scanned but recoverable by the caller.
package bitcode
