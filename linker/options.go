package linker

import (
	"fmt"
	"math"
)

// CPU selects the processor variant to generate code for.
type CPU uint8

const (
	CPUGeneric CPU = iota
	CPUProbe
	CPUv1
	CPUv2
	CPUv3
)

func (c CPU) String() string {
	switch c {
	case CPUProbe:
		return "probe"
	case CPUv1:
		return "v1"
	case CPUv2:
		return "v2"
	case CPUv3:
		return "v3"
	default:
		return "generic"
	}
}

// ParseCPU parses a CPU name as accepted on the command line.
func ParseCPU(s string) (CPU, error) {
	switch s {
	case "generic":
		return CPUGeneric, nil
	case "probe":
		return CPUProbe, nil
	case "v1":
		return CPUv1, nil
	case "v2":
		return CPUv2, nil
	case "v3":
		return CPUv3, nil
	default:
		return CPUGeneric, fmt.Errorf("invalid CPU %q", s)
	}
}

// OptLevel selects the optimization level.
type OptLevel uint8

const (
	// OptNone applies no optimizations, like -O0.
	OptNone OptLevel = iota
	// OptLess applies fewer optimizations than the default, like -O1.
	OptLess
	// OptDefault is the default level, like -O2.
	OptDefault
	// OptAggressive applies aggressive optimizations, like -O3.
	OptAggressive
	// OptSize optimizes for size, like -Os.
	OptSize
	// OptSizeMin aggressively optimizes for size, like -Oz.
	OptSizeMin
)

func (o OptLevel) String() string {
	switch o {
	case OptNone:
		return "0"
	case OptLess:
		return "1"
	case OptDefault:
		return "2"
	case OptAggressive:
		return "3"
	case OptSize:
		return "s"
	case OptSizeMin:
		return "z"
	default:
		return "2"
	}
}

// ParseOptLevel parses an optimization level as accepted on the command
// line: 0 to 3, s, or z.
func ParseOptLevel(s string) (OptLevel, error) {
	switch s {
	case "0":
		return OptNone, nil
	case "1":
		return OptLess, nil
	case "2":
		return OptDefault, nil
	case "3":
		return OptAggressive, nil
	case "s":
		return OptSize, nil
	case "z":
		return OptSizeMin, nil
	default:
		return OptDefault, fmt.Errorf("invalid optimization level %q", s)
	}
}

// OutputType selects the format of the linked output.
type OutputType uint8

const (
	// OutputBitcode writes bitcode.
	OutputBitcode OutputType = iota
	// OutputAssembly writes target assembly.
	OutputAssembly
	// OutputIR writes textual IR.
	OutputIR
	// OutputObject writes an ELF object file.
	OutputObject
)

func (o OutputType) String() string {
	switch o {
	case OutputBitcode:
		return "llvm-bc"
	case OutputAssembly:
		return "asm"
	case OutputIR:
		return "llvm-ir"
	default:
		return "obj"
	}
}

// ParseOutputType parses an output format name as accepted on the
// command line.
func ParseOutputType(s string) (OutputType, error) {
	switch s {
	case "llvm-bc":
		return OutputBitcode, nil
	case "asm":
		return OutputAssembly, nil
	case "llvm-ir":
		return OutputIR, nil
	case "obj":
		return OutputObject, nil
	default:
		return OutputObject, fmt.Errorf("invalid output type %q", s)
	}
}

// Options configures a link run.
type Options struct {
	// Target is the output target triple. Empty means infer from the
	// input modules, falling back to the default target.
	Target string
	// CPU is the processor variant to generate code for.
	CPU CPU
	// CPUFeatures holds extra CPU feature flags.
	CPUFeatures string
	// Inputs are the files to link: bitcode, objects with embedded
	// bitcode, or archives of either.
	Inputs []string
	// Output is the path the linked result is written to.
	Output string
	// OutputType is the format of the output.
	OutputType OutputType
	// Libs is accepted for linker-interface compatibility and ignored.
	Libs []string
	// OptLevel is the optimization level.
	OptLevel OptLevel
	// ExportSymbols are kept alive through optimization.
	ExportSymbols map[string]struct{}
	// UnrollLoops aggressively unrolls loops, for kernels without
	// loop support.
	UnrollLoops bool
	// IgnoreInlineNever strips noinline attributes, for kernels
	// without function call support.
	IgnoreInlineNever bool
	// DumpModule, when set, is a directory the linked IR is written to
	// before and after optimization.
	DumpModule string
	// LLVMArgs are extra command line arguments for the toolkit.
	LLVMArgs []string
	// DisableExpandMemcpyInOrder disables in-order expansion of memory
	// intrinsics.
	DisableExpandMemcpyInOrder bool
	// DisableMemoryBuiltins disables exporting memcpy, memmove, memset,
	// memcmp and bcmp. Exporting those is commonly needed when the
	// toolkit does not expand memory intrinsics to loads and stores.
	DisableMemoryBuiltins bool
	// BTF requests compact type info in the output.
	BTF bool
}

// DefaultOptions returns the default link configuration.
func DefaultOptions() Options {
	return Options{
		CPU:        CPUGeneric,
		OptLevel:   OptDefault,
		OutputType: OutputObject,
	}
}

// memoryBuiltins are exported unless disabled, so calls the toolkit
// fails to expand still resolve.
var memoryBuiltins = []string{"memcpy", "memmove", "memset", "memcmp", "bcmp"}

// toolkitArgs builds the toolkit command line for the given options.
func toolkitArgs(opts Options) []string {
	args := []string{"bpf-linker"}
	// Cold call sites defeat always-inline annotations, and the target
	// cannot return values wider than 64 bits from out-of-line calls.
	args = append(args, "--cold-callsite-rel-freq=0")
	if opts.UnrollLoops {
		args = append(args,
			"--unroll-runtime",
			"--unroll-runtime-multi-exit",
			fmt.Sprintf("--unroll-max-upperbound=%d", uint32(math.MaxUint32)),
			fmt.Sprintf("--unroll-threshold=%d", uint32(math.MaxUint32)),
		)
	}
	if !opts.DisableExpandMemcpyInOrder {
		args = append(args, "--bpf-expand-memcpy-in-order")
	}
	return append(args, opts.LLVMArgs...)
}
