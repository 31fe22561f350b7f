package linker

import (
	"context"

	"github.com/wippyai/bpf-linker/ir"
)

// OptimizeConfig carries the per-run knobs of the optimization pipeline.
type OptimizeConfig struct {
	// Level is the optimization level.
	Level OptLevel
	// IgnoreInlineNever strips noinline attributes before the passes run.
	IgnoreInlineNever bool
	// ExportSymbols survive internalization and dead code elimination.
	ExportSymbols map[string]struct{}
}

// Toolkit is the compiler toolkit the linker drives. It owns the merged
// module; the linker only sees the ir view needed for debug-info work.
// Implementations are not required to be safe for concurrent use.
type Toolkit interface {
	// Init hands the toolkit its command line. Called once, before
	// anything else.
	Init(args []string) error

	// Merge parses one bitcode buffer and links it into the module
	// under construction. name identifies the buffer in diagnostics.
	Merge(ctx context.Context, name string, bitcode []byte) error

	// Module exposes the merged module for debug-info rewriting.
	Module() *ir.Module

	// TargetTriple reports the target triple of the merged module.
	TargetTriple() string

	// CreateTargetMachine configures code generation for the given
	// triple, processor variant, and feature string.
	CreateTargetMachine(triple string, cpu CPU, features string) error

	// Optimize runs the optimization pipeline over the merged module.
	Optimize(ctx context.Context, cfg OptimizeConfig) error

	// WriteIR writes the module as textual IR to path.
	WriteIR(path string) error

	// WriteBitcode writes the module as bitcode to path.
	WriteBitcode(path string) error

	// Emit generates assembly or an object file at path.
	Emit(path string, typ OutputType) error
}
