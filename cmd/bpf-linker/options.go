package main

import (
	"github.com/spf13/cobra"

	"github.com/wippyai/bpf-linker/linker"
)

// commandLine mirrors the flag surface of the versioned linker binaries
// so the proxy accepts exactly what it forwards. rustc invokes the
// linker with this interface; unknown flags would fail the build.
type commandLine struct {
	target      string
	cpu         string
	cpuFeatures string
	output      string
	emit        []string
	btf         bool
	allowTrap   bool
	libs        []string
	optimize    []string
	exportFile  string
	logFile     string
	logLevel    string
	unrollLoops bool
	inlineNever bool
	dumpModule  string
	llvmArgs    []string
	export      []string
	fatalErrors bool
	debug       bool
	flavor      string

	disableExpandMemcpy bool
	disableBuiltins     bool

	inputs []string
}

func (cl *commandLine) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&cl.target, "target", "", "LLVM target triple. When not provided, the target is inferred from the inputs")
	f.StringVar(&cl.cpu, "cpu", "generic", "target BPF processor: generic, probe, v1, v2, v3")
	f.StringVar(&cl.cpuFeatures, "cpu-features", "", "enable or disable CPU features, e.g. +alu32,-dwarfris")
	f.StringVarP(&cl.output, "output", "o", "", "write output to this path")
	f.StringSliceVar(&cl.emit, "emit", []string{"obj"}, "output type: llvm-bc, asm, llvm-ir, obj")
	f.BoolVar(&cl.btf, "btf", false, "emit BTF information")
	f.BoolVar(&cl.allowTrap, "allow-bpf-trap", false, "permit automatic insertion of __bpf_trap calls")
	f.StringArrayVarP(&cl.libs, "libs", "L", nil, "unused, accepted for rustc compatibility")
	f.StringSliceVarP(&cl.optimize, "optimize", "O", []string{"2"}, "optimization level: 0-3, s, or z")
	f.StringVar(&cl.exportFile, "export-symbols", "", "export the newline-separated symbols in this file")
	f.StringVar(&cl.logFile, "log-file", "", "write logs to this path")
	f.StringVar(&cl.logLevel, "log-level", "", "log level: error, warn, info, debug")
	f.BoolVar(&cl.unrollLoops, "unroll-loops", false, "try hard to unroll loops, for kernels without loop support")
	f.BoolVar(&cl.inlineNever, "ignore-inline-never", false, "ignore noinline, for kernels without function call support")
	f.StringVar(&cl.dumpModule, "dump-module", "", "dump the IR module to this directory before and after optimization")
	f.StringSliceVar(&cl.llvmArgs, "llvm-args", nil, "extra command line arguments to pass to LLVM")
	f.BoolVar(&cl.disableExpandMemcpy, "disable-expand-memcpy-in-order", false, "disable in-order expansion of memory intrinsics")
	f.BoolVar(&cl.disableBuiltins, "disable-memory-builtins", false, "disable exporting memcpy, memmove, memset, memcmp and bcmp")
	f.StringSliceVar(&cl.export, "export", nil, "comma separated list of symbols to export")
	f.BoolVar(&cl.fatalErrors, "fatal-errors", true, "treat LLVM errors as fatal")
	f.BoolVar(&cl.debug, "debug", false, "")
	f.StringVar(&cl.flavor, "flavor", "", "")
	_ = f.MarkHidden("debug")
	_ = f.MarkHidden("flavor")

	_ = cmd.MarkFlagRequired("output")
}

// validate resolves the enum-valued flags through the linker parsers so
// bad values fail here instead of inside the dispatched binary.
func (cl *commandLine) validate() error {
	if _, err := linker.ParseCPU(cl.cpu); err != nil {
		return err
	}
	for _, e := range cl.emit {
		if _, err := linker.ParseOutputType(e); err != nil {
			return err
		}
	}
	for _, o := range cl.optimize {
		if _, err := linker.ParseOptLevel(o); err != nil {
			return err
		}
	}
	return nil
}

// normalizeArgs rewrites the single-dash spellings rustc emits for
// wasm-ld compatible linkers into ones the flag parser accepts.
func normalizeArgs(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		if arg == "-flavor" {
			arg = "--flavor"
		}
		out[i] = arg
	}
	return out
}
