// Command bpf-linker is a version-dispatch proxy: it inspects its
// bitcode inputs for the toolkit version they were produced with and
// re-invokes the linker binary built against that same version, so
// mixed toolchain installs keep working without user intervention.
package main

import (
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cmd := newCommand()
	// rustc may invoke the linker with wasm-ld style single-dash flags.
	cmd.SetArgs(normalizeArgs(os.Args[1:]))
	if err := cmd.Execute(); err != nil {
		var exit *exec.ExitError
		if stderrors.As(err, &exit) {
			os.Exit(exit.ExitCode())
		}
		fmt.Fprintln(os.Stderr, "bpf-linker:", err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	cl := &commandLine{}

	cmd := &cobra.Command{
		Use:           "bpf-linker <inputs>...",
		Short:         "BPF linker proxy dispatching to the toolkit-matched linker binary",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cl.inputs = args
			if err := cl.validate(); err != nil {
				return err
			}
			return run(cl)
		},
	}
	cl.register(cmd)

	return cmd
}

func run(cl *commandLine) error {
	log, closeLog, err := newLogger(cl)
	if err != nil {
		return err
	}
	defer closeLog()

	major := uint64(defaultMajor)
	detected, ok, err := detectMajor(cl.inputs, log)
	if err != nil {
		return err
	}
	if ok {
		major = detected
	} else {
		log.Debug("no input revealed a toolkit version, using default",
			zap.Uint64("major", major))
	}

	binary, ok := binaryForMajor(major)
	if !ok {
		return fmt.Errorf("unsupported LLVM major version: %d", major)
	}

	log.Info("dispatching", zap.String("binary", binary), zap.Uint64("major", major))

	// The versioned binary gets the original arguments untouched; the
	// proxy only parsed them to find the inputs.
	sub := exec.Command(binary, os.Args[1:]...)
	sub.Stdin = os.Stdin
	sub.Stdout = os.Stdout
	sub.Stderr = os.Stderr
	return sub.Run()
}

// newLogger builds the proxy's logger from the log flags. Without
// --log-level logging stays off, matching the dispatched binaries.
func newLogger(cl *commandLine) (*zap.Logger, func(), error) {
	if cl.logLevel == "" {
		return zap.NewNop(), func() {}, nil
	}

	var level zapcore.Level
	if err := level.Set(strings.ToLower(cl.logLevel)); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q", cl.logLevel)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	if cl.logFile != "" {
		cfg.OutputPaths = []string{cl.logFile}
		cfg.ErrorOutputPaths = []string{cl.logFile}
	} else {
		cfg.OutputPaths = []string{"stderr"}
		cfg.ErrorOutputPaths = []string{"stderr"}
	}

	log, err := cfg.Build()
	if err != nil {
		return nil, nil, err
	}
	return log, func() { _ = log.Sync() }, nil
}
