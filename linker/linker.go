package linker

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/blakesmith/ar"
	"go.uber.org/zap"

	"github.com/wippyai/bpf-linker/di"
	"github.com/wippyai/bpf-linker/errors"
)

// defaultTriple is used when neither the options nor the merged module
// name a target for this backend.
const defaultTriple = "bpf"

// Linker runs one link from inputs to output. Not safe for concurrent
// use; create one Linker per link.
type Linker struct {
	opts    Options
	toolkit Toolkit
	diags   di.Diagnostics
}

// New returns a linker driving tk with the given options.
func New(tk Toolkit, opts Options) *Linker {
	return &Linker{opts: opts, toolkit: tk}
}

// Diagnostics returns the sink collecting debug-info findings.
func (l *Linker) Diagnostics() *di.Diagnostics {
	return &l.diags
}

// HasErrors reports whether any error-level diagnostic was recorded.
func (l *Linker) HasErrors() bool {
	return l.diags.HasErrors()
}

// Link performs the whole link: collect bitcode from the inputs, merge,
// rewrite or strip debug info, optimize, and emit the output.
func (l *Linker) Link(ctx context.Context) error {
	if err := l.toolkit.Init(toolkitArgs(l.opts)); err != nil {
		return errors.Toolkit(errors.PhaseLink, "init", err)
	}

	if err := l.mergeInputs(ctx); err != nil {
		return err
	}

	triple := l.chooseTriple()
	Logger().Debug("creating target machine",
		zap.String("triple", triple),
		zap.Stringer("cpu", l.opts.CPU),
		zap.String("features", l.opts.CPUFeatures),
	)
	if err := l.toolkit.CreateTargetMachine(triple, l.opts.CPU, l.opts.CPUFeatures); err != nil {
		return errors.Toolkit(errors.PhaseLink, "create target machine", err)
	}

	if l.opts.DumpModule != "" {
		if err := os.MkdirAll(l.opts.DumpModule, 0o755); err != nil {
			return errors.IO(errors.PhaseLink, l.opts.DumpModule, err)
		}
		if err := l.dumpIR("pre-opt.ll"); err != nil {
			return err
		}
	}

	if err := l.processDebugInfo(); err != nil {
		return err
	}

	if err := l.toolkit.Optimize(ctx, OptimizeConfig{
		Level:             l.opts.OptLevel,
		IgnoreInlineNever: l.opts.IgnoreInlineNever,
		ExportSymbols:     l.exportSymbols(),
	}); err != nil {
		return errors.Toolkit(errors.PhaseOptimize, "optimize", err)
	}

	if l.opts.DumpModule != "" {
		if err := l.dumpIR("post-opt.ll"); err != nil {
			return err
		}
	}

	return l.emit()
}

// mergeInputs reads every input, pulls the bitcode out of it, and hands
// it to the toolkit. Files and archive items without usable bitcode are
// skipped; I/O and merge failures are fatal.
func (l *Linker) mergeInputs(ctx context.Context) error {
	for _, path := range l.opts.Inputs {
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.IO(errors.PhaseLink, path, err)
		}

		typ, ok := DetectInputType(data)
		if !ok {
			return errors.InvalidInput(path)
		}

		if typ == InputArchive {
			Logger().Info("linking archive", zap.String("path", path))
			if err := l.mergeArchive(ctx, path, data); err != nil {
				return err
			}
			continue
		}

		Logger().Info("linking file",
			zap.String("path", path),
			zap.Stringer("type", typ),
		)
		bitcode, err := extractBitcode(path, data)
		if err != nil {
			if skippable(err) {
				Logger().Warn("ignoring file", zap.String("path", path), zap.Error(err))
				continue
			}
			return err
		}
		if err := l.toolkit.Merge(ctx, path, bitcode); err != nil {
			return errors.Toolkit(errors.PhaseLink, "merging "+path, err)
		}
	}
	return nil
}

// mergeArchive walks an ar archive and merges every item carrying
// bitcode. Items without bitcode routinely occur (metadata members,
// host objects) and are skipped.
func (l *Linker) mergeArchive(ctx context.Context, path string, data []byte) error {
	rd := ar.NewReader(bytes.NewReader(data))
	for {
		hdr, err := rd.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.IO(errors.PhaseLink, path, err)
		}

		name := strings.TrimSuffix(strings.TrimSpace(hdr.Name), "/")
		item, err := io.ReadAll(rd)
		if err != nil {
			return errors.IO(errors.PhaseLink, path, err)
		}

		Logger().Info("linking archive item", zap.String("item", name))
		bitcode, err := extractBitcode(name, item)
		if err != nil {
			if skippable(err) {
				Logger().Warn("ignoring archive item",
					zap.String("archive", path),
					zap.String("item", name),
					zap.Error(err),
				)
				continue
			}
			return err
		}
		if err := l.toolkit.Merge(ctx, path+"("+name+")", bitcode); err != nil {
			return errors.Toolkit(errors.PhaseLink, "merging "+path+"("+name+")", err)
		}
	}
}

// skippable reports whether an extraction failure means "not a bitcode
// carrier" rather than a broken input.
func skippable(err error) bool {
	var le *errors.Error
	if !stderrors.As(err, &le) {
		return false
	}
	return le.Kind == errors.KindInvalidInput || le.Kind == errors.KindMissingBitcode
}

// chooseTriple picks the output target triple. An explicit --target
// wins; otherwise the merged module's triple is kept if it already
// names this backend, else the default is used.
func (l *Linker) chooseTriple() string {
	if l.opts.Target != "" {
		return l.opts.Target
	}
	triple := l.toolkit.TargetTriple()
	if strings.HasPrefix(triple, defaultTriple) {
		return triple
	}
	Logger().Info("input target is not for this backend and no --target given, using default",
		zap.String("input_triple", triple),
		zap.String("triple", defaultTriple),
	)
	return defaultTriple
}

// processDebugInfo sanitizes the metadata graph when compact type info
// is requested, and strips section-less debug attachments otherwise.
func (l *Linker) processDebugInfo() error {
	m := l.toolkit.Module()
	if l.opts.BTF {
		return di.NewSanitizer(m, &l.diags).Run()
	}
	changed := di.StripDebugInfo(m)
	Logger().Debug("stripped debug info", zap.Bool("changed", changed))
	return nil
}

// exportSymbols returns the configured exports plus the memory builtins
// unless those are disabled.
func (l *Linker) exportSymbols() map[string]struct{} {
	exports := make(map[string]struct{}, len(l.opts.ExportSymbols)+len(memoryBuiltins))
	for sym := range l.opts.ExportSymbols {
		exports[sym] = struct{}{}
	}
	if !l.opts.DisableMemoryBuiltins {
		for _, sym := range memoryBuiltins {
			exports[sym] = struct{}{}
		}
	}
	return exports
}

func (l *Linker) dumpIR(name string) error {
	path := filepath.Join(l.opts.DumpModule, name)
	Logger().Info("dumping module IR", zap.String("path", path))
	if err := l.toolkit.WriteIR(path); err != nil {
		return errors.WriteFailed(path, err)
	}
	return nil
}

func (l *Linker) emit() error {
	out := l.opts.Output
	Logger().Info("emitting output",
		zap.String("path", out),
		zap.Stringer("type", l.opts.OutputType),
	)

	var err error
	switch l.opts.OutputType {
	case OutputBitcode:
		err = l.toolkit.WriteBitcode(out)
	case OutputIR:
		err = l.toolkit.WriteIR(out)
	default:
		err = l.toolkit.Emit(out, l.opts.OutputType)
	}
	if err != nil {
		return errors.WriteFailed(out, err)
	}
	return nil
}
