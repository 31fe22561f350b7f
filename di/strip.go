package di

import (
	"go.uber.org/zap"

	"github.com/wippyai/bpf-linker/ir"
)

// StripDebugInfo clears the debug attachment of every global, alias,
// and function that has no explicit output section; a stripped function
// loses the attachment on each of its instructions too. Values with a
// section keep their debug info untouched. Reports whether anything
// changed.
//
// This is the cheap path taken when compact type info is not being
// emitted; no graph walk happens.
func StripDebugInfo(m *ir.Module) bool {
	changed := false

	strip := func(v ir.Value) {
		if _, ok := v.Metadata(ir.MDKindDbg); !ok {
			return
		}
		v.ClearMetadata(ir.MDKindDbg)
		changed = true
	}

	for _, g := range m.Globals() {
		if g.Section() != "" {
			continue
		}
		Logger().Debug("stripping debug info", zap.String("global", g.Name()))
		strip(g)
	}

	for _, a := range m.Aliases() {
		if a.Section() != "" {
			continue
		}
		Logger().Debug("stripping debug info", zap.String("alias", a.Name()))
		strip(a)
	}

	for _, f := range m.Funcs() {
		if f.Section() != "" {
			continue
		}
		Logger().Debug("stripping debug info", zap.String("function", f.Name()))
		for _, bb := range f.Blocks() {
			for _, inst := range bb.Instructions() {
				strip(inst)
			}
		}
		strip(f)
	}

	return changed
}
