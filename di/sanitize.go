package di

import (
	"github.com/wippyai/bpf-linker/ir"
)

// btfMapMarker is the synthetic field type the map macros inject to tag
// map-definition structs. Structs carrying it must be anonymous in the
// emitted type info.
const btfMapMarker = "AyaBtfMapMarker"

// Sanitizer rewrites one module's debug-metadata graph in place. Not
// safe for concurrent use; it requires exclusive access to the module
// for the duration of one Run.
type Sanitizer struct {
	m     *ir.Module
	diags *Diagnostics

	nodes  map[ir.NodeID]struct{}
	values map[ir.Value]struct{}

	// nodeVisits counts metadata nodes rewritten this run. Shared nodes
	// count once.
	nodeVisits int
}

// NewSanitizer returns a sanitizer bound to m, reporting findings to
// diags.
func NewSanitizer(m *ir.Module, diags *Diagnostics) *Sanitizer {
	return &Sanitizer{
		m:      m,
		diags:  diags,
		nodes:  make(map[ir.NodeID]struct{}),
		values: make(map[ir.Value]struct{}),
	}
}

// Run walks every value in the module and rewrites the metadata graph
// reachable from it. The visited caches are scoped to one call; calling
// Run twice on the same module is harmless since every rewrite is
// idempotent.
func (s *Sanitizer) Run() error {
	s.nodes = make(map[ir.NodeID]struct{})
	s.values = make(map[ir.Value]struct{})
	s.nodeVisits = 0

	for _, g := range s.m.Globals() {
		if err := s.visitValue(g, nil); err != nil {
			return err
		}
	}
	for _, a := range s.m.Aliases() {
		if err := s.visitValue(a, nil); err != nil {
			return err
		}
	}
	for _, f := range s.m.Funcs() {
		if err := s.visitValue(f, nil); err != nil {
			return err
		}
		for _, p := range f.Params() {
			if err := s.visitValue(p, nil); err != nil {
				return err
			}
		}
		for _, bb := range f.Blocks() {
			for _, inst := range bb.Instructions() {
				if err := s.visitValue(inst, inst.Operands()); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// visitValue marks a value visited, walks its attached metadata, and
// recurses into its operands.
func (s *Sanitizer) visitValue(v ir.Value, operands []ir.Operand) error {
	if v == nil {
		return nil
	}
	if _, ok := s.values[v]; ok {
		return nil
	}
	s.values[v] = struct{}{}

	for _, a := range v.Attachments() {
		if err := s.visitNode(a.Node); err != nil {
			return err
		}
	}

	if alias, ok := v.(*ir.GlobalAlias); ok {
		if err := s.visitValue(alias.Aliasee, nil); err != nil {
			return err
		}
	}

	for _, op := range operands {
		if op.Val != nil {
			var nested []ir.Operand
			if inst, ok := op.Val.(*ir.Instruction); ok {
				nested = inst.Operands()
			}
			if err := s.visitValue(op.Val, nested); err != nil {
				return err
			}
		}
		if op.Node != ir.Nil {
			if err := s.visitNode(op.Node); err != nil {
				return err
			}
		}
	}
	return nil
}

// visitNode rewrites a metadata node once and recurses into its
// operands. Recursion happens after the rewrite, so elements a rewrite
// dropped are not traversed.
func (s *Sanitizer) visitNode(id ir.NodeID) error {
	if id == ir.Nil {
		return nil
	}
	if _, ok := s.nodes[id]; ok {
		return nil
	}
	s.nodes[id] = struct{}{}
	s.nodeVisits++

	if err := s.rewrite(id); err != nil {
		return err
	}

	for _, op := range s.m.NodeOperands(id) {
		if err := s.visitNode(op); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sanitizer) rewrite(id ir.NodeID) error {
	switch s.m.Kind(id) {
	case ir.KindComposite:
		ct, err := s.m.Composite(id)
		if err != nil {
			return err
		}
		return s.rewriteComposite(ct)
	case ir.KindDerived:
		dt, err := s.m.Derived(id)
		if err != nil {
			return err
		}
		if dt.Tag() == ir.TagPointerType {
			dt.ClearName()
		}
		return nil
	case ir.KindSubprogram:
		sp, err := s.m.SubprogramAt(id)
		if err != nil {
			return err
		}
		if name := sp.Name(); name != "" {
			sp.ReplaceName(SanitizeTypeName(name))
		}
		return nil
	default:
		return nil
	}
}

func (s *Sanitizer) rewriteComposite(ct *ir.CompositeType) error {
	if ct.Tag() != ir.TagStructureType {
		return nil
	}

	if name := ct.Name(); name != "" {
		ct.ReplaceName(SanitizeTypeName(name))
	}

	// A forward declaration is a name/tag shell. The definition is
	// reached on its own, so there is nothing else to do here.
	if ct.Flags()&ir.FlagFwdDecl != 0 {
		return nil
	}

	removeName := false
	for _, el := range ct.Elements() {
		switch s.m.Kind(el) {
		case ir.KindComposite:
			child, err := s.m.Composite(el)
			if err != nil {
				return err
			}
			if child.Tag() != ir.TagVariantPart {
				continue
			}
			// A variant part means this struct is the layout of a
			// data-carrying enum, which the kernel's type format cannot
			// express. Drop the payload layout and keep an opaque shell.
			name := child.Name()
			if name == "" {
				name = "(anon)"
			}
			file := child.File()
			if file == "" {
				file = "<unknown>"
			}
			s.diags.Warnf(file, child.Line(), name, "data-carrying enum: not emitting type info")
			child.ReplaceElements(nil)
			child.ClearName()
		case ir.KindDerived:
			dt, err := s.m.Derived(el)
			if err != nil {
				return err
			}
			base := dt.BaseType()
			if base == ir.Nil || s.m.Kind(base) != ir.KindComposite {
				continue
			}
			if s.m.NodeName(base) == btfMapMarker {
				removeName = true
			}
		}
	}

	// The marker field wins over the sanitized name set above.
	if removeName {
		ct.ClearName()
	}
	return nil
}
