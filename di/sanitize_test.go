package di

import (
	"strings"
	"testing"

	"github.com/wippyai/bpf-linker/ir"
)

// attach wires a metadata node to a fresh global so the sanitizer
// reaches it.
func attach(m *ir.Module, id ir.NodeID) {
	g := m.NewGlobal("g", "")
	g.SetMetadata(ir.MDKindDbg, id)
}

func runSanitizer(t *testing.T, m *ir.Module) *Diagnostics {
	t.Helper()
	var diags Diagnostics
	if err := NewSanitizer(m, &diags).Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return &diags
}

func TestSanitizerStructName(t *testing.T) {
	m := ir.NewModule()
	id := m.AddComposite(ir.TagStructureType, "MyStruct<u64>", "lib.rs", 3, 0)
	attach(m, id)

	runSanitizer(t, m)

	if got := m.NodeName(id); got != "MyStruct_3C_u64_3E_" {
		t.Errorf("got %q, want %q", got, "MyStruct_3C_u64_3E_")
	}
}

func TestSanitizerVariantPart(t *testing.T) {
	m := ir.NewModule()
	payload := m.AddDerived(ir.TagMember, "payload", ir.Nil)
	variant := m.AddComposite(ir.TagVariantPart, "Foo", "lib.rs", 10, 0, payload)
	enclosing := m.AddComposite(ir.TagStructureType, "Foo", "lib.rs", 10, 0, variant)
	attach(m, enclosing)

	diags := runSanitizer(t, m)

	child, err := m.Composite(variant)
	if err != nil {
		t.Fatalf("Composite: %v", err)
	}
	if child.Name() != "" {
		t.Errorf("variant part name not cleared: %q", child.Name())
	}
	if len(child.Elements()) != 0 {
		t.Errorf("variant part elements not cleared: %v", child.Elements())
	}

	warnings := diags.Warnings()
	if len(warnings) != 1 {
		t.Fatalf("warnings: got %d, want 1", len(warnings))
	}
	w := warnings[0]
	if w.File != "lib.rs" || w.Line != 10 || w.Type != "Foo" {
		t.Errorf("warning context: got %s:%d %q, want lib.rs:10 \"Foo\"", w.File, w.Line, w.Type)
	}
}

func TestSanitizerVariantPartAnonymous(t *testing.T) {
	m := ir.NewModule()
	variant := m.AddComposite(ir.TagVariantPart, "", "", 4, 0)
	enclosing := m.AddComposite(ir.TagStructureType, "E", "", 4, 0, variant)
	attach(m, enclosing)

	diags := runSanitizer(t, m)

	warnings := diags.Warnings()
	if len(warnings) != 1 {
		t.Fatalf("warnings: got %d, want 1", len(warnings))
	}
	if warnings[0].Type != "(anon)" || warnings[0].File != "<unknown>" {
		t.Errorf("placeholders: got %q in %q", warnings[0].Type, warnings[0].File)
	}
}

func TestSanitizerMapMarker(t *testing.T) {
	m := ir.NewModule()
	marker := m.AddComposite(ir.TagStructureType, "AyaBtfMapMarker", "aya.rs", 1, 0)
	field := m.AddDerived(ir.TagMember, "_marker", marker)
	enclosing := m.AddComposite(ir.TagStructureType, "HashMap<u32, u32>", "main.rs", 20, 0, field)
	attach(m, enclosing)

	runSanitizer(t, m)

	if got := m.NodeName(enclosing); got != "" {
		t.Errorf("map struct not anonymized: %q", got)
	}
}

func TestSanitizerPointerName(t *testing.T) {
	m := ir.NewModule()
	id := m.AddDerived(ir.TagPointerType, "*mut Foo", ir.Nil)
	attach(m, id)

	runSanitizer(t, m)

	if got := m.NodeName(id); got != "" {
		t.Errorf("pointer name not cleared: %q", got)
	}
}

func TestSanitizerNonPointerDerivedKept(t *testing.T) {
	m := ir.NewModule()
	id := m.AddDerived(ir.TagTypedef, "MyAlias", ir.Nil)
	attach(m, id)

	runSanitizer(t, m)

	if got := m.NodeName(id); got != "MyAlias" {
		t.Errorf("typedef name changed: %q", got)
	}
}

func TestSanitizerSubprogram(t *testing.T) {
	m := ir.NewModule()
	id := m.AddSubprogram("poll<F>", "_ZN4poll17h0123456789abcdefE", "main.rs", 7)
	f := m.NewFunc("poll", "")
	f.SetMetadata(ir.MDKindDbg, id)

	runSanitizer(t, m)

	sp, err := m.SubprogramAt(id)
	if err != nil {
		t.Fatalf("SubprogramAt: %v", err)
	}
	if sp.Name() != "poll_3C_F_3E_" {
		t.Errorf("name: got %q, want %q", sp.Name(), "poll_3C_F_3E_")
	}
	if sp.LinkageName() != "_ZN4poll17h0123456789abcdefE" {
		t.Errorf("linkage name changed: %q", sp.LinkageName())
	}
}

func TestSanitizerForwardDeclStops(t *testing.T) {
	m := ir.NewModule()
	variant := m.AddComposite(ir.TagVariantPart, "Inner", "lib.rs", 2, 0)
	fwd := m.AddComposite(ir.TagStructureType, "Opaque<T>", "lib.rs", 2, ir.FlagFwdDecl, variant)
	attach(m, fwd)

	diags := runSanitizer(t, m)

	// The name is still sanitized, but children are left alone and no
	// warning fires.
	if got := m.NodeName(fwd); got != "Opaque_3C_T_3E_" {
		t.Errorf("fwd decl name: got %q", got)
	}
	if len(diags.Warnings()) != 0 {
		t.Errorf("fwd decl emitted warnings: %v", diags.Warnings())
	}
	child, err := m.Composite(variant)
	if err != nil {
		t.Fatalf("Composite: %v", err)
	}
	if child.Name() != "Inner" {
		t.Errorf("fwd decl child was rewritten: %q", child.Name())
	}
}

func TestSanitizerSharedNodeVisitedOnce(t *testing.T) {
	m := ir.NewModule()
	shared := m.AddComposite(ir.TagStructureType, "Shared<T>", "lib.rs", 1, 0)
	parentA := m.AddTuple(shared)
	parentB := m.AddTuple(shared)
	root := m.AddTuple(parentA, parentB)
	attach(m, root)

	var diags Diagnostics
	s := NewSanitizer(m, &diags)
	if err := s.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// root + two parents + the shared leaf, counted once despite two paths.
	if s.nodeVisits != 4 {
		t.Errorf("node visits: got %d, want 4", s.nodeVisits)
	}
	if got := m.NodeName(shared); got != "Shared_3C_T_3E_" {
		t.Errorf("shared node: got %q", got)
	}
}

func TestSanitizerReachesAllRoots(t *testing.T) {
	m := ir.NewModule()

	gNode := m.AddComposite(ir.TagStructureType, "G<u8>", "a.rs", 1, 0)
	aNode := m.AddComposite(ir.TagStructureType, "A<u8>", "a.rs", 2, 0)
	pNode := m.AddComposite(ir.TagStructureType, "P<u8>", "a.rs", 3, 0)
	iNode := m.AddComposite(ir.TagStructureType, "I<u8>", "a.rs", 4, 0)
	opNode := m.AddComposite(ir.TagStructureType, "Op<u8>", "a.rs", 5, 0)

	g := m.NewGlobal("counter", "")
	g.SetMetadata(ir.MDKindDbg, gNode)

	target := m.NewGlobal("target", "")
	alias := m.NewAlias("counter_alias", target)
	alias.SetMetadata(ir.MDKindDbg, aNode)

	f := m.NewFunc("entry", "")
	p := f.AddParam("ctx")
	p.SetMetadata(ir.MDKindDbg, pNode)
	bb := f.AddBlock("start")
	inst := bb.AddInstruction(ir.Operand{Node: opNode})
	inst.SetMetadata(ir.MDKindDbg, iNode)

	runSanitizer(t, m)

	for _, id := range []ir.NodeID{gNode, aNode, pNode, iNode, opNode} {
		if name := m.NodeName(id); strings.ContainsAny(name, "<>") {
			t.Errorf("node %d not sanitized: %q", id, name)
		}
	}
}

func TestSanitizerRunTwice(t *testing.T) {
	m := ir.NewModule()
	id := m.AddComposite(ir.TagStructureType, "Twice<T>", "lib.rs", 1, 0)
	attach(m, id)

	var diags Diagnostics
	s := NewSanitizer(m, &diags)
	if err := s.Run(); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	first := m.NodeName(id)
	if err := s.Run(); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if got := m.NodeName(id); got != first {
		t.Errorf("second run changed name from %q to %q", first, got)
	}
}
