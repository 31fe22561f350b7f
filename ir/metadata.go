package ir

import (
	"github.com/wippyai/bpf-linker/errors"
)

// NodeID is a stable handle to a metadata node in a Module's arena.
// The zero NodeID is the nil node.
type NodeID uint32

// Nil is the absent metadata node.
const Nil NodeID = 0

// MetadataKind is the closed set of node kinds the sanitizer dispatches on.
type MetadataKind uint8

const (
	// KindOther covers every node kind with no rewrite rule. Such nodes
	// are still traversed for reachability of nested nodes.
	KindOther MetadataKind = iota
	KindComposite
	KindDerived
	KindSubprogram
)

func (k MetadataKind) String() string {
	switch k {
	case KindComposite:
		return "DICompositeType"
	case KindDerived:
		return "DIDerivedType"
	case KindSubprogram:
		return "DISubprogram"
	default:
		return "Metadata"
	}
}

// DIFlags carries the debug info flags of a type node.
type DIFlags uint32

// FlagFwdDecl marks a composite type node as a forward declaration: a
// name/tag shell whose member list is defined by another node.
const FlagFwdDecl DIFlags = 1 << 2

// node is the arena slot backing one metadata node.
type node struct {
	kind        MetadataKind
	tag         DwarfTag
	name        string
	linkageName string
	file        string
	line        uint32
	flags       DIFlags
	elements    []NodeID // composite children
	baseType    NodeID   // derived base type
	operands    []NodeID // generic operands
}

func (m *Module) addNode(n node) NodeID {
	m.nodes = append(m.nodes, n)
	return NodeID(len(m.nodes) - 1)
}

// AddComposite appends a composite type node (structs, enums, unions,
// variant parts) and returns its handle.
func (m *Module) AddComposite(tag DwarfTag, name, file string, line uint32, flags DIFlags, elements ...NodeID) NodeID {
	return m.addNode(node{
		kind:     KindComposite,
		tag:      tag,
		name:     name,
		file:     file,
		line:     line,
		flags:    flags,
		elements: elements,
	})
}

// AddDerived appends a derived type node (pointers, typedefs, members)
// wrapping the given base type and returns its handle.
func (m *Module) AddDerived(tag DwarfTag, name string, baseType NodeID) NodeID {
	return m.addNode(node{
		kind:     KindDerived,
		tag:      tag,
		name:     name,
		baseType: baseType,
	})
}

// AddSubprogram appends a subprogram (function) node and returns its handle.
func (m *Module) AddSubprogram(name, linkageName, file string, line uint32) NodeID {
	return m.addNode(node{
		kind:        KindSubprogram,
		tag:         TagSubprogram,
		name:        name,
		linkageName: linkageName,
		file:        file,
		line:        line,
	})
}

// AddTuple appends a plain metadata tuple with the given operands.
func (m *Module) AddTuple(operands ...NodeID) NodeID {
	return m.addNode(node{
		kind:     KindOther,
		operands: operands,
	})
}

// AddNodeOperand appends a generic operand to an existing node.
func (m *Module) AddNodeOperand(id, operand NodeID) error {
	n, err := m.node(id)
	if err != nil {
		return err
	}
	n.operands = append(n.operands, operand)
	return nil
}

// node bounds-checks a handle and returns its arena slot.
func (m *Module) node(id NodeID) (*node, error) {
	if id == Nil || int(id) >= len(m.nodes) {
		return nil, errors.New(errors.PhaseSanitize, errors.KindNotFound).
			Detail("metadata node %d", id).
			Build()
	}
	return &m.nodes[id], nil
}

// Kind returns the node's kind, or KindOther for the nil node.
func (m *Module) Kind(id NodeID) MetadataKind {
	n, err := m.node(id)
	if err != nil {
		return KindOther
	}
	return n.kind
}

// NodeOperands returns every node reachable from id in one step: the
// generic operands plus the kind-specific references (composite elements,
// derived base type).
func (m *Module) NodeOperands(id NodeID) []NodeID {
	n, err := m.node(id)
	if err != nil {
		return nil
	}
	ops := make([]NodeID, 0, len(n.operands)+len(n.elements)+1)
	ops = append(ops, n.operands...)
	ops = append(ops, n.elements...)
	if n.baseType != Nil {
		ops = append(ops, n.baseType)
	}
	return ops
}

// NodeName returns the node's name, or "" for the nil node.
func (m *Module) NodeName(id NodeID) string {
	n, err := m.node(id)
	if err != nil {
		return ""
	}
	return n.name
}

// CompositeType is a checked handle to a composite type node.
type CompositeType struct {
	m  *Module
	id NodeID
}

// Composite downcasts id to a composite type node.
func (m *Module) Composite(id NodeID) (*CompositeType, error) {
	n, err := m.node(id)
	if err != nil {
		return nil, err
	}
	if n.kind != KindComposite {
		return nil, errors.NodeMismatch(KindComposite.String(), n.kind.String())
	}
	return &CompositeType{m: m, id: id}, nil
}

// ID returns the underlying handle.
func (t *CompositeType) ID() NodeID { return t.id }

// Tag returns the node's DWARF tag.
func (t *CompositeType) Tag() DwarfTag { return t.m.nodes[t.id].tag }

// Name returns the type name; "" means anonymous.
func (t *CompositeType) Name() string { return t.m.nodes[t.id].name }

// Flags returns the node's debug info flags.
func (t *CompositeType) Flags() DIFlags { return t.m.nodes[t.id].flags }

// File returns the source file the type is defined in.
func (t *CompositeType) File() string { return t.m.nodes[t.id].file }

// Line returns the source line the type is defined at.
func (t *CompositeType) Line() uint32 { return t.m.nodes[t.id].line }

// Elements returns the type's child elements (fields, variants).
func (t *CompositeType) Elements() []NodeID { return t.m.nodes[t.id].elements }

// ReplaceName replaces the type name in place.
func (t *CompositeType) ReplaceName(name string) { t.m.nodes[t.id].name = name }

// ClearName makes the type anonymous.
func (t *CompositeType) ClearName() { t.m.nodes[t.id].name = "" }

// ReplaceElements replaces the element list in place. An empty list
// removes all elements.
func (t *CompositeType) ReplaceElements(elements []NodeID) {
	t.m.nodes[t.id].elements = elements
}

// DerivedType is a checked handle to a derived type node.
type DerivedType struct {
	m  *Module
	id NodeID
}

// Derived downcasts id to a derived type node.
func (m *Module) Derived(id NodeID) (*DerivedType, error) {
	n, err := m.node(id)
	if err != nil {
		return nil, err
	}
	if n.kind != KindDerived {
		return nil, errors.NodeMismatch(KindDerived.String(), n.kind.String())
	}
	return &DerivedType{m: m, id: id}, nil
}

// ID returns the underlying handle.
func (t *DerivedType) ID() NodeID { return t.id }

// Tag returns the node's DWARF tag.
func (t *DerivedType) Tag() DwarfTag { return t.m.nodes[t.id].tag }

// Name returns the type name; "" means anonymous.
func (t *DerivedType) Name() string { return t.m.nodes[t.id].name }

// BaseType returns the type this one derives from.
func (t *DerivedType) BaseType() NodeID { return t.m.nodes[t.id].baseType }

// ReplaceName replaces the type name in place.
func (t *DerivedType) ReplaceName(name string) { t.m.nodes[t.id].name = name }

// ClearName makes the type anonymous.
func (t *DerivedType) ClearName() { t.m.nodes[t.id].name = "" }

// Subprogram is a checked handle to a subprogram node.
type Subprogram struct {
	m  *Module
	id NodeID
}

// SubprogramAt downcasts id to a subprogram node.
func (m *Module) SubprogramAt(id NodeID) (*Subprogram, error) {
	n, err := m.node(id)
	if err != nil {
		return nil, err
	}
	if n.kind != KindSubprogram {
		return nil, errors.NodeMismatch(KindSubprogram.String(), n.kind.String())
	}
	return &Subprogram{m: m, id: id}, nil
}

// ID returns the underlying handle.
func (s *Subprogram) ID() NodeID { return s.id }

// Name returns the subprogram's source-level name.
func (s *Subprogram) Name() string { return s.m.nodes[s.id].name }

// LinkageName returns the subprogram's mangled linkage name.
func (s *Subprogram) LinkageName() string { return s.m.nodes[s.id].linkageName }

// ReplaceName replaces the source-level name; the linkage name is left
// untouched.
func (s *Subprogram) ReplaceName(name string) { s.m.nodes[s.id].name = name }
