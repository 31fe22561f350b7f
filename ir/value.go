package ir

// MDKindDbg is the metadata kind id of !dbg attachments. It is the first
// kind the toolkit registers, so its id is fixed.
const MDKindDbg uint32 = 0

// Attachment pairs a metadata kind id with the attached node.
type Attachment struct {
	Kind uint32
	Node NodeID
}

// Operand is a single operand of an instruction. Exactly one of Val and
// Node is set: values reference other IR entities, nodes reference
// metadata.
type Operand struct {
	Val  Value
	Node NodeID
}

// Value is implemented by every IR entity that can carry metadata
// attachments. The sanitizer walks values by identity, so all
// implementations are pointer types.
type Value interface {
	Name() string
	Section() string
	Attachments() []Attachment
	Metadata(kind uint32) (NodeID, bool)
	SetMetadata(kind uint32, node NodeID)
	ClearMetadata(kind uint32)
}

// valueCore is the state shared by all Value implementations.
type valueCore struct {
	name        string
	section     string
	attachments []Attachment
}

func (v *valueCore) Name() string    { return v.name }
func (v *valueCore) Section() string { return v.section }

func (v *valueCore) Attachments() []Attachment { return v.attachments }

// Metadata returns the node attached under kind, if any.
func (v *valueCore) Metadata(kind uint32) (NodeID, bool) {
	for _, a := range v.attachments {
		if a.Kind == kind {
			return a.Node, true
		}
	}
	return Nil, false
}

// SetMetadata attaches node under kind, replacing any previous
// attachment of the same kind.
func (v *valueCore) SetMetadata(kind uint32, node NodeID) {
	for i, a := range v.attachments {
		if a.Kind == kind {
			v.attachments[i].Node = node
			return
		}
	}
	v.attachments = append(v.attachments, Attachment{Kind: kind, Node: node})
}

// ClearMetadata removes the attachment under kind, if present.
func (v *valueCore) ClearMetadata(kind uint32) {
	for i, a := range v.attachments {
		if a.Kind == kind {
			v.attachments = append(v.attachments[:i], v.attachments[i+1:]...)
			return
		}
	}
}

// GlobalVariable is a module-level variable definition or declaration.
type GlobalVariable struct {
	valueCore
}

// GlobalAlias is a module-level alias to another global.
type GlobalAlias struct {
	valueCore

	// Aliasee is the global the alias resolves to.
	Aliasee Value
}

// Function is a function definition or declaration.
type Function struct {
	valueCore

	params []*Param
	blocks []*BasicBlock
}

// Params returns the function's formal parameters.
func (f *Function) Params() []*Param { return f.params }

// Blocks returns the function's basic blocks in layout order. A
// declaration has none.
func (f *Function) Blocks() []*BasicBlock { return f.blocks }

// AddParam appends a formal parameter and returns it.
func (f *Function) AddParam(name string) *Param {
	p := &Param{valueCore: valueCore{name: name}}
	f.params = append(f.params, p)
	return p
}

// AddBlock appends a basic block and returns it.
func (f *Function) AddBlock(name string) *BasicBlock {
	b := &BasicBlock{name: name}
	f.blocks = append(f.blocks, b)
	return b
}

// Param is a function's formal parameter.
type Param struct {
	valueCore
}

// BasicBlock holds a straight-line run of instructions. Blocks carry no
// metadata attachments themselves.
type BasicBlock struct {
	name  string
	insts []*Instruction
}

// Name returns the block's label.
func (b *BasicBlock) Name() string { return b.name }

// Instructions returns the block's instructions in order.
func (b *BasicBlock) Instructions() []*Instruction { return b.insts }

// AddInstruction appends an instruction with the given operands and
// returns it.
func (b *BasicBlock) AddInstruction(operands ...Operand) *Instruction {
	inst := &Instruction{operands: operands}
	b.insts = append(b.insts, inst)
	return inst
}

// Instruction is a single instruction inside a basic block.
type Instruction struct {
	valueCore

	operands []Operand
}

// Operands returns the instruction's operands.
func (i *Instruction) Operands() []Operand { return i.operands }
