package ir

// Module is the in-memory view of one linked translation unit: the
// global values plus the metadata arena they reference.
type Module struct {
	nodes   []node
	globals []*GlobalVariable
	aliases []*GlobalAlias
	funcs   []*Function
}

// NewModule returns an empty module. Arena slot zero is reserved so the
// zero NodeID stays nil.
func NewModule() *Module {
	return &Module{nodes: make([]node, 1)}
}

// NewGlobal appends a global variable with the given name and section
// and returns it. An empty section means the default placement.
func (m *Module) NewGlobal(name, section string) *GlobalVariable {
	g := &GlobalVariable{valueCore: valueCore{name: name, section: section}}
	m.globals = append(m.globals, g)
	return g
}

// NewAlias appends a global alias resolving to aliasee and returns it.
func (m *Module) NewAlias(name string, aliasee Value) *GlobalAlias {
	a := &GlobalAlias{
		valueCore: valueCore{name: name},
		Aliasee:   aliasee,
	}
	m.aliases = append(m.aliases, a)
	return a
}

// NewFunc appends a function with the given name and section and
// returns it.
func (m *Module) NewFunc(name, section string) *Function {
	f := &Function{valueCore: valueCore{name: name, section: section}}
	m.funcs = append(m.funcs, f)
	return f
}

// Globals returns the module's global variables in definition order.
func (m *Module) Globals() []*GlobalVariable { return m.globals }

// Aliases returns the module's global aliases in definition order.
func (m *Module) Aliases() []*GlobalAlias { return m.aliases }

// Funcs returns the module's functions in definition order.
func (m *Module) Funcs() []*Function { return m.funcs }

// NumNodes returns the number of live metadata nodes in the arena.
func (m *Module) NumNodes() int { return len(m.nodes) - 1 }
