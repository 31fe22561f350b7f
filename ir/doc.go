// Package ir models the slice of the compiler toolkit's in-memory module
// the linker needs to see: global values, functions with their blocks and
// instructions, and the debug-metadata graph attached to them.
//
// The metadata graph is a DAG with heavy sharing, not a tree. Nodes live
// in an arena owned by the Module and are addressed by NodeID handles;
// handles stay valid for the lifetime of the module and double as cache
// keys. Nodes are never dereferenced directly: typed accessors
// (Module.Composite, Module.Derived, Module.Subprogram) validate the node
// kind before exposing any field, so a wrong-kind access surfaces as a
// structured error instead of reading garbage.
//
// The module supports the in-place mutations the sanitizer needs:
// replacing a node's name, clearing it, and replacing a composite type's
// element list. Everything else is read-only.
package ir
