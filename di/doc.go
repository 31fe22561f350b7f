// Package di rewrites a module's debug-metadata graph so the emitted
// type information satisfies the constraints of the kernel's compact
// type format.
//
// The compiler front end produces debug info the kernel-side verifier
// does not accept: generic type names with angle brackets, variant parts
// for data-carrying enums, named pointer types. Sanitizer walks the
// metadata graph reachable from the module's globals, aliases, and
// functions and rewrites offending nodes in place. The walk is pre-order
// depth-first with a per-run visited cache, so shared nodes in the DAG
// are rewritten exactly once.
//
// When compact type info is not requested the graph walk is skipped
// entirely; StripDebugInfo instead clears the debug attachment of every
// value that has no explicit output section.
//
// Unsupported source shapes surface as warnings through a Diagnostics
// sink, never as errors. Structural violations (a node of the wrong
// kind where the graph shape guarantees another) abort the run.
package di
