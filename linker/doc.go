// Package linker drives the link: it collects bitcode from input files,
// hands it to the compiler toolkit for merging, rewrites or strips the
// debug info depending on whether compact type info is requested, runs
// the optimization passes, and emits the output.
//
// Inputs may be raw bitcode, ELF objects with an embedded .llvmbc
// section, or ar archives of either. The toolkit itself is an external
// collaborator behind the Toolkit interface; this package owns
// everything around it.
package linker
