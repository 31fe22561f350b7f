// Command bcview is a terminal browser for bitcode containers: it shows
// the producer identification string, the detected toolkit version, and
// the block/record structure the minimal scanner can decode.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/wippyai/bpf-linker/bitcode"
)

func main() {
	var (
		file = flag.String("file", "", "Path to a bitcode file")
		info = flag.Bool("info", false, "Print a summary and exit")
	)
	flag.Parse()

	path := *file
	if path == "" && flag.NArg() > 0 {
		path = flag.Arg(0)
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "Usage: bcview [-info] <file.bc>")
		os.Exit(1)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	view := loadView(path, data)

	if *info || !term.IsTerminal(int(os.Stdout.Fd())) {
		printInfo(view)
		return
	}

	p := tea.NewProgram(newModel(view), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// fileView is everything bcview extracted from one file.
type fileView struct {
	path    string
	ident   string
	version string
	roots   []*node
	walkErr error
}

// loadView scans the buffer once for the identification string and
// version, then walks it to build the display tree. Partial results
// are kept when the walk stops early.
func loadView(path string, data []byte) *fileView {
	v := &fileView{path: path, ident: "(none)", version: "unknown"}

	if ident, err := bitcode.IdentificationString(data); err == nil {
		v.ident = ident
	}
	if ver, err := bitcode.ScanVersion(data); err == nil {
		v.version = fmt.Sprintf("%d.%d", ver.Major, ver.Minor)
	}

	v.roots, v.walkErr = buildTree(data)
	return v
}

func printInfo(v *fileView) {
	fmt.Printf("File:     %s\n", v.path)
	fmt.Printf("Producer: %s\n", v.ident)
	fmt.Printf("Version:  %s\n", v.version)
	fmt.Println()
	for _, root := range v.roots {
		printNode(root, 0)
	}
	if v.walkErr != nil {
		fmt.Printf("\n(walk stopped: %v)\n", v.walkErr)
	}
}

func printNode(n *node, depth int) {
	for i := 0; i < depth; i++ {
		fmt.Print("  ")
	}
	fmt.Println(n.label())
	for _, child := range n.children {
		printNode(child, depth+1)
	}
}
