package main

import (
	"fmt"
	"strings"

	"github.com/wippyai/bpf-linker/bitcode"
)

// blockNames maps well-known container block ids to their names.
var blockNames = map[uint64]string{
	0:  "BLOCKINFO",
	8:  "MODULE",
	9:  "PARAMATTR",
	10: "PARAMATTR_GROUP",
	11: "CONSTANTS",
	12: "FUNCTION",
	13: "IDENTIFICATION",
	14: "VALUE_SYMTAB",
	15: "METADATA",
	16: "METADATA_ATTACHMENT",
	17: "TYPE",
	21: "OPERAND_BUNDLE_TAGS",
	22: "METADATA_KIND",
	23: "STRTAB",
	25: "SYMTAB",
	26: "SYNC_SCOPE_NAMES",
}

func blockName(id uint64) string {
	if name, ok := blockNames[id]; ok {
		return name
	}
	return fmt.Sprintf("BLOCK_%d", id)
}

// node is one row of the display tree: a block with children, or a
// leaf record.
type node struct {
	blockID  uint64
	isBlock  bool
	record   bitcode.Record
	children []*node
	expanded bool
}

func (n *node) label() string {
	if n.isBlock {
		return fmt.Sprintf("%s (id %d, %d entries)", blockName(n.blockID), n.blockID, len(n.children))
	}
	ops := make([]string, 0, len(n.record.Operands))
	for _, op := range n.record.Operands {
		ops = append(ops, fmt.Sprintf("%d", op))
		if len(ops) == 8 && len(n.record.Operands) > 8 {
			ops = append(ops, "...")
			break
		}
	}
	return fmt.Sprintf("record code=%d [%s]", n.record.Code, strings.Join(ops, " "))
}

// treeBuilder assembles the node tree from walk events.
type treeBuilder struct {
	roots []*node
	stack []*node
}

func (b *treeBuilder) EnterBlock(blockID uint64, _ uint, _ uint32) error {
	n := &node{blockID: blockID, isBlock: true}
	b.attach(n)
	b.stack = append(b.stack, n)
	return nil
}

func (b *treeBuilder) EndBlock() error {
	b.stack = b.stack[:len(b.stack)-1]
	return nil
}

func (b *treeBuilder) Record(rec bitcode.Record) error {
	b.attach(&node{record: rec})
	return nil
}

func (b *treeBuilder) attach(n *node) {
	if len(b.stack) == 0 {
		b.roots = append(b.roots, n)
		return
	}
	parent := b.stack[len(b.stack)-1]
	parent.children = append(parent.children, n)
}

// buildTree walks the buffer and returns the decoded structure. When
// the walk fails partway (abbreviated records are not decodable by this
// scanner) the tree built so far is returned alongside the error.
func buildTree(data []byte) ([]*node, error) {
	var b treeBuilder
	err := bitcode.Walk(data, &b)
	return b.roots, err
}

// visibleRows flattens the tree honoring the expanded flags.
type row struct {
	node  *node
	depth int
}

func visibleRows(roots []*node) []row {
	var rows []row
	var walk func(n *node, depth int)
	walk = func(n *node, depth int) {
		rows = append(rows, row{node: n, depth: depth})
		if n.isBlock && n.expanded {
			for _, child := range n.children {
				walk(child, depth+1)
			}
		}
	}
	for _, root := range roots {
		walk(root, 0)
	}
	return rows
}

// findBlock returns the index of the first visible row whose block id
// matches, or -1.
func findBlock(rows []row, id uint64) int {
	for i, r := range rows {
		if r.node.isBlock && r.node.blockID == id {
			return i
		}
	}
	return -1
}
