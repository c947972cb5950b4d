package oc

import (
	"fmt"
	"io"
	"strings"
)

// Node is one n-way AST node.  The parser fills Kind, Pos, Lexeme,
// Children, and Parent; the semantic pass annotates Block, Attrs,
// TypeName, and Sym in place; the emitter records the OIL name of the
// node's value in oilName.
type Node struct {
	Kind     Kind
	Pos      Pos
	Lexeme   string
	Children []*Node
	Parent   *Node

	Block    int
	Attrs    AttrSet
	TypeName string
	Sym      *Symbol

	oilName string
}

func NewNode(kind Kind, pos Pos, lexeme string) *Node {
	return &Node{Kind: kind, Pos: pos, Lexeme: lexeme}
}

// Adopt appends children and sets their parent back-pointer.
func (n *Node) Adopt(children ...*Node) *Node {
	for _, c := range children {
		c.Parent = n
		n.Children = append(n.Children, c)
	}
	return n
}

func (n *Node) Child(i int) *Node { return n.Children[i] }

// attributes resolves the node's effective attribute set.  Identifier
// roles read through to their symbol entry when one is bound; every
// other node owns its attributes directly.
func (n *Node) attributes() AttrSet {
	switch n.Kind {
	case KindIdent, KindField, KindDeclID, KindTypeID:
		if n.Sym != nil {
			return n.Sym.Attrs
		}
	}
	return n.Attrs
}

func (n *Node) dumpLine(w io.Writer) {
	fmt.Fprintf(w, "%s \"%s\" %s {%d}", n.Kind, n.Lexeme, n.Pos, n.Block)
	if attrs := n.attributes().typedString(n.TypeName); attrs != "" {
		fmt.Fprintf(w, " %s", attrs)
	}
	if n.Sym != nil && n.Sym.Definition != n {
		fmt.Fprintf(w, " (%s)", n.Sym.Pos)
	}
}

func dumpASTRec(w io.Writer, n *Node, depth int) {
	if n == nil {
		return
	}
	fmt.Fprint(w, strings.Repeat("|  ", depth))
	n.dumpLine(w)
	fmt.Fprintln(w)
	for _, c := range n.Children {
		dumpASTRec(w, c, depth+1)
	}
}

// DumpAST writes the annotated tree, one line per node, indented by
// "|  " per depth.
func DumpAST(w io.Writer, root *Node) {
	dumpASTRec(w, root, 0)
}

// DumpASTString is DumpAST into a string.
func DumpASTString(root *Node) string {
	var b strings.Builder
	DumpAST(&b, root)
	return b.String()
}
