package oc

import (
	"fmt"
	"strings"
)

// The emitter lowers the fully annotated AST to OIL, a restricted C
// dialect compiled against oclib.oh.  The walk is post order: when a
// node is reached every child already carries the OIL name of its
// value, so emission is one line referencing child names.  Control
// flow (if, ifelse, while) and top-level definitions (structs,
// functions) are ordered explicitly instead.

const oilIndent = "        "

const oilHeader = "#define __OCLIB_C__\n#include \"oclib.oh\"\n"

type emitter struct {
	out   *outputWriter
	regNr int
	strNr int

	// String literal lexemes in source-encounter order; literal n is
	// emitted as the global sN.
	strs []string
}

// Emit lowers root to OIL text.  It must only run on a tree that
// passed the semantic pass.
func Emit(root *Node) string {
	e := &emitter{out: newOutputWriter(oilIndent), regNr: 1, strNr: 1}
	e.registerStrings(root)
	e.out.write(oilHeader)
	e.emitStructs(root)
	e.emitStrings()
	e.emitGlobals(root)
	e.emitFunctions(root)
	e.out.write("void __ocmain (void)\n{\n")
	e.emit(root)
	e.out.write("}\n")
	return e.out.String()
}

// registerStrings assigns sN names to string constants in encounter
// order so they can all be emitted at the top of the file.
func (e *emitter) registerStrings(node *Node) {
	if node.Kind == KindStringCon {
		node.oilName = fmt.Sprintf("s%d", e.strNr)
		e.strNr++
		e.strs = append(e.strs, node.Lexeme)
	}
	for _, c := range node.Children {
		e.registerStrings(c)
	}
}

// registerAlloc allocates a virtual register.  All categories share
// one counter.
func (e *emitter) registerAlloc(category string) string {
	name := fmt.Sprintf("%s%d", category, e.regNr)
	e.regNr++
	return name
}

func stripZeros(lexeme string) string {
	stripped := strings.TrimLeft(lexeme, "0")
	if stripped == "" {
		return "0"
	}
	return stripped
}

// resultTypeName builds the C type of a node's value from its
// attributes: bool collapses to char, strings are char*, structs are
// pointers to their mangled struct type, arrays append a '*', and a
// field selection appends one more (it is an address).
func resultTypeName(node *Node) string {
	attr := node.attributes()
	var base string
	switch {
	case attr.Has(AttrBool), attr.Has(AttrChar):
		base = "char"
	case attr.Has(AttrInt):
		base = "int"
	case attr.Has(AttrString):
		base = "char*"
	case attr.Has(AttrStruct):
		base = "struct s_" + node.TypeName + "*"
	default:
		panic(fmt.Sprintf("emit: no result type for %s at %s {%s}", node.Kind, node.Pos, attr))
	}
	if attr.Has(AttrArray) {
		base += "*"
	}
	if node.Kind == KindDot {
		base += "*"
	}
	return base
}

// registerCategory picks the temporary's name prefix from the node's
// kind; calls fall back to the result type.
func (e *emitter) registerCategory(node *Node) string {
	switch node.Kind {
	case KindAdd, KindSub, KindMul, KindDiv, KindMod, KindPos, KindNeg, KindOrd:
		return "i"
	case KindEq, KindNe, KindLt, KindLe, KindGt, KindGe, KindNot:
		return "b"
	case KindChr:
		return "c"
	case KindCall:
		attr := node.attributes()
		switch {
		case strings.ContainsRune(resultTypeName(node), '*'):
			return "p"
		case attr.Has(AttrInt):
			return "i"
		case attr.Has(AttrChar):
			return "c"
		case attr.Has(AttrBool):
			return "b"
		}
		panic(fmt.Sprintf("emit: no register category for call at %s", node.Pos))
	}
	panic(fmt.Sprintf("emit: no register category for %s", node.Kind))
}

// mangle rewrites a declared identifier into its OIL name.  The
// mapping is deterministic: fields become f_<struct>_<name>, globals
// __<name>, and locals _<block>_<name>.
func mangle(node *Node) string {
	sym := node.Sym
	if sym == nil {
		panic(fmt.Sprintf("emit: unresolved identifier '%s' at %s", node.Lexeme, node.Pos))
	}
	if node.Kind == KindField {
		return "f_" + sym.OwningStruct + "_" + sym.Definition.Lexeme
	}
	if sym.Block == 0 {
		return "__" + sym.Definition.Lexeme
	}
	return fmt.Sprintf("_%d_%s", sym.Block, sym.Definition.Lexeme)
}

func label(prefix string, node *Node) string {
	return fmt.Sprintf("%s_%d_%d_%d", prefix, node.Pos.File, node.Pos.Line, node.Pos.Col)
}

// emit walks node post order, writing any code it produces and
// leaving the node's OIL name behind for its parent.  Running it on a
// subtree that produces no code (a declaration spine, say) still sets
// the OIL names within.
func (e *emitter) emit(node *Node) {
	// Definitions are emitted in their own sections, and control flow
	// sequences its children by hand.
	switch node.Kind {
	case KindStruct, KindFunction, KindPrototype, KindStringCon:
		return
	case KindWhile:
		e.out.writef("%s:;\n", label("while", node))
		e.emit(node.Children[0])
		e.out.writef(oilIndent+"if (!%s) goto %s;\n",
			node.Children[0].oilName, label("break", node))
		e.emit(node.Children[1])
		e.out.writef(oilIndent+"goto %s;\n", label("while", node))
		e.out.writef("%s:;\n", label("break", node))
		return
	case KindIf:
		e.emit(node.Children[0])
		e.out.writef(oilIndent+"if (!%s) goto %s;\n",
			node.Children[0].oilName, label("fi", node))
		e.emit(node.Children[1])
		e.out.writef("%s:;\n", label("fi", node))
		return
	case KindIfElse:
		e.emit(node.Children[0])
		e.out.writef(oilIndent+"if (!%s) goto %s;\n",
			node.Children[0].oilName, label("else", node))
		e.emit(node.Children[1])
		e.out.writef(oilIndent+"goto %s;\n", label("fi", node))
		e.out.writef("%s:;\n", label("else", node))
		e.emit(node.Children[2])
		e.out.writef("%s:;\n", label("fi", node))
		return
	}

	for _, child := range node.Children {
		e.emit(child)
	}

	switch node.Kind {
	case KindAdd, KindSub, KindMul, KindDiv, KindMod,
		KindEq, KindNe, KindLt, KindLe, KindGt, KindGe:
		node.oilName = e.registerAlloc(e.registerCategory(node))
		e.out.writef(oilIndent+"%s %s = %s %s %s;\n",
			resultTypeName(node), node.oilName,
			node.Children[0].oilName, node.Lexeme, node.Children[1].oilName)

	case KindPos, KindNeg, KindNot, KindOrd, KindChr:
		node.oilName = e.registerAlloc(e.registerCategory(node))
		op := node.Lexeme
		if node.Kind == KindOrd {
			op = "(int)"
		} else if node.Kind == KindChr {
			op = "(char)"
		}
		e.out.writef(oilIndent+"%s %s = %s%s;\n",
			resultTypeName(node), node.oilName, op, node.Children[0].oilName)

	case KindAssign:
		// The result is just the lval; it can be used again.
		node.oilName = node.Children[0].oilName
		e.out.writef(oilIndent+"%s = %s;\n",
			node.Children[0].oilName, node.Children[1].oilName)

	case KindVardecl:
		e.out.write(oilIndent)
		if node.Parent != nil && node.Parent.Kind == KindRoot {
			// Globals were declared up top; assign the mangled name.
			e.out.writef("%s ", declarator(node.Children[0]).oilName)
		} else {
			e.out.writef("%s ", node.Children[0].oilName)
		}
		e.out.writef("= %s;\n", node.Children[1].oilName)

	case KindCall:
		if !node.attributes().Has(AttrVoid) {
			node.oilName = e.registerAlloc(e.registerCategory(node))
			e.out.writef(oilIndent+"%s %s = ", resultTypeName(node), node.oilName)
		} else {
			e.out.write(oilIndent)
		}
		e.out.writef("%s (", node.Children[0].oilName)
		for i, arg := range node.Children[1:] {
			if i > 0 {
				e.out.write(", ")
			}
			e.out.write(arg.oilName)
		}
		e.out.write(");\n")

	case KindIntCon:
		node.oilName = stripZeros(node.Lexeme)

	case KindCharCon:
		node.oilName = node.Lexeme

	case KindReturn:
		e.out.writef(oilIndent+"return %s;\n", node.Children[0].oilName)

	case KindReturnVoid:
		e.out.write(oilIndent + "return;\n")

	case KindArray:
		// A declaration spine; the element type picks up a '*'.
		node.oilName = node.Children[0].oilName + "* " + node.Children[1].oilName
		e.emitBareDecl(node)

	case KindIndex:
		reg := e.registerAlloc("a")
		e.out.writef(oilIndent+"%s* %s = &%s[%s];\n",
			resultTypeName(node), reg,
			node.Children[0].oilName, node.Children[1].oilName)
		node.oilName = "(*" + reg + ")"

	case KindDot:
		reg := e.registerAlloc("a")
		e.out.writef(oilIndent+"%s %s = &%s->%s;\n",
			resultTypeName(node), reg,
			node.Children[0].oilName, node.Children[1].oilName)
		node.oilName = "(*" + reg + ")"

	case KindIdent, KindDeclID, KindField:
		node.oilName = mangle(node)

	// For type nodes without children the node is a bare type token
	// (an array element type, say) and names itself; with a
	// declarator child it names the "<type> <name>" pair.
	case KindInt, KindChar, KindVoid:
		if len(node.Children) == 0 {
			node.oilName = node.Lexeme
		} else {
			node.oilName = node.Lexeme + " " + node.Children[0].oilName
			e.emitBareDecl(node)
		}

	case KindBool:
		if len(node.Children) == 0 {
			node.oilName = "char"
		} else {
			node.oilName = "char " + node.Children[0].oilName
			e.emitBareDecl(node)
		}

	case KindString:
		if len(node.Children) == 0 {
			node.oilName = "char*"
		} else {
			node.oilName = "char* " + node.Children[0].oilName
			e.emitBareDecl(node)
		}

	case KindTypeID:
		if len(node.Children) == 0 {
			node.oilName = "struct s_" + node.Lexeme + "*"
		} else {
			node.oilName = "struct s_" + node.Lexeme + "* " + node.Children[0].oilName
			e.emitBareDecl(node)
		}

	case KindNew:
		reg := e.registerAlloc("p")
		e.out.writef(oilIndent+"struct s_%s* %s = xcalloc (1, sizeof (struct s_%s));\n",
			node.TypeName, reg, node.TypeName)
		node.oilName = reg

	case KindNewArray:
		reg := e.registerAlloc("p")
		elem := resultTypeName(node.Children[0])
		e.out.writef(oilIndent+"%s* %s = xcalloc (%s, sizeof (%s));\n",
			elem, reg, node.Children[1].oilName, elem)
		node.oilName = reg

	case KindNewString:
		reg := e.registerAlloc("p")
		e.out.writef(oilIndent+"char* %s = xcalloc (%s, sizeof (char));\n",
			reg, node.Children[0].oilName)
		node.oilName = reg

	case KindNull, KindFalse:
		node.oilName = "0"

	case KindTrue:
		node.oilName = "1"

	case KindBlock, KindRoot, KindParamList:
		// Children already emitted.

	default:
		panic(fmt.Sprintf("emit: unhandled node %s at %s", node.Kind, node.Pos))
	}
}

// emitBareDecl prints a bare declaration statement (`int x;`) when
// the spine stands alone inside a block.  Spines under vardecls,
// parameter lists, field lists, and the root are printed by their
// owners.
func (e *emitter) emitBareDecl(spine *Node) {
	if spine.Parent != nil && spine.Parent.Kind == KindBlock {
		e.out.writef(oilIndent+"%s;\n", spine.oilName)
	}
}

// emitStructs declares every struct type with its mangled field
// names.
func (e *emitter) emitStructs(root *Node) {
	for _, node := range root.Children {
		if node.Kind != KindStruct {
			continue
		}
		e.out.writef("struct s_%s {\n", node.Children[0].Lexeme)
		for _, field := range node.Children[1:] {
			e.emit(field)
			e.out.writef(oilIndent+"%s;\n", field.oilName)
		}
		e.out.write("};\n")
	}
}

func (e *emitter) emitStrings() {
	for i, lexeme := range e.strs {
		e.out.writef("char* s%d = %s;\n", i+1, lexeme)
	}
}

// emitGlobals declares every block-0 variable by its mangled name,
// without an initializer; initializers run inside __ocmain.
func (e *emitter) emitGlobals(root *Node) {
	for _, node := range root.Children {
		switch {
		case node.Kind == KindVardecl:
			e.emit(node.Children[0])
			e.out.writef("%s;\n", node.Children[0].oilName)
		case node.Kind.isTypeSpine() && len(node.Children) > 0:
			e.emit(node)
			e.out.writef("%s;\n", node.oilName)
		}
	}
}

func (e *emitter) emitFunctions(root *Node) {
	for _, node := range root.Children {
		if node.Kind != KindFunction {
			continue
		}
		e.emit(node.Children[0])
		e.out.writef("%s(", node.Children[0].oilName)
		params := node.Children[1].Children
		if len(params) == 0 {
			e.out.write("void")
		}
		for i, param := range params {
			if i == 0 {
				e.out.write("\n")
			}
			e.emit(param)
			e.out.writef(oilIndent+"%s", param.oilName)
			if i+1 != len(params) {
				e.out.write(",\n")
			}
		}
		e.out.write(")\n{\n")
		e.emit(node.Children[2])
		e.out.write("}\n")
	}
}
