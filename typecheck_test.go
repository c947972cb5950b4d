package oc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypecheck(t *testing.T) {
	t.Run("arithmetic wants ints", func(t *testing.T) {
		_, a, diags := analyze(t, "void main() { int x; x = 1 + 2 * 3; }")
		assert.Empty(t, diags)
		assert.Zero(t, a.Errors())
	})

	t.Run("arithmetic rejects bools", func(t *testing.T) {
		_, a, diags := analyze(t, "void main() { int x; x = 1 + true; }")
		assert.Contains(t, diags, "{int} is required")
		assert.Greater(t, a.Errors(), 0)
	})

	t.Run("arithmetic rejects arrays", func(t *testing.T) {
		_, _, diags := analyze(t, "void main() { int[] xs = new int[3]; int y; y = xs + 1; }")
		assert.Contains(t, diags, "none of {array} are allowed")
	})

	t.Run("equality needs compatible operands", func(t *testing.T) {
		_, a, diags := analyze(t, "void main() { bool b; b = 1 == 'a'; }")
		assert.Contains(t, diags, "nodes are not compatible")
		assert.Greater(t, a.Errors(), 0)
	})

	t.Run("null compares against references", func(t *testing.T) {
		_, a, diags := analyze(t,
			"struct S { int x; }\nvoid main() { S s = new S(); bool b; b = s == null; }")
		assert.Empty(t, diags)
		assert.Zero(t, a.Errors())
	})

	t.Run("ordering needs primitives", func(t *testing.T) {
		_, _, diags := analyze(t, `void main() { bool b; string s = "x"; string u = "y"; b = s < u; }`)
		assert.Contains(t, diags, "at least one of {bool char int} are required")
	})

	t.Run("unary rules", func(t *testing.T) {
		_, a, diags := analyze(t,
			"void main() { int i; i = -5; i = ord 'a'; char c; c = chr 65; bool b; b = !false; }")
		assert.Empty(t, diags)
		assert.Zero(t, a.Errors())
	})

	t.Run("ord wants a char", func(t *testing.T) {
		_, _, diags := analyze(t, "void main() { int i; i = ord 5; }")
		assert.Contains(t, diags, "{char} is required")
	})

	t.Run("assignment needs an lval", func(t *testing.T) {
		_, _, diags := analyze(t, "void main() { 1 = 2; }")
		assert.Contains(t, diags, "{lval} is required")
	})

	t.Run("assignment result is a vreg of the rhs type", func(t *testing.T) {
		root, a, _ := analyze(t, "void main() { int x; int y; x = y = 3; }")
		assert.Zero(t, a.Errors())
		outer := root.Children[0].Children[2].Children[2]
		assert.Equal(t, KindAssign, outer.Kind)
		assert.True(t, outer.Attrs.Has(AttrInt))
		assert.True(t, outer.Attrs.Has(AttrVreg))
	})

	t.Run("vardecl initializer must be compatible", func(t *testing.T) {
		_, _, diags := analyze(t, `void main() { int x = "nope"; }`)
		assert.Contains(t, diags, "nodes are not compatible")
	})

	t.Run("null initializes references only", func(t *testing.T) {
		_, a, diags := analyze(t, "struct S { int x; }\nvoid main() { S s = null; }")
		assert.Empty(t, diags)
		assert.Zero(t, a.Errors())

		_, _, diags = analyze(t, "void main() { int x = null; }")
		assert.Contains(t, diags, "nodes are not compatible")
	})

	t.Run("indexing", func(t *testing.T) {
		_, a, diags := analyze(t,
			"void main() { int[] xs = new int[3]; xs[0] = 4; int y; y = xs[1]; }")
		assert.Empty(t, diags)
		assert.Zero(t, a.Errors())
	})

	t.Run("string indexing yields chars", func(t *testing.T) {
		root, a, diags := analyze(t, `void main() { string s = "abc"; char c; c = s[1]; }`)
		assert.Empty(t, diags)
		assert.Zero(t, a.Errors())
		idx := root.Children[0].Children[2].Children[2].Children[1]
		assert.Equal(t, KindIndex, idx.Kind)
		assert.True(t, idx.Attrs.Has(AttrChar))
		assert.True(t, idx.Attrs.Has(AttrLval))
		assert.True(t, idx.Attrs.Has(AttrVaddr))
	})

	t.Run("indexing a scalar fails", func(t *testing.T) {
		_, a, diags := analyze(t, "void main() { int x; x = x[0]; }")
		assert.Contains(t, diags, "cannot index into non-array non-string value")
		assert.Greater(t, a.Errors(), 0)
	})

	t.Run("index must be an int", func(t *testing.T) {
		_, _, diags := analyze(t, "void main() { int[] xs = new int[3]; xs[true] = 1; }")
		assert.Contains(t, diags, "{int} is required")
	})

	t.Run("string index type is not checked", func(t *testing.T) {
		_, a, diags := analyze(t, `void main() { string s = "abc"; char c; c = s[true]; }`)
		assert.Empty(t, diags)
		assert.Zero(t, a.Errors())
	})

	t.Run("conditions must be bool", func(t *testing.T) {
		_, _, diags := analyze(t, "void main() { if (1) { } }")
		assert.Contains(t, diags, "{bool} is required")

		_, _, diags = analyze(t, "void main() { while (1) { } }")
		assert.Contains(t, diags, "{bool} is required")
	})

	t.Run("return type must match", func(t *testing.T) {
		_, a, diags := analyze(t, "int f() { return 'a'; }")
		assert.Contains(t, diags, "nodes are not compatible")
		assert.Greater(t, a.Errors(), 0)
	})

	t.Run("void functions return nothing", func(t *testing.T) {
		_, _, diags := analyze(t, "void f() { return; }")
		assert.Empty(t, diags)

		_, _, diags = analyze(t, "int f() { return; }")
		assert.Contains(t, diags, "can't return void in a non-void function")
	})

	t.Run("value return outside a function", func(t *testing.T) {
		_, _, diags := analyze(t, "int x;\nx = 1;\nreturn x;")
		assert.Contains(t, diags, "can't return non-void in a void function (global scope)")
	})

	t.Run("call arity", func(t *testing.T) {
		_, _, diags := analyze(t, "int f(int a) { return a; }\nvoid main() { int r; r = f(); }")
		assert.Contains(t, diags, "invalid number of parameters to function 'f' (needed 1, have 0)")
	})

	t.Run("call argument types", func(t *testing.T) {
		_, _, diags := analyze(t, "int f(int a) { return a; }\nvoid main() { int r; r = f(true); }")
		assert.Contains(t, diags, "nodes are not compatible")
	})

	t.Run("calling a non-function", func(t *testing.T) {
		_, _, diags := analyze(t, "int x;\nvoid main() { x(); }")
		assert.Contains(t, diags, "'x' is not a function")
	})

	t.Run("call result drops the function attribute", func(t *testing.T) {
		root, a, _ := analyze(t, "int f() { return 1; }\nvoid main() { int r; r = f(); }")
		assert.Zero(t, a.Errors())
		call := root.Children[1].Children[2].Children[1].Children[1]
		assert.Equal(t, KindCall, call.Kind)
		assert.True(t, call.Attrs.Has(AttrInt))
		assert.True(t, call.Attrs.Has(AttrVreg))
		assert.False(t, call.Attrs.Has(AttrFunction))
	})

	t.Run("new array size must be an int", func(t *testing.T) {
		_, _, diags := analyze(t, "void main() { int[] xs = new int[true]; }")
		assert.Contains(t, diags, "{int} is required")
	})

	t.Run("new string size must be an int", func(t *testing.T) {
		_, _, diags := analyze(t, `void main() { string s = new string('a'); }`)
		assert.Contains(t, diags, "{int} is required")
	})

	t.Run("base type bits are exclusive after checking", func(t *testing.T) {
		root, a, _ := analyze(t,
			`void main() { int i; i = 1 + 2; bool b; b = i < 3; string s = "x"; char c; c = s[0]; }`)
		assert.Zero(t, a.Errors())
		base := attrPrimitive | bit(AttrString) | bit(AttrStruct) | bit(AttrVoid) | bit(AttrNull)
		var walk func(n *Node)
		walk = func(n *Node) {
			attr := n.attributes()
			if attr.HasAny(attrAnyType) {
				count := 0
				for _, b := range []Attr{AttrVoid, AttrBool, AttrChar, AttrInt, AttrNull, AttrString, AttrStruct} {
					if attr.Has(b) {
						count++
					}
				}
				assert.Equal(t, 1, count, "node %s %q has base bits {%s}", n.Kind, n.Lexeme, attr&AttrSet(base))
			}
			for _, c := range n.Children {
				walk(c)
			}
		}
		walk(root)
	})
}
