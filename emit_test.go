package oc

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lower compiles src and returns the OIL text; the source must be
// semantically clean.
func lower(t *testing.T, src string) string {
	t.Helper()
	root, a, diags := analyze(t, src)
	require.Zero(t, a.Errors(), "unexpected diagnostics:\n%s", diags)
	return Emit(root)
}

func TestEmit(t *testing.T) {
	t.Run("header comes first", func(t *testing.T) {
		oil := lower(t, "int x;")
		assert.True(t, strings.HasPrefix(oil,
			"#define __OCLIB_C__\n#include \"oclib.oh\"\n"))
	})

	t.Run("globals are declared mangled and initialized in ocmain", func(t *testing.T) {
		oil := lower(t, "int x = 5;\nvoid main() { x = x + 2; }")
		assert.Contains(t, oil, "int __x;\n")
		assert.Contains(t, oil, "void __ocmain (void)\n{\n")
		assert.Contains(t, oil, "        __x = 5;\n")
		assert.Contains(t, oil, "        int i1 = __x + 2;\n")
		assert.Contains(t, oil, "        __x = i1;\n")
	})

	t.Run("function definition", func(t *testing.T) {
		oil := lower(t, "int add(int a, int b) { return a + b; }")
		assert.Contains(t, oil,
			"int __add(\n        int _1_a,\n        int _1_b)\n{\n")
		assert.Contains(t, oil, "        int i1 = _1_a + _1_b;\n")
		assert.Contains(t, oil, "        return i1;\n")
	})

	t.Run("parameterless function takes void", func(t *testing.T) {
		oil := lower(t, "void f() { return; }")
		assert.Contains(t, oil, "void __f(void)\n{\n        return;\n}\n")
	})

	t.Run("prototype then definition", func(t *testing.T) {
		oil := lower(t, "int f(int a);\nint f(int a) { return a; }")
		// The prototype consumes block 1; the definition's parameters
		// land in block 2.
		assert.Contains(t, oil, "int __f(\n        int _2_a)\n{\n")
		assert.Contains(t, oil, "        return _2_a;\n")
	})

	t.Run("call sites use mangled callee names", func(t *testing.T) {
		oil := lower(t,
			"int add(int a, int b) { return a + b; }\nvoid main() { int r; r = add(1, 2); }")
		assert.Contains(t, oil, "int i2 = __add (1, 2);\n")
		assert.Contains(t, oil, "        _2_r = i2;\n")
	})

	t.Run("void calls allocate no register", func(t *testing.T) {
		oil := lower(t, "void p() { }\nvoid main() { p(); }")
		assert.Contains(t, oil, "        __p ();\n")
	})

	t.Run("struct declaration and field access", func(t *testing.T) {
		oil := lower(t, "struct S { int x; }\nvoid main() { S s = new S(); s.x = 5; }")
		assert.Contains(t, oil, "struct s_S {\n        int f_S_x;\n};\n")
		assert.Contains(t, oil,
			"        struct s_S* p1 = xcalloc (1, sizeof (struct s_S));\n")
		assert.Contains(t, oil, "        struct s_S* _1_s = p1;\n")
		assert.Contains(t, oil, "        int* a2 = &_1_s->f_S_x;\n")
		assert.Contains(t, oil, "        (*a2) = 5;\n")
	})

	t.Run("string literals become numbered globals", func(t *testing.T) {
		oil := lower(t, `void main() { string s = "hi"; string u = "there"; }`)
		assert.Contains(t, oil, "char* s1 = \"hi\";\n")
		assert.Contains(t, oil, "char* s2 = \"there\";\n")
		assert.Contains(t, oil, "        char* _1_s = s1;\n")
		assert.Contains(t, oil, "        char* _1_u = s2;\n")
	})

	t.Run("array allocation and indexing", func(t *testing.T) {
		oil := lower(t, "void main() { int[] xs = new int[3]; xs[0] = 9; }")
		assert.Contains(t, oil, "        int* p1 = xcalloc (3, sizeof (int));\n")
		assert.Contains(t, oil, "        int* _1_xs = p1;\n")
		assert.Contains(t, oil, "        int* a2 = &_1_xs[0];\n")
		assert.Contains(t, oil, "        (*a2) = 9;\n")
	})

	t.Run("new string", func(t *testing.T) {
		oil := lower(t, "void main() { string s = new string(5); }")
		assert.Contains(t, oil, "        char* p1 = xcalloc (5, sizeof (char));\n")
	})

	t.Run("while loop labels", func(t *testing.T) {
		src := "void main() { int i; i = 0; while (i < 10) { i = i + 1; } }"
		col := strings.Index(src, "while") + 1
		oil := lower(t, src)
		assert.Contains(t, oil, fmt.Sprintf("while_1_1_%d:;\n", col))
		assert.Contains(t, oil, "        char b1 = _1_i < 10;\n")
		assert.Contains(t, oil, fmt.Sprintf("        if (!b1) goto break_1_1_%d;\n", col))
		assert.Contains(t, oil, fmt.Sprintf("        goto while_1_1_%d;\n", col))
		assert.Contains(t, oil, fmt.Sprintf("break_1_1_%d:;\n", col))
	})

	t.Run("if lowers to a fi label", func(t *testing.T) {
		src := "void main() { if (true) { int x; x = 1; } }"
		col := strings.Index(src, "if") + 1
		oil := lower(t, src)
		assert.Contains(t, oil, fmt.Sprintf("        if (!1) goto fi_1_1_%d;\n", col))
		assert.Contains(t, oil, fmt.Sprintf("fi_1_1_%d:;\n", col))
	})

	t.Run("ifelse lowers to else and fi labels", func(t *testing.T) {
		src := "void main() { int x; if (false) x = 1; else x = 2; }"
		col := strings.Index(src, "if") + 1
		oil := lower(t, src)
		assert.Contains(t, oil, fmt.Sprintf("        if (!0) goto else_1_1_%d;\n", col))
		assert.Contains(t, oil, fmt.Sprintf("        goto fi_1_1_%d;\n", col))
		assert.Contains(t, oil, fmt.Sprintf("else_1_1_%d:;\n", col))
		assert.Contains(t, oil, fmt.Sprintf("fi_1_1_%d:;\n", col))
	})

	t.Run("while retests its condition each iteration", func(t *testing.T) {
		src := "void main() { while (true) { } }"
		col := strings.Index(src, "while") + 1
		oil := lower(t, src)
		head := strings.Index(oil, fmt.Sprintf("while_1_1_%d:;", col))
		test := strings.Index(oil, "if (!1) goto")
		require.GreaterOrEqual(t, head, 0)
		require.GreaterOrEqual(t, test, 0)
		// The condition is emitted after the loop head label so every
		// iteration re-evaluates it.
		assert.Greater(t, test, head)
	})

	t.Run("unary operators", func(t *testing.T) {
		oil := lower(t,
			"void main() { int i; i = -3; i = ord 'a'; char c; c = chr 65; bool b; b = !true; }")
		assert.Contains(t, oil, "        int i1 = -3;\n")
		assert.Contains(t, oil, "        int i2 = (int)'a';\n")
		assert.Contains(t, oil, "        char c3 = (char)65;\n")
		assert.Contains(t, oil, "        char b4 = !1;\n")
	})

	t.Run("integer literals drop leading zeros", func(t *testing.T) {
		oil := lower(t, "void main() { int x; x = 007; x = 0; }")
		assert.Contains(t, oil, "        _1_x = 7;\n")
		assert.Contains(t, oil, "        _1_x = 0;\n")
	})

	t.Run("booleans and null collapse to char ints", func(t *testing.T) {
		oil := lower(t, "struct S { int x; }\nvoid main() { bool b = true; bool c = false; S s = null; }")
		assert.Contains(t, oil, "        char _1_b = 1;\n")
		assert.Contains(t, oil, "        char _1_c = 0;\n")
		assert.Contains(t, oil, "        struct s_S* _1_s = 0;\n")
	})

	t.Run("bare local declarations are printed", func(t *testing.T) {
		oil := lower(t, "void main() { int i; i = 3; }")
		assert.Contains(t, oil, "        int _1_i;\n")
		assert.Contains(t, oil, "        _1_i = 3;\n")
	})

	t.Run("mangling is deterministic across uses", func(t *testing.T) {
		oil := lower(t, "int x;\nvoid f() { x = 1; }\nvoid main() { x = 2; f(); }")
		assert.Equal(t, 3, strings.Count(oil, "__x"), oil)
		assert.Equal(t, 2, strings.Count(oil, "__f"))
	})

	t.Run("struct array elements", func(t *testing.T) {
		oil := lower(t,
			"struct S { int x; }\nvoid main() { S[] ss = new S[4]; S s = ss[0]; }")
		assert.Contains(t, oil,
			"        struct s_S** p1 = xcalloc (4, sizeof (struct s_S*));\n")
		assert.Contains(t, oil, "        struct s_S** a2 = &_1_ss[0];\n")
		assert.Contains(t, oil, "        struct s_S* _1_s = (*a2);\n")
	})

	t.Run("string index", func(t *testing.T) {
		oil := lower(t, `void main() { string s = "abc"; char c; c = s[1]; }`)
		assert.Contains(t, oil, "        char* a1 = &_1_s[1];\n")
		assert.Contains(t, oil, "        _1_c = (*a1);\n")
	})
}
