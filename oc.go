// Package oc is the front end of the oc compiler: it lexes and parses
// a preprocessed source file, runs symbol resolution and attribute
// typechecking over the tree, and lowers the result to OIL, a
// restricted C dialect compiled against the oclib.oh runtime header.
package oc

import (
	"io"
	"os"
	"strings"
)

// CompileOptions configures one compilation.
type CompileOptions struct {
	// Defines is forwarded to the preprocessor as -D flags.
	Defines []string

	// TraceLexer and TraceParser stream debug traces to Diagnostics.
	TraceLexer  bool
	TraceParser bool

	// Diagnostics receives semantic diagnostics and traces.
	// Defaults to os.Stderr.
	Diagnostics io.Writer
}

// Artifacts bundles everything one compilation produces.  Semantic
// errors are counted, not returned as a Go error: the tree is still
// dumped, and OIL degrades to the bare runtime header.
type Artifacts struct {
	Tokens  string // the .tok listing
	Strings string // the .str listing
	AST     string // the .ast listing
	Symbols string // the symbol listing streamed during semantics
	OIL     string // the .oil program
	Errors  int    // semantic error count
}

// Compile preprocesses and compiles the file at path.
func Compile(path string, opt CompileOptions) (*Artifacts, error) {
	src, err := preprocess(path, opt.Defines)
	if err != nil {
		return nil, err
	}
	return CompileSource(path, src, opt)
}

// CompileSource compiles src directly, bypassing the preprocessor.
// name seeds the filename table; cpp line markers inside src still
// apply.
func CompileSource(name, src string, opt CompileOptions) (*Artifacts, error) {
	diag := opt.Diagnostics
	if diag == nil {
		diag = os.Stderr
	}
	var lexTrace, parseTrace io.Writer
	if opt.TraceLexer {
		lexTrace = diag
	}
	if opt.TraceParser {
		parseTrace = diag
	}

	set := NewStringSet()
	lexer := NewLexer(name, src, set, lexTrace)
	toks, err := lexer.All()
	if err != nil {
		return nil, err
	}

	root, err := Parse(toks, parseTrace)
	if err != nil {
		return nil, err
	}

	analysis := NewAnalysis(diag)
	errors := analysis.Run(root)

	art := &Artifacts{
		Symbols: analysis.SymbolListing(),
		AST:     DumpASTString(root),
		Errors:  errors,
	}

	var tokw, strw strings.Builder
	DumpTokens(&tokw, toks)
	set.Dump(&strw)
	art.Tokens = tokw.String()
	art.Strings = strw.String()

	// Emission never runs on a failing translation unit.
	if errors == 0 {
		art.OIL = Emit(root)
	} else {
		art.OIL = oilHeader
	}
	return art, nil
}
