package oc

import (
	"fmt"
	"io"
)

// Analysis carries all state of the semantic pass for one compilation
// unit: the scope stack, the block-number stack and counter, the
// typeid table, the streamed symbol listing, and the diagnostic
// count.  One Analysis is created per unit and discarded after it.
type Analysis struct {
	scopes    []*SymbolTable // index 0 is the global scope; frames are lazily created
	blockNums []int
	nextBlock int

	typeids *SymbolTable

	currentFunction  string
	currentStructure string

	printDepth int
	symw       *outputWriter

	diag   io.Writer
	errors int
}

// NewAnalysis builds an analysis context whose diagnostics stream to
// diag.  The scope stack starts with an empty global frame, block 0.
func NewAnalysis(diag io.Writer) *Analysis {
	return &Analysis{
		scopes:    []*SymbolTable{NewSymbolTable()},
		blockNums: []int{0},
		nextBlock: 1,
		typeids:   NewSymbolTable(),
		symw:      newOutputWriter("   "),
		diag:      diag,
	}
}

// Errors returns the semantic-error count so far.
func (a *Analysis) Errors() int { return a.errors }

// SymbolListing returns the symbol dump accumulated during Run.
func (a *Analysis) SymbolListing() string { return a.symw.String() }

// errorf prints one diagnostic line and bumps the error counter.
// Checking continues after every diagnostic.
func (a *Analysis) errorf(pos Pos, format string, args ...interface{}) {
	fmt.Fprintf(a.diag, "%s: %s\n", pos, fmt.Sprintf(format, args...))
	a.errors++
}

func (a *Analysis) depth() int { return len(a.scopes) - 1 }

func (a *Analysis) enterBlock() {
	a.scopes = append(a.scopes, nil)
	a.blockNums = append(a.blockNums, a.nextBlock)
	a.nextBlock++
}

func (a *Analysis) leaveBlock() {
	a.scopes = a.scopes[:len(a.scopes)-1]
	a.blockNums = a.blockNums[:len(a.blockNums)-1]
}

func (a *Analysis) currentBlock() int {
	return a.blockNums[len(a.blockNums)-1]
}

func (a *Analysis) globalTable() *SymbolTable {
	return a.scopes[0]
}

// topTable returns the innermost scope's table, creating it on first
// use.
func (a *Analysis) topTable() *SymbolTable {
	if a.scopes[len(a.scopes)-1] == nil {
		a.scopes[len(a.scopes)-1] = NewSymbolTable()
	}
	return a.scopes[len(a.scopes)-1]
}

// lookup walks the scope stack most-nested first.
func (a *Analysis) lookup(name string) *Symbol {
	for i := len(a.scopes) - 1; i >= 0; i-- {
		if sym := a.scopes[i].Lookup(name); sym != nil {
			return sym
		}
	}
	return nil
}

// Typeid returns the struct entry for name, or nil.  Struct types
// live in their own namespace: the same lexeme may name a struct and
// a variable without collision.
func (a *Analysis) Typeid(name string) *Symbol {
	return a.typeids.Lookup(name)
}
