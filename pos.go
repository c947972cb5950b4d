package oc

import "fmt"

// Pos identifies a point in the preprocessed source.  File is an
// index into the compilation unit's filename table (0 is reserved,
// the main source file gets 1), Line is 1-based, and Col is the
// 1-based column of the token within its line.
type Pos struct {
	File int
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d.%d.%d", p.File, p.Line, p.Col)
}
