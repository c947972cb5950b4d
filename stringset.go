package oc

import (
	"fmt"
	"io"
)

// StringSet interns every lexeme seen by the lexer.  Interning keeps
// one copy per distinct string and remembers first-encounter order
// for the .str listing.
type StringSet struct {
	index map[string]int
	order []string
}

func NewStringSet() *StringSet {
	return &StringSet{index: map[string]int{}}
}

// Intern adds s to the set if new and returns the interned copy.
func (ss *StringSet) Intern(s string) string {
	if n, ok := ss.index[s]; ok {
		return ss.order[n]
	}
	ss.index[s] = len(ss.order)
	ss.order = append(ss.order, s)
	return s
}

func (ss *StringSet) Len() int { return len(ss.order) }

// Dump writes one line per interned string in encounter order.
func (ss *StringSet) Dump(w io.Writer) {
	for i, s := range ss.order {
		fmt.Fprintf(w, "%4d  %s\n", i+1, s)
	}
}
