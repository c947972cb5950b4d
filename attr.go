package oc

import "strings"

// Attr is one bit of the attribute vocabulary.  The enum order is
// fixed: listings print attributes in this order.
type Attr int

const (
	AttrVoid Attr = iota
	AttrBool
	AttrChar
	AttrInt
	AttrNull
	AttrString
	AttrStruct
	AttrArray
	AttrFunction
	AttrVariable
	AttrField
	AttrTypeID
	AttrParam
	AttrLval
	AttrConst
	AttrVreg
	AttrVaddr

	attrCount
)

var attrNames = [attrCount]string{
	AttrVoid:     "void",
	AttrBool:     "bool",
	AttrChar:     "char",
	AttrInt:      "int",
	AttrNull:     "null",
	AttrString:   "string",
	AttrStruct:   "struct",
	AttrArray:    "array",
	AttrFunction: "function",
	AttrVariable: "variable",
	AttrField:    "field",
	AttrTypeID:   "typeid",
	AttrParam:    "param",
	AttrLval:     "lval",
	AttrConst:    "const",
	AttrVreg:     "vreg",
	AttrVaddr:    "vaddr",
}

func (a Attr) String() string { return attrNames[a] }

// AttrSet is a bitset over the attribute vocabulary.  Base-type bits
// are mutually exclusive per expression; role and storage bits
// compose freely.
type AttrSet uint32

func bit(a Attr) AttrSet { return 1 << uint(a) }

func (s AttrSet) Has(a Attr) bool           { return s&bit(a) != 0 }
func (s AttrSet) HasAny(m AttrSet) bool     { return s&m != 0 }
func (s AttrSet) Empty() bool               { return s == 0 }
func (s *AttrSet) Add(a Attr)               { *s |= bit(a) }
func (s *AttrSet) Merge(other AttrSet)      { *s |= other }
func (s AttrSet) Without(m AttrSet) AttrSet { return s &^ m }

// The masks of the compatibility relation.
var (
	attrPrimitive = bit(AttrInt) | bit(AttrChar) | bit(AttrBool)
	attrReference = bit(AttrString) | bit(AttrArray) | bit(AttrStruct) | bit(AttrNull)
	attrAnyType   = attrPrimitive | attrReference
	attrBaseType  = attrPrimitive | bit(AttrStruct) | bit(AttrString)
)

// String renders the set in enum order, space separated.
func (s AttrSet) String() string {
	var b strings.Builder
	for a := Attr(0); a < attrCount; a++ {
		if !s.Has(a) {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(attrNames[a])
	}
	return b.String()
}

// typedString renders the set like String but follows the struct
// attribute with its quoted typeid name, the way listings print
// struct-typed entries.
func (s AttrSet) typedString(typeName string) string {
	var b strings.Builder
	for a := Attr(0); a < attrCount; a++ {
		if !s.Has(a) {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(attrNames[a])
		if a == AttrStruct && typeName != "" {
			b.WriteString(" \"")
			b.WriteString(typeName)
			b.WriteByte('"')
		}
	}
	return b.String()
}
