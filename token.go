package oc

import "fmt"

// Kind enumerates every grammar symbol: tokens produced by the lexer
// plus the internal tags the parser synthesizes (root, function,
// prototype, call, index, and friends).  The same enum drives the
// lexer, the parser, the semantic dispatchers, and the emitter.
type Kind int

const (
	// Internal tags.
	KindRoot Kind = iota
	KindFunction
	KindPrototype
	KindParamList
	KindBlock
	KindVardecl
	KindIfElse
	KindReturnVoid
	KindCall
	KindIndex
	KindNewArray
	KindNewString
	KindPos // unary '+'
	KindNeg // unary '-'

	// Keywords.
	KindVoid
	KindBool
	KindChar
	KindInt
	KindString
	KindStruct
	KindWhile
	KindIf
	KindElse
	KindReturn
	KindNew
	KindNull
	KindTrue
	KindFalse
	KindOrd
	KindChr

	// Identifier roles.  The lexer only produces KindIdent; the
	// parser rewrites identifiers into declarators, field names,
	// and type names according to their syntactic position.
	KindIdent
	KindDeclID
	KindField
	KindTypeID

	// Constants.
	KindIntCon
	KindCharCon
	KindStringCon

	// Operators and punctuation.
	KindArray // the "[]" array-type token
	KindAssign
	KindEq
	KindNe
	KindLt
	KindLe
	KindGt
	KindGe
	KindAdd
	KindSub
	KindMul
	KindDiv
	KindMod
	KindNot
	KindDot
	KindLParen
	KindRParen
	KindLBrace
	KindRBrace
	KindLBracket
	KindRBracket
	KindSemi
	KindComma
	KindEOF

	kindCount
)

var kindNames = [kindCount]string{
	KindRoot:       "ROOT",
	KindFunction:   "FUNCTION",
	KindPrototype:  "PROTOTYPE",
	KindParamList:  "PARAMLIST",
	KindBlock:      "BLOCK",
	KindVardecl:    "VARDECL",
	KindIfElse:     "IFELSE",
	KindReturnVoid: "RETURNVOID",
	KindCall:       "CALL",
	KindIndex:      "INDEX",
	KindNewArray:   "NEWARRAY",
	KindNewString:  "NEWSTRING",
	KindPos:        "POS",
	KindNeg:        "NEG",
	KindVoid:       "VOID",
	KindBool:       "BOOL",
	KindChar:       "CHAR",
	KindInt:        "INT",
	KindString:     "STRING",
	KindStruct:     "STRUCT",
	KindWhile:      "WHILE",
	KindIf:         "IF",
	KindElse:       "ELSE",
	KindReturn:     "RETURN",
	KindNew:        "NEW",
	KindNull:       "NULL",
	KindTrue:       "TRUE",
	KindFalse:      "FALSE",
	KindOrd:        "ORD",
	KindChr:        "CHR",
	KindIdent:      "IDENT",
	KindDeclID:     "DECLID",
	KindField:      "FIELD",
	KindTypeID:     "TYPEID",
	KindIntCon:     "INTCON",
	KindCharCon:    "CHARCON",
	KindStringCon:  "STRINGCON",
	KindArray:      "ARRAY",
	KindAssign:     "'='",
	KindEq:         "EQ",
	KindNe:         "NE",
	KindLt:         "'<'",
	KindLe:         "LE",
	KindGt:         "'>'",
	KindGe:         "GE",
	KindAdd:        "'+'",
	KindSub:        "'-'",
	KindMul:        "'*'",
	KindDiv:        "'/'",
	KindMod:        "'%'",
	KindNot:        "'!'",
	KindDot:        "'.'",
	KindLParen:     "'('",
	KindRParen:     "')'",
	KindLBrace:     "'{'",
	KindRBrace:     "'}'",
	KindLBracket:   "'['",
	KindRBracket:   "']'",
	KindSemi:       "';'",
	KindComma:      "','",
	KindEOF:        "EOF",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// isBasetype reports whether k is a type keyword that may start a
// declaration spine.  TYPEID is syntactic and handled separately.
func (k Kind) isBasetype() bool {
	switch k {
	case KindVoid, KindBool, KindChar, KindInt, KindString:
		return true
	}
	return false
}

// isTypeSpine reports whether k can be the root of a declaration's
// type subtree.
func (k Kind) isTypeSpine() bool {
	switch k {
	case KindVoid, KindBool, KindChar, KindInt, KindString, KindTypeID, KindArray:
		return true
	}
	return false
}

var keywords = map[string]Kind{
	"void":   KindVoid,
	"bool":   KindBool,
	"char":   KindChar,
	"int":    KindInt,
	"string": KindString,
	"struct": KindStruct,
	"while":  KindWhile,
	"if":     KindIf,
	"else":   KindElse,
	"return": KindReturn,
	"new":    KindNew,
	"null":   KindNull,
	"true":   KindTrue,
	"false":  KindFalse,
	"ord":    KindOrd,
	"chr":    KindChr,
}
