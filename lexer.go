package oc

import (
	"fmt"
	"io"
	"strings"
)

const eof = -1

// Token is one lexeme with its source position.
type Token struct {
	Kind   Kind
	Pos    Pos
	Lexeme string
}

// Lexer scans preprocessed source into tokens.  It tracks the
// file/line/column of the cursor, honors cpp line markers of the form
// `# <line> "<file>"`, and interns every lexeme it produces.
type Lexer struct {
	input  []rune
	cursor int
	line   int
	col    int
	file   int

	filenames []string
	fileIndex map[string]int

	set   *StringSet
	trace io.Writer
}

// NewLexer builds a lexer over input.  name is registered as file
// index 1; cpp line markers may register further files.
func NewLexer(name, input string, set *StringSet, trace io.Writer) *Lexer {
	l := &Lexer{
		input:     []rune(input),
		line:      1,
		col:       1,
		filenames: []string{""},
		fileIndex: map[string]int{},
		set:       set,
		trace:     trace,
	}
	l.file = l.registerFile(name)
	return l
}

func (l *Lexer) registerFile(name string) int {
	if n, ok := l.fileIndex[name]; ok {
		return n
	}
	n := len(l.filenames)
	l.filenames = append(l.filenames, name)
	l.fileIndex[name] = n
	return n
}

// Filenames returns the filename table; index 0 is reserved.
func (l *Lexer) Filenames() []string { return l.filenames }

func (l *Lexer) peek() rune {
	if l.cursor >= len(l.input) {
		return eof
	}
	return l.input[l.cursor]
}

func (l *Lexer) peekAt(k int) rune {
	if l.cursor+k >= len(l.input) {
		return eof
	}
	return l.input[l.cursor+k]
}

func (l *Lexer) advance() rune {
	c := l.peek()
	if c == eof {
		return eof
	}
	l.cursor++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *Lexer) pos() Pos {
	return Pos{File: l.file, Line: l.line, Col: l.col}
}

func isIdentStart(c rune) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c rune) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c rune) bool { return c >= '0' && c <= '9' }

func isSpace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// skip consumes whitespace, comments, and cpp line markers.
func (l *Lexer) skip() error {
	for {
		c := l.peek()
		switch {
		case c == eof:
			return nil
		case isSpace(c):
			l.advance()
		case c == '#' && l.col == 1:
			if err := l.lineMarker(); err != nil {
				return err
			}
		case c == '/' && l.peekAt(1) == '/':
			for l.peek() != '\n' && l.peek() != eof {
				l.advance()
			}
		case c == '/' && l.peekAt(1) == '*':
			start := l.pos()
			l.advance()
			l.advance()
			for {
				if l.peek() == eof {
					return errorAt(start, "unterminated comment")
				}
				if l.peek() == '*' && l.peekAt(1) == '/' {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}
		default:
			return nil
		}
	}
}

// lineMarker consumes a `# <line> "<file>"` directive and resets the
// line counter and current file accordingly.
func (l *Lexer) lineMarker() error {
	markerPos := l.pos()
	l.advance() // '#'
	for l.peek() == ' ' || l.peek() == '\t' {
		l.advance()
	}
	if !isDigit(l.peek()) {
		// Not a line marker (e.g. "#pragma"); drop the line.
		for l.peek() != '\n' && l.peek() != eof {
			l.advance()
		}
		return nil
	}
	line := 0
	for isDigit(l.peek()) {
		line = line*10 + int(l.advance()-'0')
	}
	for l.peek() == ' ' || l.peek() == '\t' {
		l.advance()
	}
	name := ""
	if l.peek() == '"' {
		l.advance()
		var b strings.Builder
		for l.peek() != '"' {
			if l.peek() == eof || l.peek() == '\n' {
				return errorAt(markerPos, "malformed line marker")
			}
			b.WriteRune(l.advance())
		}
		l.advance()
		name = b.String()
	}
	for l.peek() != '\n' && l.peek() != eof {
		l.advance()
	}
	if l.peek() == '\n' {
		l.advance()
	}
	l.line = line
	l.col = 1
	if name != "" {
		l.file = l.registerFile(name)
	}
	return nil
}

// Next scans one token.  At end of input it returns an EOF token.
func (l *Lexer) Next() (Token, error) {
	if err := l.skip(); err != nil {
		return Token{}, err
	}
	start := l.pos()
	c := l.peek()
	if c == eof {
		return Token{Kind: KindEOF, Pos: start}, nil
	}

	var tok Token
	var err error
	switch {
	case isIdentStart(c):
		tok = l.scanIdent(start)
	case isDigit(c):
		tok = l.scanNumber(start)
	case c == '\'':
		tok, err = l.scanCharCon(start)
	case c == '"':
		tok, err = l.scanStringCon(start)
	default:
		tok, err = l.scanOperator(start)
	}
	if err != nil {
		return Token{}, err
	}
	tok.Lexeme = l.set.Intern(tok.Lexeme)
	if l.trace != nil {
		fmt.Fprintf(l.trace, "lex: %s %s (%s)\n", tok.Pos, tok.Kind, tok.Lexeme)
	}
	return tok, nil
}

func (l *Lexer) scanIdent(start Pos) Token {
	var b strings.Builder
	for isIdentPart(l.peek()) {
		b.WriteRune(l.advance())
	}
	lex := b.String()
	kind := KindIdent
	if k, ok := keywords[lex]; ok {
		kind = k
	}
	return Token{Kind: kind, Pos: start, Lexeme: lex}
}

func (l *Lexer) scanNumber(start Pos) Token {
	var b strings.Builder
	for isDigit(l.peek()) {
		b.WriteRune(l.advance())
	}
	return Token{Kind: KindIntCon, Pos: start, Lexeme: b.String()}
}

func (l *Lexer) scanEscape(b *strings.Builder, start Pos) error {
	b.WriteRune(l.advance()) // backslash
	switch l.peek() {
	case 'n', 't', '0', '\\', '\'', '"':
		b.WriteRune(l.advance())
		return nil
	}
	return errorAt(start, "invalid escape sequence")
}

// scanCharCon scans 'x' or '\x'.  The lexeme keeps its quotes: the
// emitter passes character constants through verbatim.
func (l *Lexer) scanCharCon(start Pos) (Token, error) {
	var b strings.Builder
	b.WriteRune(l.advance()) // opening quote
	switch l.peek() {
	case eof, '\n', '\'':
		return Token{}, errorAt(start, "malformed character constant")
	case '\\':
		if err := l.scanEscape(&b, start); err != nil {
			return Token{}, err
		}
	default:
		b.WriteRune(l.advance())
	}
	if l.peek() != '\'' {
		return Token{}, errorAt(start, "unterminated character constant")
	}
	b.WriteRune(l.advance())
	return Token{Kind: KindCharCon, Pos: start, Lexeme: b.String()}, nil
}

func (l *Lexer) scanStringCon(start Pos) (Token, error) {
	var b strings.Builder
	b.WriteRune(l.advance()) // opening quote
	for {
		switch l.peek() {
		case eof, '\n':
			return Token{}, errorAt(start, "unterminated string constant")
		case '\\':
			if err := l.scanEscape(&b, start); err != nil {
				return Token{}, err
			}
		case '"':
			b.WriteRune(l.advance())
			return Token{Kind: KindStringCon, Pos: start, Lexeme: b.String()}, nil
		default:
			b.WriteRune(l.advance())
		}
	}
}

func (l *Lexer) scanOperator(start Pos) (Token, error) {
	two := map[string]Kind{
		"==": KindEq,
		"!=": KindNe,
		"<=": KindLe,
		">=": KindGe,
		"[]": KindArray,
	}
	if l.cursor+1 < len(l.input) {
		pair := string(l.input[l.cursor : l.cursor+2])
		if k, ok := two[pair]; ok {
			l.advance()
			l.advance()
			return Token{Kind: k, Pos: start, Lexeme: pair}, nil
		}
	}
	one := map[rune]Kind{
		'=': KindAssign,
		'<': KindLt,
		'>': KindGt,
		'+': KindAdd,
		'-': KindSub,
		'*': KindMul,
		'/': KindDiv,
		'%': KindMod,
		'!': KindNot,
		'.': KindDot,
		'(': KindLParen,
		')': KindRParen,
		'{': KindLBrace,
		'}': KindRBrace,
		'[': KindLBracket,
		']': KindRBracket,
		';': KindSemi,
		',': KindComma,
	}
	if k, ok := one[l.peek()]; ok {
		c := l.advance()
		return Token{Kind: k, Pos: start, Lexeme: string(c)}, nil
	}
	return Token{}, errorAt(start, "invalid character '%c'", l.peek())
}

// All scans the whole input, returning the token stream terminated by
// an EOF token.
func (l *Lexer) All() ([]Token, error) {
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == KindEOF {
			return toks, nil
		}
	}
}

// DumpTokens writes the .tok listing: one line per token with its
// position, kind code, kind name, and lexeme.
func DumpTokens(w io.Writer, toks []Token) {
	for _, t := range toks {
		if t.Kind == KindEOF {
			continue
		}
		fmt.Fprintf(w, "%4d %4d.%03d %4d  %-12s (%s)\n",
			t.Pos.File, t.Pos.Line, t.Pos.Col, int(t.Kind), t.Kind, t.Lexeme)
	}
}
