package lang

import (
	"strings"
	"unicode"

	"github.com/mzacho/musicdsl/core"
)

// Lexer tokenizes MusicDSL source text. Whitespace is insignificant
// outside tokens (spec.md §4.1); the BOM stripping and UTF-8 handling
// required at the source-file boundary (spec.md §6) happens before the
// Lexer ever sees the text — see the musicdsl package's ExecuteProgram
// entry point.
type Lexer struct {
	src  []rune
	pos  int
	line int
	col  int
}

func NewLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), line: 1, col: 1}
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(offset int) rune {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *Lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) position() core.Position {
	return core.Position{Line: l.line, Col: l.col}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

// Next returns the next token, or a *core.SyntaxError if the text at the
// current position matches no token class.
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespace()
	pos := l.position()
	if l.pos >= len(l.src) {
		return Token{Kind: EOF, Pos: pos}, nil
	}

	r := l.peek()

	switch {
	case r == '(':
		l.advance()
		return Token{Kind: LParen, Text: "(", Pos: pos}, nil
	case r == ')':
		l.advance()
		return Token{Kind: RParen, Text: ")", Pos: pos}, nil
	case r == '{':
		l.advance()
		return Token{Kind: LBrace, Text: "{", Pos: pos}, nil
	case r == '}':
		l.advance()
		return Token{Kind: RBrace, Text: "}", Pos: pos}, nil
	case r == ';':
		l.advance()
		return Token{Kind: Semi, Text: ";", Pos: pos}, nil
	case r == ',':
		l.advance()
		return Token{Kind: Comma, Text: ",", Pos: pos}, nil
	case r == '=':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return Token{Kind: EqEq, Text: "==", Pos: pos}, nil
		}
		return Token{Kind: Equals, Text: "=", Pos: pos}, nil
	case r == '<':
		l.advance()
		if l.peek() == '-' {
			l.advance()
			return Token{Kind: Arrow, Text: "<-", Pos: pos}, nil
		}
		return Token{Kind: Lt, Text: "<", Pos: pos}, nil
	case r == '>':
		l.advance()
		return Token{Kind: Gt, Text: ">", Pos: pos}, nil
	case r == '+':
		l.advance()
		if l.peek() == '+' {
			l.advance()
			return Token{Kind: PlusPlus, Text: "++", Pos: pos}, nil
		}
		return Token{Kind: Plus, Text: "+", Pos: pos}, nil
	case r == '-':
		l.advance()
		return Token{Kind: Minus, Text: "-", Pos: pos}, nil
	case r == '*':
		l.advance()
		return Token{Kind: Star, Text: "*", Pos: pos}, nil
	case r == '/':
		l.advance()
		return Token{Kind: Slash, Text: "/", Pos: pos}, nil
	case r == '%':
		l.advance()
		return Token{Kind: Percent, Text: "%", Pos: pos}, nil
	case r == '|':
		l.advance()
		return Token{Kind: Pipe, Text: "|", Pos: pos}, nil
	case r == '!':
		l.advance()
		return Token{Kind: Bang, Text: "!", Pos: pos}, nil
	case unicode.IsDigit(r):
		return l.lexNumber(pos), nil
	case unicode.IsUpper(r):
		return l.lexAtom(pos, NoteAtom), nil
	case unicode.IsLower(r):
		return l.lexAtom(pos, Ident), nil
	default:
		return Token{}, core.NewSyntaxError(pos, "unexpected character %q", r)
	}
}

func (l *Lexer) lexNumber(pos core.Position) Token {
	var b strings.Builder
	for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
		b.WriteRune(l.advance())
	}
	if l.peek() == '.' && unicode.IsDigit(l.peekAt(1)) {
		b.WriteRune(l.advance())
		for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
			b.WriteRune(l.advance())
		}
	}
	return Token{Kind: Number, Text: b.String(), Pos: pos}
}

func (l *Lexer) lexAtom(pos core.Position, kind Kind) Token {
	var b strings.Builder
	for l.pos < len(l.src) && isIdentRune(l.peek()) {
		b.WriteRune(l.advance())
	}
	text := b.String()
	return Token{Kind: kind, Text: text, Pos: pos}
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// Tokenize drains the Lexer into a slice, appending a trailing EOF token.
func Tokenize(src string) ([]Token, error) {
	l := NewLexer(src)
	var out []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.Kind == EOF {
			return out, nil
		}
	}
}
