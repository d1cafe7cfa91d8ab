// Package lang implements the lexical and grammatical front end of
// MusicDSL (spec.md §4.1): a hand-written scanner and a recursive-descent
// parser that together turn source text into a concrete parse tree. The
// ast package folds that parse tree into the typed AST.
package lang

import "github.com/mzacho/musicdsl/core"

// Kind enumerates the token classes the lexer produces.
type Kind int

const (
	EOF Kind = iota
	Ident        // keywords and lowercase variable names; parser disambiguates
	NoteAtom     // an uppercase-leading pitch/rest run, e.g. "Cn4" or "R"
	Number       // [0-9]+(\.[0-9]+)?
	LParen       // (
	RParen       // )
	LBrace       // {
	RBrace       // }
	Semi         // ;
	Comma        // ,
	Equals       // =
	Arrow        // <-
	Plus         // +
	Minus        // -
	Star         // *
	Slash        // /
	Percent      // %
	EqEq         // ==
	Lt           // <
	Gt           // >
	PlusPlus     // ++
	Pipe         // |
	Bang         // !
)

var kindNames = map[Kind]string{
	EOF: "EOF", Ident: "identifier", NoteAtom: "note", Number: "number",
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}", Semi: ";", Comma: ",",
	Equals: "=", Arrow: "<-", Plus: "+", Minus: "-", Star: "*", Slash: "/",
	Percent: "%", EqEq: "==", Lt: "<", Gt: ">", PlusPlus: "++", Pipe: "|", Bang: "!",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "?"
}

// Token is one lexeme together with its source position.
type Token struct {
	Kind Kind
	Text string
	Pos  core.Position
}

// keywords reserved by the grammar; an Ident token with this text is
// never a variable reference.
var keywords = map[string]bool{
	"var": true, "print": true, "if": true, "then": true, "else": true,
	"while": true, "do": true, "function": true, "procedure": true,
	"let": true, "in": true, "return": true,
	"and": true, "or": true, "not": true,
	"head": true, "tail": true, "is_empty": true, "pitch": true, "initialize": true,
	"true": true, "false": true,
}

func IsKeyword(text string) bool { return keywords[text] }
