package lang

import (
	"github.com/mzacho/musicdsl/core"
)

// unaryKeywords is the UNOP alphabet from spec.md §4.1. "not" negates a
// bool; the rest operate on a MusicResult.
var unaryKeywords = map[string]bool{
	"not": true, "head": true, "tail": true, "is_empty": true,
	"pitch": true, "initialize": true,
}

// isChainOperator reports whether t is a token (or reserved word) the flat
// `bin` rule's OP may be, independent of precedence — precedence is applied later by
// ast.Build, per spec.md §4.1's note that "a precedence climb is
// preferred" over the grammar's literal left-folding.
func isChainOperator(t Token) bool {
	switch t.Kind {
	case Plus, Minus, Star, Slash, Percent, EqEq, Lt, Gt, PlusPlus, Pipe, Bang:
		return true
	case Ident:
		return t.Text == "and" || t.Text == "or"
	}
	return false
}

// Parser is a recursive-descent parser over the token stream a Lexer
// produces. It builds a concrete PNode parse tree; no partial tree is
// ever returned once an error is detected (spec.md §4.1).
type Parser struct {
	toks []Token
	pos  int
}

func NewParser(src string) (*Parser, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	return &Parser{toks: toks}, nil
}

func (p *Parser) peek() Token  { return p.toks[p.pos] }
func (p *Parser) peekAt(n int) Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}
func (p *Parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(k Kind) (Token, error) {
	t := p.peek()
	if t.Kind != k {
		return Token{}, core.NewSyntaxError(t.Pos, "expected %s, found %q", k, t.Text)
	}
	return p.advance(), nil
}

func (p *Parser) expectKeyword(word string) (Token, error) {
	t := p.peek()
	if t.Kind != Ident || t.Text != word {
		return Token{}, core.NewSyntaxError(t.Pos, "expected %q, found %q", word, t.Text)
	}
	return p.advance(), nil
}

func (p *Parser) atKeyword(word string) bool {
	t := p.peek()
	return t.Kind == Ident && t.Text == word
}

// ParseProgram parses `start := command_seq` and requires the whole
// token stream to be consumed.
func (p *Parser) ParseProgram() (*PNode, error) {
	seq, err := p.parseCommandSeq()
	if err != nil {
		return nil, err
	}
	if p.peek().Kind != EOF {
		return nil, core.NewSyntaxError(p.peek().Pos, "unexpected trailing input %q", p.peek().Text)
	}
	return seq, nil
}

// command_seq := command (";" command_seq)?
func (p *Parser) parseCommandSeq() (*PNode, error) {
	pos := p.peek().Pos
	cmd, err := p.parseCommand()
	if err != nil {
		return nil, err
	}
	node := &PNode{Kind: "command_seq", Pos: pos, Children: []*PNode{cmd}}
	if p.peek().Kind == Semi {
		p.advance()
		tail, err := p.parseCommandSeq()
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, tail)
	}
	return node, nil
}

func (p *Parser) parseCommand() (*PNode, error) {
	t := p.peek()
	switch {
	case t.Kind == Ident && t.Text == "var":
		return p.parseVarDecl()
	case t.Kind == Ident && t.Text == "print":
		return p.parsePrint()
	case t.Kind == Ident && t.Text == "if":
		return p.parseIfElse()
	case t.Kind == Ident && t.Text == "while":
		return p.parseWhile()
	case t.Kind == Ident && t.Text == "function":
		return p.parseFunDecl()
	case t.Kind == Ident && t.Text == "procedure":
		return p.parseProcDecl()
	case t.Kind == Ident && !IsKeyword(t.Text):
		return p.parseAssign()
	default:
		return nil, core.NewSyntaxError(t.Pos, "expected a command, found %q", t.Text)
	}
}

// vardecl := "var" IDENT "=" expr
func (p *Parser) parseVarDecl() (*PNode, error) {
	kw, _ := p.expectKeyword("var")
	name, err := p.expect(Ident)
	if err != nil {
		return nil, err
	}
	if IsKeyword(name.Text) {
		return nil, core.NewSyntaxError(name.Pos, "%q is reserved and cannot be a variable name", name.Text)
	}
	if _, err := p.expect(Equals); err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &PNode{Kind: "vardecl", Tok: name, Pos: kw.Pos, Children: []*PNode{e}}, nil
}

// assign := IDENT "<-" expr
func (p *Parser) parseAssign() (*PNode, error) {
	name := p.advance()
	if _, err := p.expect(Arrow); err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &PNode{Kind: "assign", Tok: name, Pos: name.Pos, Children: []*PNode{e}}, nil
}

// print := "print" expr
func (p *Parser) parsePrint() (*PNode, error) {
	kw, _ := p.expectKeyword("print")
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &PNode{Kind: "print", Pos: kw.Pos, Children: []*PNode{e}}, nil
}

// ifelse := "if" expr "then" "{" command_seq "}" "else" "{" command_seq "}"
func (p *Parser) parseIfElse() (*PNode, error) {
	kw, _ := p.expectKeyword("if")
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("then"); err != nil {
		return nil, err
	}
	thenSeq, err := p.parseBracedSeq()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("else"); err != nil {
		return nil, err
	}
	elseSeq, err := p.parseBracedSeq()
	if err != nil {
		return nil, err
	}
	return &PNode{Kind: "ifelse", Pos: kw.Pos, Children: []*PNode{cond, thenSeq, elseSeq}}, nil
}

// while := "while" expr "do" "{" command_seq "}"
func (p *Parser) parseWhile() (*PNode, error) {
	kw, _ := p.expectKeyword("while")
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("do"); err != nil {
		return nil, err
	}
	body, err := p.parseBracedSeq()
	if err != nil {
		return nil, err
	}
	return &PNode{Kind: "while", Pos: kw.Pos, Children: []*PNode{cond, body}}, nil
}

func (p *Parser) parseBracedSeq() (*PNode, error) {
	if _, err := p.expect(LBrace); err != nil {
		return nil, err
	}
	seq, err := p.parseCommandSeq()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RBrace); err != nil {
		return nil, err
	}
	return seq, nil
}

// fundecl := "function" IDENT "(" params? ")" "=" expr
func (p *Parser) parseFunDecl() (*PNode, error) {
	kw, _ := p.expectKeyword("function")
	name, err := p.expect(Ident)
	if err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(Equals); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	node := &PNode{Kind: "fundecl", Tok: name, Pos: kw.Pos, Children: []*PNode{params, body}}
	return node, nil
}

// procdecl := "procedure" IDENT "(" params? ")" "=" "{" command_seq "return" expr "}"
func (p *Parser) parseProcDecl() (*PNode, error) {
	kw, _ := p.expectKeyword("procedure")
	name, err := p.expect(Ident)
	if err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(Equals); err != nil {
		return nil, err
	}
	if _, err := p.expect(LBrace); err != nil {
		return nil, err
	}
	var body *PNode
	if !p.atKeyword("return") {
		body, err = p.parseCommandSeq()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expectKeyword("return"); err != nil {
		return nil, err
	}
	ret, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RBrace); err != nil {
		return nil, err
	}
	children := []*PNode{params, ret}
	if body != nil {
		children = append(children, body)
	}
	return &PNode{Kind: "procdecl", Tok: name, Pos: kw.Pos, Children: children}, nil
}

// params := IDENT ("," IDENT)*
func (p *Parser) parseParamList() (*PNode, error) {
	if _, err := p.expect(LParen); err != nil {
		return nil, err
	}
	node := &PNode{Kind: "params", Pos: p.peek().Pos}
	if p.peek().Kind != RParen {
		for {
			name, err := p.expect(Ident)
			if err != nil {
				return nil, err
			}
			if IsKeyword(name.Text) {
				return nil, core.NewSyntaxError(name.Pos, "%q is reserved and cannot be a parameter name", name.Text)
			}
			for _, existing := range node.Children {
				if existing.Tok.Text == name.Text {
					return nil, core.NewSemanticError(name.Pos, "duplicate parameter %q", name.Text)
				}
			}
			node.Children = append(node.Children, &PNode{Kind: "param", Tok: name, Pos: name.Pos})
			if p.peek().Kind != Comma {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(RParen); err != nil {
		return nil, err
	}
	return node, nil
}

// args := expr ("," expr)*
func (p *Parser) parseArgList() (*PNode, error) {
	if _, err := p.expect(LParen); err != nil {
		return nil, err
	}
	node := &PNode{Kind: "args", Pos: p.peek().Pos}
	if p.peek().Kind != RParen {
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, e)
			if p.peek().Kind != Comma {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(RParen); err != nil {
		return nil, err
	}
	return node, nil
}

// expr := bin | mono | let | funapp | procapp
//
// funapp/procapp are syntactically identical (IDENT "(" args? ")"); the
// parser produces one "call" node for both and leaves the function-vs-
// procedure distinction to the evaluator, which resolves it from the
// callee's Closure.Kind (spec.md §4.6).
func (p *Parser) parseExpr() (*PNode, error) {
	if p.atKeyword("let") {
		return p.parseLet()
	}
	first, err := p.parseMono()
	if err != nil {
		return nil, err
	}
	chain := []*PNode{first}
	for isChainOperator(p.peek()) {
		opTok := p.advance()
		next, err := p.parseMono()
		if err != nil {
			return nil, err
		}
		chain = append(chain, &PNode{Kind: "op", Tok: opTok, Pos: opTok.Pos}, next)
	}
	if len(chain) == 1 {
		return chain[0], nil
	}
	return &PNode{Kind: "expr_chain", Pos: first.Pos, Children: chain}, nil
}

// let := "let" IDENT "=" expr "in" expr
func (p *Parser) parseLet() (*PNode, error) {
	kw, _ := p.expectKeyword("let")
	name, err := p.expect(Ident)
	if err != nil {
		return nil, err
	}
	if IsKeyword(name.Text) {
		return nil, core.NewSyntaxError(name.Pos, "%q is reserved and cannot be a variable name", name.Text)
	}
	if _, err := p.expect(Equals); err != nil {
		return nil, err
	}
	bound, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("in"); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &PNode{Kind: "let", Tok: name, Pos: kw.Pos, Children: []*PNode{bound, body}}, nil
}

// mono := ground | "(" expr ")" | IDENT | UNOP mono
func (p *Parser) parseMono() (*PNode, error) {
	t := p.peek()

	switch {
	case t.Kind == LParen:
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RParen); err != nil {
			return nil, err
		}
		return e, nil

	case t.Kind == Ident && unaryKeywords[t.Text]:
		p.advance()
		arg, err := p.parseMono()
		if err != nil {
			return nil, err
		}
		return &PNode{Kind: "unary", Tok: t, Pos: t.Pos, Children: []*PNode{arg}}, nil

	case t.Kind == Ident && t.Text == "true":
		p.advance()
		return &PNode{Kind: "bool", Tok: t, Pos: t.Pos}, nil
	case t.Kind == Ident && t.Text == "false":
		p.advance()
		return &PNode{Kind: "bool", Tok: t, Pos: t.Pos}, nil

	case t.Kind == Ident && !IsKeyword(t.Text):
		p.advance()
		if p.peek().Kind == LParen {
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			return &PNode{Kind: "call", Tok: t, Pos: t.Pos, Children: []*PNode{args}}, nil
		}
		return &PNode{Kind: "var", Tok: t, Pos: t.Pos}, nil

	case t.Kind == NoteAtom:
		return p.parseNoteOrRest()

	case t.Kind == Number:
		p.advance()
		return &PNode{Kind: "number", Tok: t, Pos: t.Pos}, nil

	default:
		return nil, core.NewSyntaxError(t.Pos, "expected an expression, found %q", t.Text)
	}
}

func (p *Parser) parseNoteOrRest() (*PNode, error) {
	atom := p.advance()
	node := &PNode{Kind: "note", Tok: atom, Pos: atom.Pos}
	if atom.Text == "R" {
		node.Kind = "rest"
	}
	if p.peek().Kind == Slash {
		p.advance()
		dur, err := p.expect(Number)
		if err != nil {
			return nil, err
		}
		node.Children = []*PNode{{Kind: "dur", Tok: dur, Pos: dur.Pos}}
	}
	return node, nil
}
