// Package ast defines MusicDSL's typed abstract syntax — the two
// disjoint node families from spec.md §4.2 — and the Builder that folds
// a lang.PNode parse tree into it, applying operator precedence and MIDI
// pitch-range validation along the way.
package ast

import (
	"github.com/mzacho/musicdsl/core"
	"github.com/shopspring/decimal"
)

// Expr is any expression AST node.
type Expr interface {
	Position() core.Position
	exprNode()
}

// Command is any command AST node.
type Command interface {
	Position() core.Position
	cmdNode()
}

type base struct{ Pos core.Position }

func (b base) Position() core.Position { return b.Pos }

// ---- expression nodes ----

type Number struct {
	base
	Value int
}

type Bool struct {
	base
	Value bool
}

// Note is a pitched note literal: PITCH ACCIDENTAL OCTAVE ("/" DUR)?. MIDI
// holds the pitch already encoded and range-checked by Build (spec.md
// §4.2's pitch-encoding formula).
type Note struct {
	base
	Pitch      byte // 'C'..'B'
	Accidental string
	Octave     int
	MIDI       int
	Dur        decimal.Decimal
}

type Rest struct {
	base
	Dur decimal.Decimal
}

type Var struct {
	base
	Name string
}

// Apply is a binary operator application, already precedence-resolved.
type Apply struct {
	base
	Op       string
	Lhs, Rhs Expr
}

// Unary is a prefix operator application (not, head, tail, is_empty,
// pitch, initialize).
type Unary struct {
	base
	Op  string
	Arg Expr
}

type Let struct {
	base
	Name  string
	Bound Expr
	Body  Expr
}

// Call represents both `funapp` and `procapp` from spec.md's grammar —
// the two productions are syntactically identical (IDENT "(" args? ")")
// and can only be told apart once the callee name resolves to a
// core.Closure of a known Kind, which only the evaluator can do. The
// evaluator treats a Call against a ClosureFunction as a FunApp and
// against a ClosureProcedure as a ProcApp, per spec.md §4.6.
type Call struct {
	base
	Name string
	Args []Expr
}

func (Number) exprNode() {}
func (Bool) exprNode()   {}
func (Note) exprNode()   {}
func (Rest) exprNode()   {}
func (Var) exprNode()    {}
func (Apply) exprNode()  {}
func (Unary) exprNode()  {}
func (Let) exprNode()    {}
func (Call) exprNode()   {}

// ---- command nodes ----

type VarDecl struct {
	base
	Name string
	Expr Expr
}

type Assign struct {
	base
	Name string
	Expr Expr
}

type Print struct {
	base
	Expr Expr
}

type If struct {
	base
	Cond     Expr
	ThenSeq  *CommandSeq
	ElseSeq  *CommandSeq
}

type While struct {
	base
	Cond Expr
	Body *CommandSeq
}

type FunDecl struct {
	base
	Name   string
	Params []string
	Body   Expr
}

type ProcDecl struct {
	base
	Name   string
	Params []string
	Body   *CommandSeq // may be nil: a procedure may have only `return expr`
	Return Expr
}

// CommandSeq canonicalizes "every command, even a single one" into a
// list node with a possibly-nil tail, per spec.md §4.2.
type CommandSeq struct {
	base
	Head Command
	Tail *CommandSeq
}

func (VarDecl) cmdNode()    {}
func (Assign) cmdNode()     {}
func (Print) cmdNode()      {}
func (If) cmdNode()         {}
func (While) cmdNode()      {}
func (FunDecl) cmdNode()    {}
func (ProcDecl) cmdNode()   {}
func (CommandSeq) cmdNode() {}
