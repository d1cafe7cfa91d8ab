package lang

import "github.com/mzacho/musicdsl/core"

// PNode is a node of the concrete parse tree the Parser produces: one
// node per grammar production, kept deliberately untyped (a Kind tag plus
// children) so the ast package's Builder owns the decision of what typed
// AST shape each production folds into — including the precedence
// reshaping of the flat `bin` chains the grammar in spec.md §4.1
// describes.
type PNode struct {
	Kind     string
	Tok      Token
	Children []*PNode
	Pos      core.Position
}

// Text is a convenience accessor for Tok.Text.
func (n *PNode) Text() string { return n.Tok.Text }
