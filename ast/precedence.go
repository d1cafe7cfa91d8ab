package ast

import "github.com/mzacho/musicdsl/core"

// precedence implements spec.md §4.1's required table, highest to
// lowest: unary (handled by the parser itself, never appears in a
// chain); `* / %`; `+ -`; `! ++ |`; `== < >`; `and or`. Ties break
// left-associatively.
func precedence(op string) int {
	switch op {
	case "*", "/", "%":
		return 4
	case "+", "-":
		return 3
	case "!", "++", "|":
		return 2
	case "==", "<", ">":
		return 1
	case "and", "or":
		return 0
	default:
		return -1
	}
}

type opTok struct {
	op  string
	pos core.Position
}

// resolveChain re-parses the grammar's flat `expr OP mono OP mono ...`
// production into a properly precedence-aware tree, via the standard
// shunting-yard reduction: operators of equal precedence combine
// left-to-right (ties break left-associatively), higher-precedence
// operators bind tighter regardless of source order. This is the
// "precedence climb" spec.md §4.1 calls out as preferred over literal
// left-folding.
func resolveChain(operands []Expr, ops []opTok) Expr {
	if len(operands) == 1 {
		return operands[0]
	}

	var outputs []Expr
	var opStack []opTok

	pop := func() {
		top := opStack[len(opStack)-1]
		opStack = opStack[:len(opStack)-1]
		rhs := outputs[len(outputs)-1]
		lhs := outputs[len(outputs)-2]
		outputs = outputs[:len(outputs)-2]
		outputs = append(outputs, &Apply{base: base{Pos: top.pos}, Op: top.op, Lhs: lhs, Rhs: rhs})
	}

	outputs = append(outputs, operands[0])
	for i, op := range ops {
		for len(opStack) > 0 && precedence(opStack[len(opStack)-1].op) >= precedence(op.op) {
			pop()
		}
		opStack = append(opStack, op)
		outputs = append(outputs, operands[i+1])
	}
	for len(opStack) > 0 {
		pop()
	}
	return outputs[0]
}
