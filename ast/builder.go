package ast

import (
	"strconv"

	"github.com/mzacho/musicdsl/core"
	"github.com/mzacho/musicdsl/lang"
	"github.com/shopspring/decimal"
)

var pitchClass = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

var accidentalShift = map[string]int{
	"bb": -2, "b": -1, "n": 0, "d": 1, "dd": 2,
}

// Build folds a lang.PNode parse tree — the output of lang.Parser — into
// a *CommandSeq, applying operator precedence (ast/precedence.go) and
// the MIDI pitch-encoding + range check from spec.md §4.2.
func Build(tree *lang.PNode) (*CommandSeq, error) {
	return buildCommandSeq(tree)
}

func buildCommandSeq(n *lang.PNode) (*CommandSeq, error) {
	if n.Kind != "command_seq" {
		return nil, core.NewSyntaxError(n.Pos, "internal: expected command_seq, got %s", n.Kind)
	}
	head, err := buildCommand(n.Children[0])
	if err != nil {
		return nil, err
	}
	seq := &CommandSeq{base: base{Pos: n.Pos}, Head: head}
	if len(n.Children) > 1 {
		tail, err := buildCommandSeq(n.Children[1])
		if err != nil {
			return nil, err
		}
		seq.Tail = tail
	}
	return seq, nil
}

func buildCommand(n *lang.PNode) (Command, error) {
	switch n.Kind {
	case "vardecl":
		e, err := buildExpr(n.Children[0])
		if err != nil {
			return nil, err
		}
		return &VarDecl{base: base{Pos: n.Pos}, Name: n.Text(), Expr: e}, nil

	case "assign":
		e, err := buildExpr(n.Children[0])
		if err != nil {
			return nil, err
		}
		return &Assign{base: base{Pos: n.Pos}, Name: n.Text(), Expr: e}, nil

	case "print":
		e, err := buildExpr(n.Children[0])
		if err != nil {
			return nil, err
		}
		return &Print{base: base{Pos: n.Pos}, Expr: e}, nil

	case "ifelse":
		cond, err := buildExpr(n.Children[0])
		if err != nil {
			return nil, err
		}
		thenSeq, err := buildCommandSeq(n.Children[1])
		if err != nil {
			return nil, err
		}
		elseSeq, err := buildCommandSeq(n.Children[2])
		if err != nil {
			return nil, err
		}
		return &If{base: base{Pos: n.Pos}, Cond: cond, ThenSeq: thenSeq, ElseSeq: elseSeq}, nil

	case "while":
		cond, err := buildExpr(n.Children[0])
		if err != nil {
			return nil, err
		}
		body, err := buildCommandSeq(n.Children[1])
		if err != nil {
			return nil, err
		}
		return &While{base: base{Pos: n.Pos}, Cond: cond, Body: body}, nil

	case "fundecl":
		params := paramNames(n.Children[0])
		body, err := buildExpr(n.Children[1])
		if err != nil {
			return nil, err
		}
		return &FunDecl{base: base{Pos: n.Pos}, Name: n.Text(), Params: params, Body: body}, nil

	case "procdecl":
		params := paramNames(n.Children[0])
		ret, err := buildExpr(n.Children[1])
		if err != nil {
			return nil, err
		}
		var body *CommandSeq
		if len(n.Children) > 2 {
			body, err = buildCommandSeq(n.Children[2])
			if err != nil {
				return nil, err
			}
		}
		return &ProcDecl{base: base{Pos: n.Pos}, Name: n.Text(), Params: params, Body: body, Return: ret}, nil

	default:
		return nil, core.NewSyntaxError(n.Pos, "internal: unknown command node %s", n.Kind)
	}
}

func paramNames(n *lang.PNode) []string {
	names := make([]string, len(n.Children))
	for i, c := range n.Children {
		names[i] = c.Text()
	}
	return names
}

func buildExpr(n *lang.PNode) (Expr, error) {
	switch n.Kind {
	case "expr_chain":
		return buildChain(n)
	case "let":
		bound, err := buildExpr(n.Children[0])
		if err != nil {
			return nil, err
		}
		body, err := buildExpr(n.Children[1])
		if err != nil {
			return nil, err
		}
		return &Let{base: base{Pos: n.Pos}, Name: n.Text(), Bound: bound, Body: body}, nil
	case "unary":
		arg, err := buildExpr(n.Children[0])
		if err != nil {
			return nil, err
		}
		return &Unary{base: base{Pos: n.Pos}, Op: n.Text(), Arg: arg}, nil
	case "bool":
		return &Bool{base: base{Pos: n.Pos}, Value: n.Text() == "true"}, nil
	case "var":
		return &Var{base: base{Pos: n.Pos}, Name: n.Text()}, nil
	case "call":
		args := n.Children[0]
		exprs := make([]Expr, len(args.Children))
		for i, a := range args.Children {
			e, err := buildExpr(a)
			if err != nil {
				return nil, err
			}
			exprs[i] = e
		}
		return &Call{base: base{Pos: n.Pos}, Name: n.Text(), Args: exprs}, nil
	case "number":
		v, err := strconv.Atoi(n.Text())
		if err != nil {
			return nil, core.NewSyntaxError(n.Pos, "invalid integer literal %q", n.Text())
		}
		return &Number{base: base{Pos: n.Pos}, Value: v}, nil
	case "note":
		return buildNote(n)
	case "rest":
		return buildRest(n)
	default:
		return nil, core.NewSyntaxError(n.Pos, "internal: unknown expression node %s", n.Kind)
	}
}

func buildChain(n *lang.PNode) (Expr, error) {
	var operands []Expr
	var ops []opTok
	for i, c := range n.Children {
		if i%2 == 0 {
			e, err := buildExpr(c)
			if err != nil {
				return nil, err
			}
			operands = append(operands, e)
		} else {
			ops = append(ops, opTok{op: c.Text(), pos: c.Pos})
		}
	}
	return resolveChain(operands, ops), nil
}

func durationOf(n *lang.PNode) (decimal.Decimal, error) {
	if len(n.Children) == 0 {
		return decimal.NewFromInt(1), nil
	}
	durTok := n.Children[0]
	d, err := decimal.NewFromString(durTok.Text())
	if err != nil {
		return decimal.Decimal{}, core.NewSyntaxError(durTok.Pos, "invalid duration %q", durTok.Text())
	}
	return d, nil
}

func buildRest(n *lang.PNode) (Expr, error) {
	dur, err := durationOf(n)
	if err != nil {
		return nil, err
	}
	return &Rest{base: base{Pos: n.Pos}, Dur: dur}, nil
}

func buildNote(n *lang.PNode) (Expr, error) {
	text := n.Text()
	if len(text) < 3 {
		return nil, core.NewSyntaxError(n.Pos, "malformed note literal %q", text)
	}
	pitch := text[0]
	if _, ok := pitchClass[pitch]; !ok {
		return nil, core.NewSyntaxError(n.Pos, "unknown pitch letter %q", string(pitch))
	}
	octaveDigit := text[len(text)-1]
	if octaveDigit < '0' || octaveDigit > '9' {
		return nil, core.NewSyntaxError(n.Pos, "malformed note literal %q: expected a single-digit octave", text)
	}
	octave := int(octaveDigit - '0')
	accidental := text[1 : len(text)-1]
	shift, ok := accidentalShift[accidental]
	if !ok {
		return nil, core.NewSyntaxError(n.Pos, "unknown accidental %q in %q", accidental, text)
	}
	midi := 12*(octave+1) + pitchClass[pitch] + shift
	if midi < 0 || midi > 127 {
		return nil, core.NewRangeError(n.Pos, "note", midi)
	}
	dur, err := durationOf(n)
	if err != nil {
		return nil, err
	}
	return &Note{
		base:       base{Pos: n.Pos},
		Pitch:      pitch,
		Accidental: accidental,
		Octave:     octave,
		MIDI:       midi,
		Dur:        dur,
	}, nil
}
