// Package eval is the evaluator component (spec.md §4.6): it walks the
// typed ast tree, threading the persistent core.Env and core.Store, and
// dispatches binary/unary operators through the table below.
package eval

import (
	"github.com/mzacho/musicdsl/core"
)

// Kind tags an operator's expected operand shape for the dynamic type
// check spec.md §4.4 requires before dispatch.
type Kind int

const (
	KindInt Kind = iota
	KindBool
	KindMusic
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindMusic:
		return "MusicResult"
	default:
		return "?"
	}
}

func kindOf(v core.EVal) (Kind, bool) {
	switch v.(type) {
	case core.IntVal:
		return KindInt, true
	case core.BoolVal:
		return KindBool, true
	case core.MusicVal:
		return KindMusic, true
	default:
		return 0, false
	}
}

// Operator is one row of the initial global environment's built-in table
// (spec.md §4.4): an arity, the expected input Kinds, and the dispatch
// function. This mirrors the teacher's EvalFunctions map-of-metadata
// idiom in dsl/eval_funcs.go, trimmed to what the evaluator needs to
// perform dynamic type checking and dispatch rather than CLI
// autocompletion.
type Operator struct {
	Name        string
	Arity       int
	Inputs      []Kind
	Description string
	Apply       func(args []core.EVal, pos core.Position) (core.EVal, error)
}

// Operators is the table spec.md §4.4 describes, keyed by the token or
// keyword the grammar uses for it. `!=` is deliberately absent: it
// appears in the table of spec.md §4.4 but not in the OP alphabet of the
// grammar in §4.1, and the grammar is authoritative (see DESIGN.md).
var Operators = buildOperatorTable()

func buildOperatorTable() map[string]Operator {
	ops := map[string]Operator{}

	arith := func(name string, fn func(a, b int) (int, error)) Operator {
		return Operator{
			Name:   name,
			Arity:  2,
			Inputs: []Kind{KindInt, KindInt},
			Apply: func(args []core.EVal, pos core.Position) (core.EVal, error) {
				a := int(args[0].(core.IntVal))
				b := int(args[1].(core.IntVal))
				r, err := fn(a, b)
				if err != nil {
					return nil, err
				}
				return core.IntVal(r), nil
			},
		}
	}

	ops["+"] = arith("+", func(a, b int) (int, error) { return a + b, nil })
	ops["-"] = arith("-", func(a, b int) (int, error) { return a - b, nil })
	ops["*"] = arith("*", func(a, b int) (int, error) { return a * b, nil })
	ops["/"] = Operator{
		Name: "/", Arity: 2, Inputs: []Kind{KindInt, KindInt},
		Description: "integer division, truncating toward zero",
		Apply: func(args []core.EVal, pos core.Position) (core.EVal, error) {
			a, b := int(args[0].(core.IntVal)), int(args[1].(core.IntVal))
			if b == 0 {
				return nil, core.NewArithError(pos, "division")
			}
			return core.IntVal(a / b), nil
		},
	}
	ops["%"] = Operator{
		Name: "%", Arity: 2, Inputs: []Kind{KindInt, KindInt},
		Description: "integer remainder, sign of the dividend",
		Apply: func(args []core.EVal, pos core.Position) (core.EVal, error) {
			a, b := int(args[0].(core.IntVal)), int(args[1].(core.IntVal))
			if b == 0 {
				return nil, core.NewArithError(pos, "modulo")
			}
			return core.IntVal(a % b), nil
		},
	}

	ops["<"] = Operator{
		Name: "<", Arity: 2, Inputs: []Kind{KindInt, KindInt},
		Apply: func(args []core.EVal, pos core.Position) (core.EVal, error) {
			return core.BoolVal(int(args[0].(core.IntVal)) < int(args[1].(core.IntVal))), nil
		},
	}
	ops[">"] = Operator{
		Name: ">", Arity: 2, Inputs: []Kind{KindInt, KindInt},
		Apply: func(args []core.EVal, pos core.Position) (core.EVal, error) {
			return core.BoolVal(int(args[0].(core.IntVal)) > int(args[1].(core.IntVal))), nil
		},
	}

	// `==` structurally compares (int,int) or (bool,bool); the dynamic
	// check below is looser than Inputs since either pairing is legal, so
	// dispatch's generic Inputs check is bypassed for it (see
	// evaluator.go's special-case for "==").
	ops["=="] = Operator{
		Name:        "==",
		Arity:       2,
		Description: "structural equality over (int,int) or (bool,bool)",
		Apply: func(args []core.EVal, pos core.Position) (core.EVal, error) {
			switch a := args[0].(type) {
			case core.IntVal:
				b, ok := args[1].(core.IntVal)
				if !ok {
					return nil, core.NewTypeError(pos, "== expects matching operand kinds, found int and %s", describe(args[1]))
				}
				return core.BoolVal(a == b), nil
			case core.BoolVal:
				b, ok := args[1].(core.BoolVal)
				if !ok {
					return nil, core.NewTypeError(pos, "== expects matching operand kinds, found bool and %s", describe(args[1]))
				}
				return core.BoolVal(a == b), nil
			default:
				return nil, core.NewTypeError(pos, "== does not support operands of kind %s", describe(args[0]))
			}
		},
	}

	boolOp := func(name string, fn func(a, b bool) bool) Operator {
		return Operator{
			Name: name, Arity: 2, Inputs: []Kind{KindBool, KindBool},
			Apply: func(args []core.EVal, pos core.Position) (core.EVal, error) {
				a := bool(args[0].(core.BoolVal))
				b := bool(args[1].(core.BoolVal))
				return core.BoolVal(fn(a, b)), nil
			},
		}
	}
	ops["and"] = boolOp("and", func(a, b bool) bool { return a && b })
	ops["or"] = boolOp("or", func(a, b bool) bool { return a || b })

	ops["not"] = Operator{
		Name: "not", Arity: 1, Inputs: []Kind{KindBool},
		Apply: func(args []core.EVal, pos core.Position) (core.EVal, error) {
			return core.BoolVal(!bool(args[0].(core.BoolVal))), nil
		},
	}

	ops["++"] = Operator{
		Name: "++", Arity: 2, Inputs: []Kind{KindMusic, KindMusic},
		Description: "temporal concatenation: B is shifted by span(A)",
		Apply: func(args []core.EVal, pos core.Position) (core.EVal, error) {
			a := args[0].(core.MusicVal).Result
			b := args[1].(core.MusicVal).Result
			return core.MusicVal{Result: core.Concat(a, b)}, nil
		},
	}
	ops["|"] = Operator{
		Name: "|", Arity: 2, Inputs: []Kind{KindMusic, KindMusic},
		Description: "simultaneous union: same-start events merge",
		Apply: func(args []core.EVal, pos core.Position) (core.EVal, error) {
			a := args[0].(core.MusicVal).Result
			b := args[1].(core.MusicVal).Result
			return core.MusicVal{Result: core.Union(a, b)}, nil
		},
	}
	ops["!"] = Operator{
		Name: "!", Arity: 2, Inputs: []Kind{KindMusic, KindInt},
		Description: "transpose every note by the given number of semitones",
		Apply: func(args []core.EVal, pos core.Position) (core.EVal, error) {
			a := args[0].(core.MusicVal).Result
			k := int(args[1].(core.IntVal))
			r, err := core.Transpose(a, k, pos)
			if err != nil {
				return nil, err
			}
			return core.MusicVal{Result: r}, nil
		},
	}

	ops["head"] = Operator{
		Name: "head", Arity: 1, Inputs: []Kind{KindMusic},
		Apply: func(args []core.EVal, pos core.Position) (core.EVal, error) {
			r := args[0].(core.MusicVal).Result
			h, ok := core.Head(r)
			if !ok {
				return nil, core.NewTypeError(pos, "head of an empty MusicResult")
			}
			return core.MusicVal{Result: h}, nil
		},
	}
	ops["tail"] = Operator{
		Name: "tail", Arity: 1, Inputs: []Kind{KindMusic},
		Apply: func(args []core.EVal, pos core.Position) (core.EVal, error) {
			r := args[0].(core.MusicVal).Result
			return core.MusicVal{Result: core.Tail(r)}, nil
		},
	}
	ops["is_empty"] = Operator{
		Name: "is_empty", Arity: 1, Inputs: []Kind{KindMusic},
		Apply: func(args []core.EVal, pos core.Position) (core.EVal, error) {
			r := args[0].(core.MusicVal).Result
			return core.BoolVal(r.IsEmpty()), nil
		},
	}
	ops["pitch"] = Operator{
		Name: "pitch", Arity: 1, Inputs: []Kind{KindMusic},
		Description: "MIDI pitch of the first event; chords tie-break to the minimum",
		Apply: func(args []core.EVal, pos core.Position) (core.EVal, error) {
			r := args[0].(core.MusicVal).Result
			p, ok := core.PitchOf(r)
			if !ok {
				return nil, core.NewTypeError(pos, "pitch of an empty MusicResult")
			}
			return core.IntVal(p), nil
		},
	}
	ops["initialize"] = Operator{
		Name: "initialize", Arity: 1, Inputs: []Kind{KindMusic},
		Apply: func(args []core.EVal, pos core.Position) (core.EVal, error) {
			r := args[0].(core.MusicVal).Result
			return core.MusicVal{Result: core.Initialize(r)}, nil
		},
	}

	return ops
}

func describe(v core.EVal) string {
	k, ok := kindOf(v)
	if !ok {
		return "?"
	}
	return k.String()
}
