package eval

import (
	"fmt"

	"github.com/mzacho/musicdsl/ast"
	"github.com/mzacho/musicdsl/core"
	"github.com/shopspring/decimal"
)

// PrintSink is where a `print` command's result goes (spec.md §4.6/§6):
// a MusicResult is forwarded to the visualization boundary, anything else
// is written to the diagnostic stream as text. control.Relay is the
// concrete implementation (it writes text through the notify package);
// tests can supply a trivial recording one.
type PrintSink interface {
	Music(r core.MusicResult)
	Text(s string)
}

// Evaluator walks an ast tree, threading env/store per spec.md §4.6.
// It is not safe for concurrent use — the language is single-threaded by
// design (spec.md §5).
type Evaluator struct {
	Sink PrintSink
	Last *core.MusicResult // the last MusicResult handed to Print, if any
}

func NewEvaluator(sink PrintSink) *Evaluator {
	return &Evaluator{Sink: sink}
}

// GlobalEnv is the initial environment a program starts evaluation in.
// Operators are dispatched by the Apply/Unary AST nodes directly against
// the Operators table, not through name lookup, so the global scope
// starts empty; only user fundecl/procdecl/vardecl commands populate it.
func GlobalEnv() *core.Env {
	return core.NewEnv()
}

// Run executes an entire program's CommandSeq against a fresh store,
// returning the last Print'd MusicResult (or Empty, if the program never
// printed one).
func (ev *Evaluator) Run(seq *ast.CommandSeq) (core.MusicResult, error) {
	_, _, err := ev.ExecSeq(seq, GlobalEnv(), core.NewStore())
	if err != nil {
		return core.Empty(), err
	}
	if ev.Last == nil {
		return core.Empty(), nil
	}
	return *ev.Last, nil
}

// ExecSeq threads (env, store) through every command in seq, in order.
func (ev *Evaluator) ExecSeq(seq *ast.CommandSeq, env *core.Env, store *core.Store) (*core.Env, *core.Store, error) {
	env2, store2, err := ev.ExecCommand(seq.Head, env, store)
	if err != nil {
		return nil, nil, err
	}
	if seq.Tail == nil {
		return env2, store2, nil
	}
	return ev.ExecSeq(seq.Tail, env2, store2)
}

// ExecCommand executes a single command. For If/While, bindings made
// inside the nested block are scoped to it: the caller's env is returned
// unchanged (only the store, which is global, threads outward). This is
// also what makes While's loop-scope reclamation (spec.md §4.6) sound:
// since a body iteration's own VarDecls never escape into the env the
// next iteration (or the code after the loop) sees, no escape analysis
// is needed — truncating the store back to the pre-iteration mark after
// every iteration is always safe.
func (ev *Evaluator) ExecCommand(cmd ast.Command, env *core.Env, store *core.Store) (*core.Env, *core.Store, error) {
	switch c := cmd.(type) {
	case *ast.VarDecl:
		val, store2, err := ev.Eval(c.Expr, env, store)
		if err != nil {
			return nil, nil, err
		}
		loc, store3 := store2.Allocate(val)
		return env.Bind(c.Name, loc), store3, nil

	case *ast.Assign:
		dval, ok := env.Lookup(c.Name)
		if !ok {
			return nil, nil, core.NewSemanticError(c.Pos, "assignment to unbound name %q", c.Name)
		}
		loc, ok := dval.(core.Location)
		if !ok {
			return nil, nil, core.NewSemanticError(c.Pos, "%q is not assignable", c.Name)
		}
		val, store2, err := ev.Eval(c.Expr, env, store)
		if err != nil {
			return nil, nil, err
		}
		return env, store2.Update(loc, val), nil

	case *ast.Print:
		val, store2, err := ev.Eval(c.Expr, env, store)
		if err != nil {
			return nil, nil, err
		}
		if m, ok := val.(core.MusicVal); ok {
			result := m.Result
			ev.Last = &result
			ev.Sink.Music(result)
		} else {
			ev.Sink.Text(formatEVal(val))
		}
		return env, store2, nil

	case *ast.If:
		condVal, store2, err := ev.Eval(c.Cond, env, store)
		if err != nil {
			return nil, nil, err
		}
		b, ok := condVal.(core.BoolVal)
		if !ok {
			return nil, nil, core.NewTypeError(c.Pos, "if guard must be bool, found %s", describe(condVal))
		}
		branch := c.ElseSeq
		if bool(b) {
			branch = c.ThenSeq
		}
		_, store3, err := ev.ExecSeq(branch, env, store2)
		if err != nil {
			return nil, nil, err
		}
		return env, store3, nil

	case *ast.While:
		for {
			condVal, store2, err := ev.Eval(c.Cond, env, store)
			if err != nil {
				return nil, nil, err
			}
			b, ok := condVal.(core.BoolVal)
			if !ok {
				return nil, nil, core.NewTypeError(c.Pos, "while guard must be bool, found %s", describe(condVal))
			}
			if !bool(b) {
				store = store2
				break
			}
			mark := store2.NextLoc()
			_, store3, err := ev.ExecSeq(c.Body, env, store2)
			if err != nil {
				return nil, nil, err
			}
			store = store3.Truncate(mark)
		}
		return env, store, nil

	case *ast.FunDecl:
		cl := &core.Closure{Kind: core.ClosureFunction, Params: c.Params}
		env2 := env.Bind(c.Name, cl)
		cl.CapturedEnv = env2
		cl.Body = c.Body
		return env2, store, nil

	case *ast.ProcDecl:
		cl := &core.Closure{Kind: core.ClosureProcedure, Params: c.Params}
		env2 := env.Bind(c.Name, cl)
		cl.CapturedEnv = env2
		cl.Body = procBody{seq: c.Body, ret: c.Return}
		return env2, store, nil

	default:
		return nil, nil, core.NewSemanticError(cmd.Position(), "internal: unknown command %T", cmd)
	}
}

// procBody is what a ClosureProcedure's Body holds: the (possibly nil)
// command sequence executed before the mandatory return expression.
type procBody struct {
	seq *ast.CommandSeq
	ret ast.Expr
}

// Eval evaluates an expression, threading the store through operator
// and call arguments left-to-right (spec.md §4.6: "evaluation order is
// strict and left-to-right throughout").
func (ev *Evaluator) Eval(expr ast.Expr, env *core.Env, store *core.Store) (core.EVal, *core.Store, error) {
	switch e := expr.(type) {
	case *ast.Number:
		return core.IntVal(e.Value), store, nil

	case *ast.Bool:
		return core.BoolVal(e.Value), store, nil

	case *ast.Note:
		event := core.NewMusicEvent(decimal.Zero, core.Note(e.MIDI, e.Dur))
		return core.MusicVal{Result: core.MusicResult{Events: []core.MusicEvent{event}}}, store, nil

	case *ast.Rest:
		event := core.NewMusicEvent(decimal.Zero, core.Rest(e.Dur))
		return core.MusicVal{Result: core.MusicResult{Events: []core.MusicEvent{event}}}, store, nil

	case *ast.Var:
		dval, ok := env.Lookup(e.Name)
		if !ok {
			return nil, nil, core.NewSemanticError(e.Pos, "unbound name %q", e.Name)
		}
		if loc, ok := dval.(core.Location); ok {
			mval, ok := store.Access(loc)
			if !ok {
				return nil, nil, core.NewSemanticError(e.Pos, "dangling reference %q", e.Name)
			}
			return mval, store, nil
		}
		if eval, ok := core.AsEVal(dval); ok {
			return eval, store, nil
		}
		return nil, nil, core.NewTypeError(e.Pos, "%q does not denote a value", e.Name)

	case *ast.Let:
		bound, store2, err := ev.Eval(e.Bound, env, store)
		if err != nil {
			return nil, nil, err
		}
		inner := env.Bind(e.Name, bound.(core.DVal))
		return ev.Eval(e.Body, inner, store2)

	case *ast.Unary:
		arg, store2, err := ev.Eval(e.Arg, env, store)
		if err != nil {
			return nil, nil, err
		}
		return ev.dispatch(e.Op, e.Pos, []core.EVal{arg}, store2)

	case *ast.Apply:
		lhs, store2, err := ev.Eval(e.Lhs, env, store)
		if err != nil {
			return nil, nil, err
		}
		rhs, store3, err := ev.Eval(e.Rhs, env, store2)
		if err != nil {
			return nil, nil, err
		}
		return ev.dispatch(e.Op, e.Pos, []core.EVal{lhs, rhs}, store3)

	case *ast.Call:
		return ev.evalCall(e, env, store)

	default:
		return nil, nil, core.NewSemanticError(expr.Position(), "internal: unknown expression %T", expr)
	}
}

func (ev *Evaluator) dispatch(op string, pos core.Position, args []core.EVal, store *core.Store) (core.EVal, *core.Store, error) {
	spec, ok := Operators[op]
	if !ok {
		return nil, nil, core.NewSemanticError(pos, "unknown operator %q", op)
	}
	if len(args) != spec.Arity {
		return nil, nil, core.NewTypeError(pos, "%q expects %d operand(s), got %d", op, spec.Arity, len(args))
	}
	if op != "==" {
		for i, want := range spec.Inputs {
			got, ok := kindOf(args[i])
			if !ok || got != want {
				return nil, nil, core.NewTypeError(pos, "%q expects %s, found %s", op, want, describe(args[i]))
			}
		}
	}
	result, err := spec.Apply(args, pos)
	if err != nil {
		return nil, nil, err
	}
	return result, store, nil
}

func (ev *Evaluator) evalCall(call *ast.Call, env *core.Env, store *core.Store) (core.EVal, *core.Store, error) {
	dval, ok := env.Lookup(call.Name)
	if !ok {
		return nil, nil, core.NewSemanticError(call.Pos, "unbound function or procedure %q", call.Name)
	}
	cl, ok := dval.(*core.Closure)
	if !ok {
		return nil, nil, core.NewTypeError(call.Pos, "%q is not callable", call.Name)
	}
	if len(call.Args) != len(cl.Params) {
		return nil, nil, core.NewTypeError(call.Pos, "%q expects %d argument(s), got %d", call.Name, len(cl.Params), len(call.Args))
	}

	argVals := make([]core.DVal, len(call.Args))
	curStore := store
	for i, a := range call.Args {
		v, store2, err := ev.Eval(a, env, curStore)
		if err != nil {
			return nil, nil, err
		}
		argVals[i] = v.(core.DVal)
		curStore = store2
	}
	callEnv := cl.CapturedEnv.BindAll(cl.Params, argVals)

	switch cl.Kind {
	case core.ClosureFunction:
		body, ok := cl.Body.(ast.Expr)
		if !ok {
			return nil, nil, core.NewSemanticError(call.Pos, "internal: malformed function closure %q", call.Name)
		}
		return ev.Eval(body, callEnv, curStore)

	case core.ClosureProcedure:
		body, ok := cl.Body.(procBody)
		if !ok {
			return nil, nil, core.NewSemanticError(call.Pos, "internal: malformed procedure closure %q", call.Name)
		}
		bodyEnv, bodyStore := callEnv, curStore
		if body.seq != nil {
			var err error
			bodyEnv, bodyStore, err = ev.ExecSeq(body.seq, callEnv, curStore)
			if err != nil {
				return nil, nil, err
			}
		}
		return ev.Eval(body.ret, bodyEnv, bodyStore)

	default:
		return nil, nil, core.NewSemanticError(call.Pos, "internal: unknown closure kind for %q", call.Name)
	}
}

func formatEVal(v core.EVal) string {
	switch t := v.(type) {
	case core.IntVal:
		return fmt.Sprintf("%d", int(t))
	case core.BoolVal:
		return fmt.Sprintf("%t", bool(t))
	case core.MusicVal:
		return fmt.Sprintf("%v", t.Result)
	default:
		return fmt.Sprintf("%v", v)
	}
}
