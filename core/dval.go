package core

// EVal is an expressible value: the result of evaluating an expression.
// spec.md §3 fixes the set to {integer, boolean, MusicResult}.
type EVal interface {
	isEVal()
}

// MVal is a storable value — anything that may live in the Store. Per
// spec.md §3, MVal = EVal.
type MVal = EVal

// DVal is a denotable value — anything a name in the Environment may be
// bound to: EVal ∪ {location, built-in operator, closure}.
type DVal interface {
	isDVal()
}

type IntVal int

func (IntVal) isEVal() {}
func (IntVal) isDVal() {}

type BoolVal bool

func (BoolVal) isEVal() {}
func (BoolVal) isDVal() {}

// MusicVal wraps a core.MusicResult as an EVal/DVal.
type MusicVal struct {
	Result MusicResult
}

func (MusicVal) isEVal() {}
func (MusicVal) isDVal() {}

// Location is an opaque Store address. Only a Location DVal may be the
// target of assignment (spec.md §3).
type Location int

func (Location) isDVal() {}

// BuiltinRef denotes one of the operator-table entries (spec.md §4.4) as
// a DVal. It carries only the name; the eval package owns the actual
// dispatch table to avoid a dependency cycle between core and eval.
// eval.GlobalEnv binds no BuiltinRef: operators are dispatched directly
// from the Apply/Unary nodes, not through name lookup.
type BuiltinRef struct {
	Name string
}

func (BuiltinRef) isDVal() {}

// ClosureKind distinguishes function closures (pure, expression-bodied)
// from procedure closures (command-sequence-bodied, may mutate the
// store).
type ClosureKind int

const (
	ClosureFunction ClosureKind = iota
	ClosureProcedure
)

// Closure is (kind, params, body, captured_env) per spec.md §3. Body is
// declared as `interface{}` here to avoid a core<->ast import cycle; the
// ast package's node types are stored in it and the eval package type
// -asserts them back.
type Closure struct {
	Kind         ClosureKind
	Params       []string
	Body         interface{}
	CapturedEnv  *Env
}

func (*Closure) isDVal() {}

// AsEVal type-asserts a DVal down to an EVal, used when a Var lookup
// resolves directly to an expressible value (not a location).
func AsEVal(d DVal) (EVal, bool) {
	switch v := d.(type) {
	case IntVal, BoolVal, MusicVal:
		return v.(EVal), true
	default:
		return nil, false
	}
}
