// Package help renders usage text for MusicDSL's operator table and
// command grammar, the way the teacher's ui/cli/help.go renders usage
// text for melrose's dsl.EvalFunctions — sourced from eval.Operators
// instead of a function-metadata map, since MusicDSL's built-ins are
// grammar-level operators, not callable DSL functions.
package help

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/mzacho/musicdsl/eval"
	"github.com/mzacho/musicdsl/notify"
)

// keywords documents the command grammar (spec.md §4.1) the operator
// table alone doesn't cover.
var keywords = map[string]string{
	"var":       "var IDENT = expr --- declare a fresh location",
	"<-":        "IDENT <- expr --- assign to an existing location",
	"print":     "print expr --- forward a value to the diagnostic stream or visualizer",
	"if/else":   "if expr then { ... } else { ... }",
	"while":     "while expr do { ... }",
	"function":  "function IDENT(params) = expr --- pure, expression-bodied",
	"procedure": "procedure IDENT(params) = { ... return expr }",
	"let":       "let IDENT = expr in expr --- scoped binding",
}

// Text renders the full usage listing: command grammar first, then
// every operator in eval.Operators sorted by name.
func Text() string {
	var b bytes.Buffer
	fmt.Fprintln(&b, "MusicDSL — commands:")
	ckeys := make([]string, 0, len(keywords))
	for k := range keywords {
		ckeys = append(ckeys, k)
	}
	sort.Strings(ckeys)
	for _, k := range ckeys {
		fmt.Fprintf(&b, "  %s\n", keywords[k])
	}

	fmt.Fprintln(&b, "\nMusicDSL — operators:")
	okeys := make([]string, 0, len(eval.Operators))
	width := 0
	for k := range eval.Operators {
		if len(k) > width {
			width = len(k)
		}
		okeys = append(okeys, k)
	}
	sort.Strings(okeys)
	for _, k := range okeys {
		op := eval.Operators[k]
		desc := op.Description
		if desc == "" {
			desc = fmt.Sprintf("arity %d", op.Arity)
		}
		fmt.Fprintf(&b, "  %s --- %s\n", strings.Repeat(" ", width-len(k))+k, desc)
	}
	return b.String()
}

// Command looks up help for a single operator name, mirroring the
// teacher's showHelp(ctx, args) dispatch on args[0].
func Command(args []string) notify.Message {
	if len(args) == 0 {
		return notify.Info(Text())
	}
	name := strings.TrimSpace(args[0])
	op, ok := eval.Operators[name]
	if !ok {
		return notify.Warningf("no such operator %q", name)
	}
	desc := op.Description
	if desc == "" {
		desc = fmt.Sprintf("arity %d", op.Arity)
	}
	return notify.Infof("%s --- %s", name, desc)
}
