// Package musicdsl is the public entry point spec.md §6 describes:
// execute_program parses, builds the AST, evaluates, and returns the
// last Print'd MusicResult together with an exit status.
package musicdsl

import (
	"strings"

	"github.com/mzacho/musicdsl/ast"
	"github.com/mzacho/musicdsl/core"
	"github.com/mzacho/musicdsl/eval"
	"github.com/mzacho/musicdsl/lang"
)

const byteOrderMark = "﻿"

// ExecuteProgram implements spec.md §6's execute_program: source is
// UTF-8 text, one program per call; a leading BOM is tolerated and
// stripped before lexing. sink receives every Print'd value as it
// happens (control.Relay in the CLI, a recording stub in tests).
func ExecuteProgram(source string, sink eval.PrintSink) (core.MusicResult, core.ExitStatus, error) {
	source = strings.TrimPrefix(source, byteOrderMark)

	parser, err := lang.NewParser(source)
	if err != nil {
		return core.Empty(), core.StatusFor(err), err
	}
	tree, err := parser.ParseProgram()
	if err != nil {
		return core.Empty(), core.StatusFor(err), err
	}
	seq, err := ast.Build(tree)
	if err != nil {
		return core.Empty(), core.StatusFor(err), err
	}
	result, err := eval.NewEvaluator(sink).Run(seq)
	if err != nil {
		return core.Empty(), core.StatusFor(err), err
	}
	return result, core.ExitOK, nil
}
